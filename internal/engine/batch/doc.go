// Package batch splits bulk work into fixed-size batches with cancellation between
// batches and progress reporting after each one. The sqlite seeder inserts rows
// through it.
package batch
