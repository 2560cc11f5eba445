// Package window computes which rows of a virtualized list are on screen.
//
// A Layout keeps prefix sums of row heights so that the visible range for a scroll
// offset is found with two binary searches. Heights may be fixed or measured per row.
// Everything here is pure: the same heights, offset and viewport always yield the same
// range.
package window
