// Package layout manages the ordered, resizable set of panels shown side by side.
//
// Panel sizes are percentages of the container width. Panels get ULID ids so ids stay
// unique after removals, and Reconcile diffs two panel sequences by id so that
// unrelated panels keep their sessions across a full replacement.
package layout
