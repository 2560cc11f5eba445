// Package listview provides a virtualized list component for Bubble Tea.
//
// Only the rows intersecting the viewport, plus an overscan margin, are rendered, so a
// list of any length costs O(viewport) per frame. Rows may be one line each or have
// measured heights. The model reports NearEnd after every update so the owner can
// request the next page; appending rows never moves the scroll position.
package listview
