// Package session implements one browsing panel: a paginated, virtualized list with a
// detail drill-down and a preview popover.
//
// A Session is a two-state machine. It starts in Listing; selecting an entity moves it
// to Detail and Back returns to Listing. The session composes a fetch coordinator, a
// list view and per-panel detail caches, and routes bubbletea messages to them.
package session
