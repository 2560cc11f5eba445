// Package fetch coordinates cursor pagination for a single panel.
//
// A Coordinator turns scroll-derived "near end" triggers into page fetches while keeping
// three guarantees:
//   - at most one page fetch is in flight per panel; triggers during a fetch are dropped
//   - triggers arriving within the debounce window collapse into one fetch issued after
//     the window elapses from the last trigger
//   - results from a closed or reset panel (older epoch) never mutate state
//
// The coordinator is driven by the bubbletea update loop. Fetches and debounce timers
// run as tea.Cmd and report back as PageMsg and DebounceMsg.
package fetch
