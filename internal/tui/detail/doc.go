// Package detail provides the scrollable detail pane of a panel.
//
// A Pane shows one entity's detail entry in whatever state it is in: loading, loaded or
// failed. The entry itself is fetched lazily by the panel's detail cache; the pane only
// renders it into a viewport and keeps the scroll position while the same entity stays
// open. Errors render inline so the panel can offer a retry without leaving the view.
package detail
