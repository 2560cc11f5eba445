// Package preview caches detail records per panel.
//
// A Cache is lazy: nothing is fetched until GetOrFetch asks for an id, and a record
// that is loading or loaded is never requested twice. Entries live until the owning
// panel closes the cache. Each panel keeps one cache per namespace so that preview and
// detail lookups do not share state unless configured to.
package preview
