// Package pagination provides the flag handling, sorting and result metadata of the
// scripted listing commands.
//
// This package contains:
//   - Params: --max-pages, --limit, --offset and --sort parsing and validation
//   - Meta: summary of a walk over a paginated source
//   - EntitySorter: stable sorting of fetched entities by a named field
package pagination
