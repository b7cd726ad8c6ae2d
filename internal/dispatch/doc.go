// Package dispatch registers pluggable analysis modules and routes a screening
// request through them, in parallel or one at a time, with a per-module
// deadline and failure isolation. Module outputs are merged into one
// confidence-scored verdict.
//
// A module that misses its deadline is handed a cancelled context. The
// dispatcher stops waiting at the deadline whether or not the module honors
// that cancellation; a late result is discarded.
package dispatch
