// Package aggregate folds paginated vendor API listings into a single
// in-memory result per resource type.
//
// Each aggregator drives a pager.Pager, appends every page's records to its
// accumulator in order, and returns a value ready to be serialized once the
// listing is exhausted. Accumulated records are never removed or modified.
//
//   - Tokens keeps the two counters reported on the first page verbatim.
//   - Devices (apids, device pins) recomputes the active tally from the
//     records themselves.
//   - Users walks offset windows and drops records whose user_id was already
//     seen, stopping at the first window that adds no new user.
//   - Tags issues a single request.
package aggregate
