// Package state tracks which library manifests have been merged into the
// root manifest during one run.
//
// The Ledger is in-memory only. A new run starts with an empty Ledger; it is
// never persisted.
//
// Key concepts:
//   - MergeStatus: Unmerged, DevPending (require merged, require-dev not yet)
//     or FullyMerged
//   - Ledger: per-manifest-path MergeStatus with one-directional transitions
package state
