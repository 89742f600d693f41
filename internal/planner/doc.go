// Package planner handles the planning phase of a merge pass.
//
// The planner turns scanned candidates into a deterministic MergePlan: one
// Action per candidate, in scan order, saying whether the candidate's
// manifest is skipped or merged and in which mode. It never loads manifests
// or touches the root manifest, so a plan can be shown as a dry run.
//
// Key responsibilities:
//   - Filter candidates by eligibility (active, or core with a manifest)
//   - Decide the merge operation from the ledger status and dev mode
//   - Simulate ledger transitions so repeated paths are planned correctly
package planner
