package planner

import (
	"fmt"

	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/state"
)

// StatusSource reports the ledger status of a manifest path.
type StatusSource interface {
	Status(path string) state.MergeStatus
}

// Decide returns the operation for a manifest with the given ledger status
// in the given mode, and the status it moves to.
func Decide(status state.MergeStatus, devMode bool) (string, state.MergeStatus) {
	switch status {
	case state.FullyMerged:
		return OpSkip, state.FullyMerged
	case state.DevPending:
		if devMode {
			return OpMergeDev, state.FullyMerged
		}
		return OpSkip, state.DevPending
	case state.Unmerged:
		if devMode {
			return OpMergeAll, state.FullyMerged
		}
		return OpMergeRequire, state.DevPending
	default:
		panic(fmt.Sprintf("planner: unknown merge status %v", status))
	}
}

// BuildMergePlan generates a deterministic plan for merging candidates.
// Ineligible candidates produce an "ineligible" action and leave the ledger
// untouched. Statuses are tracked across the plan so a manifest appearing
// twice is merged at most once per mode.
func BuildMergePlan(
	candidates []discovery.Candidate,
	ledger StatusSource,
	devMode bool,
	fs fsops.FS,
) (*MergePlan, error) {
	plan := NewMergePlan(devMode)
	checker := NewEligibilityChecker(fs)

	// Statuses already planned in this pass
	planned := make(map[string]state.MergeStatus)

	for _, c := range candidates {
		eligible, reason, err := checker.Check(c)
		if err != nil {
			return nil, err
		}

		status, ok := planned[c.ManifestPath]
		if !ok {
			status = ledger.Status(c.ManifestPath)
		}

		if !eligible {
			a := newAction(c, OpIneligible, status, status)
			a.Reason = reason
			plan.AddAction(a)
			continue
		}

		op, next := Decide(status, devMode)
		a := newAction(c, op, status, next)
		if op == OpSkip {
			a.Reason = skipReason(status)
		}
		plan.AddAction(a)
		planned[c.ManifestPath] = next
	}

	return plan, nil
}

func skipReason(status state.MergeStatus) string {
	if status == state.FullyMerged {
		return "already merged completely"
	}
	return "already merged without dev requirements"
}
