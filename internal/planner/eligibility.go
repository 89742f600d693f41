package planner

import (
	"fmt"

	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/fsops"
)

// EligibilityChecker decides whether a candidate takes part in merging.
type EligibilityChecker struct {
	fs fsops.FS
}

// NewEligibilityChecker creates a new EligibilityChecker.
func NewEligibilityChecker(fs fsops.FS) *EligibilityChecker {
	return &EligibilityChecker{fs: fs}
}

// Check returns whether c is eligible, and the reason when it is not.
// A candidate is eligible when it is active, or when it is core and its
// manifest exists. An active candidate is eligible even if its manifest is
// missing; loading then fails.
func (e *EligibilityChecker) Check(c discovery.Candidate) (bool, string, error) {
	if c.Err != nil {
		return false, fmt.Sprintf("unreadable descriptor: %v", c.Err), nil
	}
	if c.Active {
		return true, "", nil
	}
	if !c.Core {
		return false, "inactive", nil
	}

	exists, err := e.fs.Exists(c.ManifestPath)
	if err != nil {
		return false, "", fmt.Errorf("failed to check manifest %s: %w", c.ManifestPath, err)
	}
	if !exists {
		return false, "core library without manifest", nil
	}
	return true, "", nil
}
