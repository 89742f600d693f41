package engine

import (
	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/merge"
	"github.com/aplify/composer/internal/planner"
)

// ProcessRequest represents one merge pass.
type ProcessRequest struct {
	// Candidates are merged in order
	Candidates []discovery.Candidate

	// DevMode merges "require-dev" links as well
	DevMode bool

	// DryRun performs planning only without loading or merging
	DryRun bool
}

// ProcessResult represents the result of a merge pass.
type ProcessResult struct {
	// Plan is the generated plan
	Plan *planner.MergePlan `json:"plan" yaml:"plan"`

	// Merged is the list of merge actions executed (empty if DryRun)
	Merged []planner.Action `json:"merged" yaml:"merged"`

	// Skipped is the list of skip and ineligible actions
	Skipped []planner.Action `json:"skipped" yaml:"skipped"`

	// Overrides lists root constraints replaced by a different constraint
	Overrides []merge.Override `json:"overrides" yaml:"overrides"`
}

// Changed reports whether any manifest was merged during the pass.
func (r *ProcessResult) Changed() bool {
	return len(r.Merged) > 0
}

// Event is a lifecycle trigger.
type Event struct {
	// Name is one of the Event* constants
	Name string

	// DevMode is the mode of the install, update or dump command.
	// Ignored for EventInit.
	DevMode bool
}

// Subscription pairs an event with the priority the engine registers at.
type Subscription struct {
	Event    string `json:"event" yaml:"event"`
	Priority int    `json:"priority" yaml:"priority"`
}
