package planner

import (
	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/state"
)

// MergePlan represents the planned outcome of one merge pass.
type MergePlan struct {
	// DevMode is the mode the plan was built for
	DevMode bool `json:"devMode" yaml:"devMode"`

	// Actions holds one entry per candidate, in scan order
	Actions []Action `json:"actions" yaml:"actions"`
}

// Action is the planned handling of a single candidate.
type Action struct {
	// Type is the operation: "merge_require", "merge_all", "merge_dev",
	// "skip" or "ineligible"
	Type string `json:"type" yaml:"type"`

	// ManifestPath is the manifest that will be merged
	ManifestPath string `json:"manifestPath" yaml:"manifestPath"`

	// DescriptorPath is the descriptor file the candidate came from
	DescriptorPath string `json:"descriptorPath" yaml:"descriptorPath"`

	// From is the ledger status before the action
	From state.MergeStatus `json:"from" yaml:"from"`

	// To is the ledger status after the action
	To state.MergeStatus `json:"to" yaml:"to"`

	// Reason explains skip and ineligible actions
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Operation type constants
const (
	OpMergeRequire = "merge_require"
	OpMergeAll     = "merge_all"
	OpMergeDev     = "merge_dev"
	OpSkip         = "skip"
	OpIneligible   = "ineligible"
)

// NewMergePlan creates a new empty MergePlan.
func NewMergePlan(devMode bool) *MergePlan {
	return &MergePlan{
		DevMode: devMode,
		Actions: []Action{},
	}
}

// AddAction adds an action to the plan.
func (p *MergePlan) AddAction(a Action) {
	p.Actions = append(p.Actions, a)
}

// Merges returns the actions that load and merge a manifest.
func (p *MergePlan) Merges() []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.IsMerge() {
			out = append(out, a)
		}
	}
	return out
}

// IsMerge reports whether the action loads and merges a manifest.
func (a Action) IsMerge() bool {
	switch a.Type {
	case OpMergeRequire, OpMergeAll, OpMergeDev:
		return true
	default:
		return false
	}
}

// MergesRequire reports whether the action merges "require" links.
func (a Action) MergesRequire() bool {
	return a.Type == OpMergeRequire || a.Type == OpMergeAll
}

// MergesRequireDev reports whether the action merges "require-dev" links.
func (a Action) MergesRequireDev() bool {
	return a.Type == OpMergeAll || a.Type == OpMergeDev
}

func newAction(c discovery.Candidate, op string, from, to state.MergeStatus) Action {
	return Action{
		Type:           op,
		ManifestPath:   c.ManifestPath,
		DescriptorPath: c.DescriptorPath,
		From:           from,
		To:             to,
	}
}
