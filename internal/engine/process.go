package engine

import (
	"context"
	"fmt"

	"github.com/aplify/composer/internal/merge"
	"github.com/aplify/composer/internal/planner"
)

// Process runs one merge pass over req.Candidates.
//
// Algorithm steps:
// 1. Plan every candidate against the ledger
// 2. Return the plan if DryRun
// 3. Load and merge each planned manifest, in candidate order
// 4. Record the ledger transition after each merge
//
// A load failure aborts the pass. Merges executed before the failure stay
// applied and recorded.
func (e *Engine) Process(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	plan, err := planner.BuildMergePlan(req.Candidates, e.ledger, req.DevMode, e.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to build merge plan: %w", err)
	}

	result := &ProcessResult{
		Plan:      plan,
		Merged:    []planner.Action{},
		Skipped:   []planner.Action{},
		Overrides: []merge.Override{},
	}
	if req.DryRun {
		return result, nil
	}

	// BuildMergePlan emits exactly one action per candidate
	for i, action := range plan.Actions {
		switch action.Type {
		case planner.OpIneligible:
			if c := req.Candidates[i]; c.Err != nil {
				e.logger.Warn("Ignoring unreadable descriptor", "path", c.DescriptorPath, "error", c.Err)
			} else {
				e.logger.Debug("Skipping "+action.ManifestPath, "reason", action.Reason)
			}
			result.Skipped = append(result.Skipped, action)

		case planner.OpSkip:
			e.logger.Debug("Already merged " + action.ManifestPath + " completely")
			result.Skipped = append(result.Skipped, action)

		default:
			overrides, err := e.executeAction(action)
			if err != nil {
				return result, fmt.Errorf("failed to merge %s: %w", action.ManifestPath, err)
			}
			if err := e.ledger.Record(action.ManifestPath, action.To); err != nil {
				return result, fmt.Errorf("%w: %v", ErrLedger, err)
			}
			result.Merged = append(result.Merged, action)
			result.Overrides = append(result.Overrides, overrides...)
		}
	}

	return result, nil
}

// executeAction loads the action's manifest and merges the sections the
// action covers into the root.
func (e *Engine) executeAction(action planner.Action) ([]merge.Override, error) {
	if action.Type == planner.OpMergeDev {
		e.logger.Info("Loading -dev sections of " + action.ManifestPath + "...")
	} else {
		e.logger.Info("Loading " + action.ManifestPath + "...")
	}

	d, err := e.loader.Load(action.ManifestPath)
	if err != nil {
		return nil, err
	}

	var overrides []merge.Override
	if action.MergesRequire() {
		overrides = append(overrides, merge.MergeRequire(d, e.root)...)
	}
	if action.MergesRequireDev() {
		overrides = append(overrides, merge.MergeRequireDev(d, e.root)...)
	}

	for _, o := range overrides {
		e.logger.Warn("Overriding constraint",
			"section", o.Section,
			"package", o.Incoming.Target,
			"from", o.Previous.Constraint,
			"to", o.Incoming.Constraint,
			"by", o.Incoming.Source,
		)
	}
	return overrides, nil
}
