package planner

import (
	"errors"
	"testing"

	"github.com/aplify/composer/internal/discovery"
	"github.com/aplify/composer/internal/fsops"
	"github.com/aplify/composer/internal/state"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		status  state.MergeStatus
		devMode bool
		wantOp  string
		wantTo  state.MergeStatus
	}{
		{state.Unmerged, false, OpMergeRequire, state.DevPending},
		{state.Unmerged, true, OpMergeAll, state.FullyMerged},
		{state.DevPending, false, OpSkip, state.DevPending},
		{state.DevPending, true, OpMergeDev, state.FullyMerged},
		{state.FullyMerged, false, OpSkip, state.FullyMerged},
		{state.FullyMerged, true, OpSkip, state.FullyMerged},
	}

	for _, tt := range tests {
		name := tt.status.String()
		if tt.devMode {
			name += "/dev"
		}
		t.Run(name, func(t *testing.T) {
			op, to := Decide(tt.status, tt.devMode)
			if op != tt.wantOp || to != tt.wantTo {
				t.Errorf("Decide(%v, %v) = %s, %v; want %s, %v", tt.status, tt.devMode, op, to, tt.wantOp, tt.wantTo)
			}
			if op != OpSkip && !state.CanTransition(tt.status, to) {
				t.Errorf("Decide produced a transition the ledger rejects: %v -> %v", tt.status, to)
			}
		})
	}
}

func candidate(dir string, active, core bool) discovery.Candidate {
	return discovery.Candidate{
		DescriptorPath: dir + "/apply.json",
		ManifestPath:   dir + "/composer.json",
		Active:         active,
		Core:           core,
	}
}

func TestCheck_Eligibility(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/lib/core-present/composer.json", "{}")
	checker := NewEligibilityChecker(mem)

	tests := []struct {
		name      string
		candidate discovery.Candidate
		want      bool
	}{
		{"active", candidate("/lib/active", true, false), true},
		{"active without manifest", candidate("/lib/missing", true, false), true},
		{"core with manifest", candidate("/lib/core-present", false, true), true},
		{"core without manifest", candidate("/lib/core-missing", false, true), false},
		{"neither", candidate("/lib/core-present", false, false), false},
		{"descriptor error", discovery.Candidate{
			ManifestPath: "/lib/core-present/composer.json",
			Active:       true,
			Err:          errors.New("bad json"),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason, err := checker.Check(tt.candidate)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Check = %v (%s), want %v", got, reason, tt.want)
			}
			if !got && reason == "" {
				t.Error("ineligible candidates must carry a reason")
			}
		})
	}
}

func TestBuildMergePlan(t *testing.T) {
	mem := fsops.NewMemFS()
	ledger := state.NewLedger()
	_ = ledger.Record("/lib/pending/composer.json", state.DevPending)
	_ = ledger.Record("/lib/done/composer.json", state.FullyMerged)

	candidates := []discovery.Candidate{
		candidate("/lib/new", true, false),
		candidate("/lib/pending", true, false),
		candidate("/lib/done", true, false),
		candidate("/lib/off", false, false),
	}

	t.Run("no-dev", func(t *testing.T) {
		plan, err := BuildMergePlan(candidates, ledger, false, mem)
		if err != nil {
			t.Fatalf("BuildMergePlan failed: %v", err)
		}
		wantOps := []string{OpMergeRequire, OpSkip, OpSkip, OpIneligible}
		assertOps(t, plan, wantOps)
		if len(plan.Merges()) != 1 {
			t.Errorf("Merges = %d, want 1", len(plan.Merges()))
		}
	})

	t.Run("dev", func(t *testing.T) {
		plan, err := BuildMergePlan(candidates, ledger, true, mem)
		if err != nil {
			t.Fatalf("BuildMergePlan failed: %v", err)
		}
		wantOps := []string{OpMergeAll, OpMergeDev, OpSkip, OpIneligible}
		assertOps(t, plan, wantOps)
		if !plan.Actions[1].MergesRequireDev() || plan.Actions[1].MergesRequire() {
			t.Error("top-up must merge require-dev only")
		}
	})

	// Planning never mutates the ledger
	if got := ledger.Status("/lib/new/composer.json"); got != state.Unmerged {
		t.Errorf("ledger mutated by planning: %v", got)
	}
}

func TestBuildMergePlan_RepeatedPathMergedOnce(t *testing.T) {
	candidates := []discovery.Candidate{
		candidate("/lib/a", true, false),
		candidate("/lib/a", true, false),
	}

	plan, err := BuildMergePlan(candidates, state.NewLedger(), false, fsops.NewMemFS())
	if err != nil {
		t.Fatalf("BuildMergePlan failed: %v", err)
	}
	assertOps(t, plan, []string{OpMergeRequire, OpSkip})
	if plan.Actions[1].From != state.DevPending {
		t.Errorf("second action From = %v, want %v", plan.Actions[1].From, state.DevPending)
	}
}

func assertOps(t *testing.T, plan *MergePlan, want []string) {
	t.Helper()
	if len(plan.Actions) != len(want) {
		t.Fatalf("got %d actions, want %d", len(plan.Actions), len(want))
	}
	for i, op := range want {
		if plan.Actions[i].Type != op {
			t.Errorf("action[%d] = %s, want %s", i, plan.Actions[i].Type, op)
		}
	}
}
