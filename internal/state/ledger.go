package state

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidTransition indicates a ledger transition that would move a path
// backwards or re-record a completed merge.
var ErrInvalidTransition = errors.New("invalid ledger transition")

// MergeStatus is how completely a manifest has been merged.
type MergeStatus int

const (
	// Unmerged means the manifest has not been merged in any mode.
	Unmerged MergeStatus = iota

	// DevPending means "require" was merged but "require-dev" was not.
	DevPending

	// FullyMerged means both "require" and "require-dev" were merged.
	FullyMerged
)

// String returns the status name.
func (s MergeStatus) String() string {
	switch s {
	case Unmerged:
		return "unmerged"
	case DevPending:
		return "dev-pending"
	case FullyMerged:
		return "fully-merged"
	default:
		return fmt.Sprintf("MergeStatus(%d)", int(s))
	}
}

// MarshalText renders the status by name.
func (s MergeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *MergeStatus) UnmarshalText(text []byte) error {
	for _, st := range []MergeStatus{Unmerged, DevPending, FullyMerged} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown merge status %q", text)
}

// Ledger records the MergeStatus of each manifest path.
// The zero value is not usable; use NewLedger.
type Ledger struct {
	statuses map[string]MergeStatus
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{statuses: make(map[string]MergeStatus)}
}

// Status returns the status of path, Unmerged if never recorded.
func (l *Ledger) Status(path string) MergeStatus {
	return l.statuses[path]
}

// Record moves path to status. Allowed transitions are
// Unmerged -> DevPending, Unmerged -> FullyMerged and
// DevPending -> FullyMerged.
func (l *Ledger) Record(path string, status MergeStatus) error {
	current := l.statuses[path]
	if !CanTransition(current, status) {
		return fmt.Errorf("%w: %s from %s to %s", ErrInvalidTransition, path, current, status)
	}
	l.statuses[path] = status
	return nil
}

// CanTransition reports whether the ledger allows from -> to.
func CanTransition(from, to MergeStatus) bool {
	switch from {
	case Unmerged:
		return to == DevPending || to == FullyMerged
	case DevPending:
		return to == FullyMerged
	default:
		return false
	}
}

// Paths returns the recorded paths with the given status, sorted.
func (l *Ledger) Paths(status MergeStatus) []string {
	var paths []string
	for p, s := range l.statuses {
		if s == status {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns a copy of all recorded statuses.
func (l *Ledger) Snapshot() map[string]MergeStatus {
	out := make(map[string]MergeStatus, len(l.statuses))
	for p, s := range l.statuses {
		out[p] = s
	}
	return out
}
