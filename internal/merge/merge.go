// Package merge folds descriptor dependency links into a root manifest.
//
// Merging is last-write-wins: a descriptor link replaces any root link for
// the same dependency name, and no conflict is ever raised. Replacements of
// a differing constraint are reported as Overrides so callers can log them.
package merge

import (
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/aplify/composer/internal/descriptor"
	"github.com/aplify/composer/internal/manifest"
)

// Root is the aggregation target. Setters replace the whole collection.
type Root interface {
	RequireLinks() manifest.LinkSet
	SetRequireLinks(links manifest.LinkSet)
	RequireDevLinks() manifest.LinkSet
	SetRequireDevLinks(links manifest.LinkSet)
}

// Override records a root link replaced by a link with a different constraint.
type Override struct {
	Section  string        `json:"section" yaml:"section"`
	Previous manifest.Link `json:"previous" yaml:"previous"`
	Incoming manifest.Link `json:"incoming" yaml:"incoming"`
}

// MergeRequire merges the descriptor's "require" links into root.
func MergeRequire(d *descriptor.Descriptor, root Root) []Override {
	if d.Require.IsEmpty() {
		return nil
	}
	merged, overrides := mergeLinks(manifest.SectionRequire, root.RequireLinks(), d.Require)
	root.SetRequireLinks(merged)
	return overrides
}

// MergeRequireDev merges the descriptor's "require-dev" links into root.
func MergeRequireDev(d *descriptor.Descriptor, root Root) []Override {
	if d.RequireDev.IsEmpty() {
		return nil
	}
	merged, overrides := mergeLinks(manifest.SectionRequireDev, root.RequireDevLinks(), d.RequireDev)
	root.SetRequireDevLinks(merged)
	return overrides
}

func mergeLinks(section string, origin, incoming manifest.LinkSet) (manifest.LinkSet, []Override) {
	var overrides []Override
	for _, link := range incoming.Links() {
		if prev, ok := origin.Get(link.Target); ok && !SameConstraint(prev.Constraint, link.Constraint) {
			overrides = append(overrides, Override{
				Section:  section,
				Previous: prev,
				Incoming: link,
			})
		}
		origin.Set(link)
	}
	return origin, overrides
}

// SameConstraint reports whether two constraint strings are equivalent.
// Constraints that both parse as semver constraints are equivalent when they
// agree on every boundary version derived from the numbers they mention;
// anything else falls back to string equality.
func SameConstraint(a, b string) bool {
	if a == b {
		return true
	}
	ca, errA := semver.NewConstraint(a)
	cb, errB := semver.NewConstraint(b)
	if errA != nil || errB != nil {
		return false
	}
	for _, v := range boundaryVersions(a, b) {
		if ca.Check(v) != cb.Check(v) {
			return false
		}
	}
	return true
}

var versionNumber = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// boundaryVersions returns each version mentioned in the constraints along
// with its neighbours on both sides of every major, minor and patch step.
func boundaryVersions(constraints ...string) []*semver.Version {
	versions := []*semver.Version{semver.New(0, 0, 0, "", "")}
	for _, c := range constraints {
		for _, m := range versionNumber.FindAllString(c, -1) {
			v, err := semver.NewVersion(m)
			if err != nil {
				continue
			}
			major, minor, patch := v.Major(), v.Minor(), v.Patch()
			versions = append(versions,
				semver.New(major, minor, patch, "", ""),
				semver.New(major, minor, patch+1, "", ""),
				semver.New(major, minor+1, 0, "", ""),
				semver.New(major+1, 0, 0, "", ""),
			)
			if patch > 0 {
				versions = append(versions, semver.New(major, minor, patch-1, "", ""))
			}
			if minor > 0 {
				versions = append(versions, semver.New(major, minor-1, 999, "", ""))
			}
			if major > 0 {
				versions = append(versions, semver.New(major-1, 999, 999, "", ""))
			}
		}
	}
	return versions
}
