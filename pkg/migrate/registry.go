/*
 * Copyright © 2024 One Concern
 *
 */

package migrate

import (
	"sort"

	"github.com/oneconcern/datamig/pkg/model"
)

// Registry is the fixed, constructed-at-startup collection of migration
// units. Units are held sorted ascending by the version they were introduced
// in, with declaration order breaking ties so that selection stays
// deterministic when two units ship in the same release.
type Registry struct {
	units []Migration
}

// NewRegistry builds a registry from the declared units. It rejects a
// double registration of the same (name, version) pair; distinct units
// sharing a version are allowed and keep their declaration order.
func NewRegistry(units ...Migration) (*Registry, error) {
	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		key := u.Name() + "@" + u.IntroducedIn().String()
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateUnit
		}
		seen[key] = struct{}{}
	}

	sorted := make([]Migration, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IntroducedIn().LessThan(sorted[j].IntroducedIn())
	})
	return &Registry{units: sorted}, nil
}

// MustRegistry builds a registry or panics. Intended for the static unit
// set assembled at startup.
func MustRegistry(units ...Migration) *Registry {
	r, err := NewRegistry(units...)
	if err != nil {
		panic(err)
	}
	return r
}

// Latest reports the maximum introduced-in version across the registry,
// i.e. the ceiling of what migrations exist. Nil for an empty registry.
func (r *Registry) Latest() *model.Version {
	if len(r.units) == 0 {
		return nil
	}
	return r.units[len(r.units)-1].IntroducedIn()
}

// Select computes the ordered subsequence of units required to bring a
// store in the detected state up to target.
//
// A fresh store selects nothing: new installs start directly at the current
// format. Otherwise the detected state resolves to a baseline version and
// the selection keeps units whose predicate accepts the detected state and
// whose introduced-in version lies in the half-open range
// (baseline, target]: the baseline itself is already covered, anything up
// to and including the target is due.
//
// Select is pure: it never touches the filesystem.
func (r *Registry) Select(detected model.DetectedVersion, target *model.Version) []Migration {
	baseline := detected.Baseline()
	if baseline == nil {
		return nil
	}

	selected := make([]Migration, 0, len(r.units))
	for _, u := range r.units {
		if !u.AppliesTo(detected) {
			continue
		}
		v := u.IntroducedIn()
		if baseline.LessThan(v) && !target.LessThan(v) {
			selected = append(selected, u)
		}
	}
	return selected
}
