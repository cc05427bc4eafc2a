/*
 * Copyright © 2024 One Concern
 *
 */

// Package model describes the versioning entities handled by the migration
// engine: application versions, the outcome of probing a store directory,
// and the closed set of recognized legacy layouts.
package model

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a totally ordered application version: a release triple plus an
// optional pre-release tag (e.g. "1.0.2-nightly.15").
//
// Ordering follows semver precedence: release components compare first, a
// bare release outranks any pre-release at the same triple, and pre-release
// identifiers compare dot-wise with numeric identifiers ascending
// ("nightly.2" sorts before "nightly.15"). Comparison is delegated to the
// semver package rather than reimplemented here.
//
// A Version is immutable once constructed.
type Version = semver.Version

// NewVersion parses a version string such as "1.0.2-nightly.15"
func NewVersion(s string) (*Version, error) {
	return semver.StrictNewVersion(s)
}

// MustVersion parses a version string or panics. Intended for statically
// known version literals (registry declarations, legacy baselines).
func MustVersion(s string) *Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}
