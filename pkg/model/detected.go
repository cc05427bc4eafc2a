/*
 * Copyright © 2024 One Concern
 *
 */

package model

import "fmt"

// LegacyLayout enumerates the recognized pre-marker store layouts. Stores
// written before the version marker existed are identified by structural
// fingerprints and mapped to an equivalent baseline version for range
// selection.
type LegacyLayout int

const (
	// LayoutNone is the zero value and matches no layout
	LayoutNone LegacyLayout = iota

	// LayoutFlatSessions is the original layout with session documents as
	// loose JSON files at the store root
	LayoutFlatSessions

	// LayoutSQLiteSnapshot keeps all session and event rows in an embedded
	// db.sqlite snapshot
	LayoutSQLiteSnapshot

	// LayoutNightlyEarly has a sessions directory with human-named session
	// folders and per-session transcript.json files
	LayoutNightlyEarly

	// LayoutNightlyLate has UUID-named session folders but still carries the
	// sqlite snapshot
	LayoutNightlyLate
)

// legacyBaselines maps each recognized layout to the version the selector
// treats it as equivalent to. This is a literal table on purpose: the
// mapping is part of the selection contract and must stay independently
// testable from detection.
var legacyBaselines = map[LegacyLayout]*Version{
	LayoutFlatSessions:   MustVersion("0.0.84"),
	LayoutSQLiteSnapshot: MustVersion("1.0.1"),
	LayoutNightlyEarly:   MustVersion("1.0.2-nightly.5"),
	LayoutNightlyLate:    MustVersion("1.0.2-nightly.13"),
}

// EquivalentVersion returns the baseline version associated with the layout,
// or nil for LayoutNone.
func (l LegacyLayout) EquivalentVersion() *Version {
	return legacyBaselines[l]
}

func (l LegacyLayout) String() string {
	switch l {
	case LayoutFlatSessions:
		return "flat-sessions"
	case LayoutSQLiteSnapshot:
		return "sqlite-snapshot"
	case LayoutNightlyEarly:
		return "nightly-early"
	case LayoutNightlyLate:
		return "nightly-late"
	default:
		return "none"
	}
}

// Detection discriminates the variants of DetectedVersion
type Detection int

const (
	// DetectionFresh indicates an absent or empty store: a new install, not
	// something requiring migration
	DetectionFresh Detection = iota

	// DetectionExplicit indicates an authoritative version marker was read
	DetectionExplicit

	// DetectionInferred indicates a recognized legacy layout without marker
	DetectionInferred
)

// DetectedVersion is the outcome of probing a store directory. Exactly one
// variant is ever produced: Fresh, Explicit with a marker version, or
// Inferred with a legacy layout.
type DetectedVersion struct {
	Kind   Detection
	Marker *Version
	Layout LegacyLayout
}

// Fresh reports an absent or empty store
func Fresh() DetectedVersion {
	return DetectedVersion{Kind: DetectionFresh}
}

// Explicit reports the version read from the store marker
func Explicit(v *Version) DetectedVersion {
	return DetectedVersion{Kind: DetectionExplicit, Marker: v}
}

// Inferred reports a recognized legacy layout
func Inferred(layout LegacyLayout) DetectedVersion {
	return DetectedVersion{Kind: DetectionInferred, Layout: layout}
}

// IsFresh is true for a brand-new store
func (d DetectedVersion) IsFresh() bool {
	return d.Kind == DetectionFresh
}

// IsInferred is true when the version was derived from a legacy fingerprint
// rather than an explicit marker.
func (d DetectedVersion) IsInferred() bool {
	return d.Kind == DetectionInferred
}

// Baseline resolves the version used as the lower bound in range selection:
// the marker version for an explicit detection, the equivalent version from
// the legacy table for an inferred one, nil for a fresh store.
func (d DetectedVersion) Baseline() *Version {
	switch d.Kind {
	case DetectionExplicit:
		return d.Marker
	case DetectionInferred:
		return d.Layout.EquivalentVersion()
	default:
		return nil
	}
}

func (d DetectedVersion) String() string {
	switch d.Kind {
	case DetectionExplicit:
		return fmt.Sprintf("explicit(%s)", d.Marker)
	case DetectionInferred:
		return fmt.Sprintf("inferred(%s)", d.Layout)
	default:
		return "fresh"
	}
}
