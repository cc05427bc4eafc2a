/*
 * Copyright © 2024 One Concern
 *
 */

// Package migrate implements the store migration engine: a registry of
// versioned migration units, the pure range selector deciding which units a
// given store needs, and the runner that applies them in order with a
// checkpoint persisted after each one.
package migrate

import (
	"context"

	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

// Migration is a single versioned transformation of the store directory.
//
// Run may partially apply its effects before failing: the engine offers no
// rollback, so every implementation must stay safe under partial application
// followed by a retry of the whole unit. The usual shape is to compute a
// fileops batch purely, then commit it in one pass.
type Migration interface {
	// Name identifies the unit in logs and registry validation
	Name() string

	// IntroducedIn is the constant version the unit shipped in, used for
	// sorting and range filtering
	IntroducedIn() *model.Version

	// AppliesTo lets a unit opt out for detected states it cannot or must
	// not handle. Predicates see the original detection outcome, not the
	// resolved baseline, so they can tell an inferred legacy store from an
	// explicitly marked one at the same baseline.
	AppliesTo(detected model.DetectedVersion) bool

	// Run applies the unit's effect against the store
	Run(ctx context.Context, st *store.Store) error
}

// Base is embedded by units that are applicable to every detected state
type Base struct{}

// AppliesTo accepts any detected state
func (Base) AppliesTo(model.DetectedVersion) bool {
	return true
}
