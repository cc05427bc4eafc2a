/*
 * Copyright © 2024 One Concern
 *
 */

// Package migrations declares the concrete migration units and assembles
// them into the default registry consumed by the engine.
//
// Every unit follows the same shape: read the store, compute a batch of
// fileops intents without side effects, commit the batch in one pass. Units
// must stay safe when partially applied and retried, since the engine
// provides no rollback.
package migrations

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/datamig/pkg/migrate"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default assembles the registry of all known units, in canonical
// declaration order (relative order of same-version units matters).
func Default() *migrate.Registry {
	return migrate.MustRegistry(
		fromV0{},
		moveUUIDFolders{},
		renameTranscript{},
		extractFromSQLite{},
		repairTranscripts{},
		eventsSync{},
	)
}

// Run brings the store at storeDir up to the target application version
// using the default registry.
func Run(ctx context.Context, storeDir string, target *model.Version, opts ...migrate.Option) error {
	return migrate.NewRunner(Default(), opts...).Run(ctx, store.New(storeDir), target)
}

// LatestIntroducedIn reports the version of the most recent known unit, the
// ceiling of what migrations exist.
func LatestIntroducedIn() *model.Version {
	return Default().Latest()
}
