/*
 * Copyright © 2024 One Concern
 *
 */

package migrate

import "github.com/oneconcern/datamig/pkg/errors"

var (
	// Sentinel errors returned by the migration engine

	// ErrDuplicateUnit indicates that the same (name, version) unit was
	// registered twice
	ErrDuplicateUnit = errors.New("duplicate migration unit registration")

	// ErrNoTarget indicates that a run was requested without a target version
	ErrNoTarget = errors.New("no target version")
)
