/*
 * Copyright © 2024 One Concern
 *
 */

package migrate

import (
	"context"

	"github.com/oneconcern/datamig/pkg/dlogger"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runner orchestrates a migration pass: detect the store state, select the
// required units, apply them sequentially, checkpoint after each.
//
// A run assumes single-process, exclusive access to the store directory; no
// lock is taken. Units never run concurrently.
type Runner struct {
	registry *Registry
	l        *zap.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the zap logger used to trace the run
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.l = l
		}
	}
}

// NewRunner builds a runner over a registry of units
func NewRunner(registry *Registry, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		l:        dlogger.MustGetLogger(dlogger.LogLevelNone),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run brings the store up to the target version.
//
// A fresh store gets the target written as its checkpoint and no unit runs.
// Otherwise each selected unit executes in order; after a unit completes
// the checkpoint advances to its introduced-in version, so an interrupted
// run resumes from the first unit that did not complete: re-detection sees
// an explicit marker at the last completed version and the selector
// recomputes the remaining suffix. There is no separate resume bookkeeping.
//
// The first unit failure aborts the run and is returned untouched. A failed
// checkpoint write is fatal too, even though the unit's effects already
// landed: proceeding would let a later run re-select an applied unit
// without the marker recording it.
func (r *Runner) Run(ctx context.Context, st *store.Store, target *model.Version) error {
	if target == nil {
		return ErrNoTarget
	}

	detected := st.DetectVersion()
	r.l.Info("detected store state",
		zap.Stringer("detected", detected),
		zap.Stringer("target", target))

	if detected.IsFresh() {
		if err := st.WriteVersion(target); err != nil {
			return errors.Wrap(err, "initialize version marker")
		}
		return nil
	}

	for _, unit := range r.registry.Select(detected, target) {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.l.Info("applying migration",
			zap.String("migration", unit.Name()),
			zap.Stringer("introducedIn", unit.IntroducedIn()))

		if err := unit.Run(ctx, st); err != nil {
			r.l.Error("migration failed",
				zap.String("migration", unit.Name()),
				zap.Error(err))
			return err
		}

		if err := st.WriteVersion(unit.IntroducedIn()); err != nil {
			return errors.Wrapf(err, "checkpoint after %s", unit.Name())
		}

		r.l.Info("checkpoint written",
			zap.String("migration", unit.Name()),
			zap.Stringer("checkpoint", unit.IntroducedIn()))
	}

	if err := st.WriteVersion(target); err != nil {
		return errors.Wrap(err, "finalize version marker")
	}
	r.l.Info("store up to date", zap.Stringer("version", target))
	return nil
}
