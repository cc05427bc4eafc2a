/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"

	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

var renameTranscriptVersion = model.MustVersion("1.0.2-nightly.6")

// renameTranscript moves per-session transcript.json files to the
// underscore-prefixed _transcript.json name, so session folders keep
// engine-owned documents visually apart from user content. Sessions already
// carrying _transcript.json are skipped.
type renameTranscript struct{}

func (renameTranscript) Name() string                 { return "rename-transcript" }
func (renameTranscript) IntroducedIn() *model.Version { return renameTranscriptVersion }

func (renameTranscript) AppliesTo(d model.DetectedVersion) bool {
	return !inferredAs(d, model.LayoutFlatSessions, model.LayoutSQLiteSnapshot)
}

func (renameTranscript) Run(_ context.Context, st *store.Store) error {
	var ops []fileops.Op
	for _, name := range sessionDirs(st) {
		old := sessionPath(name, "transcript.json")
		renamed := sessionPath(name, "_transcript.json")

		if ok, _ := st.Exists(old); !ok {
			continue
		}
		if ok, _ := st.Exists(renamed); ok {
			continue
		}
		ops = append(ops, fileops.Rename(old, renamed))
	}

	return fileops.Apply(st.Fs, ops)
}
