/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"bytes"
	"context"

	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/migrate"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
	"github.com/pkg/errors"
)

var repairTranscriptsVersion = model.MustVersion("1.0.4-nightly.2")

// repairTranscripts normalizes _transcript.json documents written as a bare
// word array into the {"words": [...]} envelope. Documents already in the
// envelope shape, or unreadable ones, are left alone.
type repairTranscripts struct {
	migrate.Base
}

func (repairTranscripts) Name() string                 { return "repair-transcripts" }
func (repairTranscripts) IntroducedIn() *model.Version { return repairTranscriptsVersion }

func (repairTranscripts) Run(_ context.Context, st *store.Store) error {
	var ops []fileops.Op
	for _, name := range sessionDirs(st) {
		p := sessionPath(name, "_transcript.json")
		raw, err := st.ReadFile(p)
		if err != nil {
			continue
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var words []interface{}
		if err := json.Unmarshal(trimmed, &words); err != nil {
			continue
		}

		b, err := json.MarshalIndent(map[string]interface{}{"words": words}, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "encode transcript for session %s", name)
		}
		ops = append(ops, fileops.Write(p, b))
	}

	return fileops.Apply(st.Fs, ops)
}
