/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
	"github.com/pkg/errors"
)

var fromV0Version = model.MustVersion("1.0.2-nightly.15")

// fromV0 folds the original flat layout, with one loose session JSON file
// per meeting at the store root, into the sessions/<uuid>/ layout: metadata
// goes to _meta.json and the transcript splits off to _transcript.json.
// It only ever runs against a store inferred as flat-sessions; all later
// layouts were created in the folder shape already.
type fromV0 struct{}

func (fromV0) Name() string                 { return "from-v0" }
func (fromV0) IntroducedIn() *model.Version { return fromV0Version }

func (fromV0) AppliesTo(d model.DetectedVersion) bool {
	return inferredAs(d, model.LayoutFlatSessions)
}

func (fromV0) Run(_ context.Context, st *store.Store) error {
	entries, err := st.ReadDir(".")
	if err != nil {
		return errors.Wrap(err, "list store root")
	}

	var ops []fileops.Op
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if name == "events.json" || name == "store.json" {
			continue
		}

		raw, err := st.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "read session file %s", name)
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			// malformed legacy file: leave it alone
			continue
		}

		id, _ := getString(doc, "id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			doc["id"] = id
		}

		transcript := doc["transcript"]
		delete(doc, "transcript")

		meta, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "encode meta for %s", name)
		}
		ops = append(ops, fileops.Write(sessionPath(id, "_meta.json"), meta))

		if transcript != nil {
			envelope := transcript
			if words, ok := transcript.([]interface{}); ok {
				envelope = map[string]interface{}{"words": words}
			}
			b, err := json.MarshalIndent(envelope, "", "  ")
			if err != nil {
				return errors.Wrapf(err, "encode transcript for %s", name)
			}
			ops = append(ops, fileops.Write(sessionPath(id, "_transcript.json"), b))
		}

		ops = append(ops, fileops.Remove(name))
	}

	return fileops.Apply(st.Fs, ops)
}
