/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"
	"path"

	"github.com/google/uuid"
	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

var moveUUIDFoldersVersion = model.MustVersion("1.0.2-nightly.6")

// moveUUIDFolders renames human-named session folders to fresh UUIDs,
// updating the id recorded in each folder's _meta.json. UUID-named folders
// pass through untouched, which is what makes a retry after partial
// application safe.
type moveUUIDFolders struct{}

func (moveUUIDFolders) Name() string                 { return "move-uuid-folders" }
func (moveUUIDFolders) IntroducedIn() *model.Version { return moveUUIDFoldersVersion }

func (moveUUIDFolders) AppliesTo(d model.DetectedVersion) bool {
	// the v0 and sqlite rewrites emit UUID folders directly
	return !inferredAs(d, model.LayoutFlatSessions, model.LayoutSQLiteSnapshot)
}

func (moveUUIDFolders) Run(_ context.Context, st *store.Store) error {
	var ops []fileops.Op
	for _, name := range sessionDirs(st) {
		if _, err := uuid.Parse(name); err == nil {
			continue
		}

		newID := uuid.NewString()
		metaPath := sessionPath(name, "_meta.json")
		if meta := readJSONMap(st, metaPath); meta != nil {
			meta["id"] = newID
			if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
				ops = append(ops, fileops.Write(metaPath, b))
			}
		}
		ops = append(ops,
			fileops.Rename(path.Join(store.SessionsDir, name), path.Join(store.SessionsDir, newID)))
	}

	return fileops.Apply(st.Fs, ops)
}
