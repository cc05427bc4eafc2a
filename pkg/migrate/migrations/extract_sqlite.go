/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"
	"database/sql"
	gojson "encoding/json"
	"path/filepath"

	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
	"github.com/pkg/errors"

	// sqlite driver for reading the embedded snapshot
	_ "modernc.org/sqlite"
)

var extractFromSQLiteVersion = model.MustVersion("1.0.2-nightly.14")

// extractFromSQLite unpacks the embedded db.sqlite snapshot into the
// file-per-document layout: one _meta.json and _transcript.json per session
// row plus a consolidated events.json, then drops the snapshot. Documents
// already present on disk win over their row counterparts, so a partially
// applied run can be retried.
type extractFromSQLite struct{}

func (extractFromSQLite) Name() string                 { return "extract-from-sqlite" }
func (extractFromSQLite) IntroducedIn() *model.Version { return extractFromSQLiteVersion }

func (extractFromSQLite) AppliesTo(d model.DetectedVersion) bool {
	// the flat v0 layout predates the snapshot
	return !inferredAs(d, model.LayoutFlatSessions)
}

func (extractFromSQLite) Run(ctx context.Context, st *store.Store) error {
	if ok, _ := st.Exists(store.SQLiteSnapshot); !ok {
		return nil
	}
	if st.Path() == "" {
		return errors.New("sqlite extraction requires an OS-backed store")
	}

	db, err := sql.Open("sqlite", filepath.Join(st.Path(), store.SQLiteSnapshot))
	if err != nil {
		return errors.Wrap(err, "open sqlite snapshot")
	}
	defer func() {
		_ = db.Close()
	}()

	var ops []fileops.Op
	if err := extractSessions(ctx, db, st, &ops); err != nil {
		return err
	}
	if err := extractEvents(ctx, db, st, &ops); err != nil {
		return err
	}
	ops = append(ops, fileops.Remove(store.SQLiteSnapshot))

	return fileops.Apply(st.Fs, ops)
}

func extractSessions(ctx context.Context, db *sql.DB, st *store.Store, ops *[]fileops.Op) error {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, created_at, transcript FROM sessions`)
	if err != nil {
		// snapshot without a sessions table: nothing to unpack
		return nil
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id, title, createdAt string
		var transcript sql.NullString
		if err := rows.Scan(&id, &title, &createdAt, &transcript); err != nil {
			return errors.Wrap(err, "scan session row")
		}

		metaPath := sessionPath(id, "_meta.json")
		if ok, _ := st.Exists(metaPath); !ok {
			meta, err := json.MarshalIndent(map[string]interface{}{
				"id":         id,
				"title":      title,
				"created_at": createdAt,
			}, "", "  ")
			if err != nil {
				return errors.Wrapf(err, "encode meta for session %s", id)
			}
			*ops = append(*ops, fileops.Write(metaPath, meta))
		}

		transcriptPath := sessionPath(id, "_transcript.json")
		if ok, _ := st.Exists(transcriptPath); !ok && transcript.Valid && transcript.String != "" {
			var words []interface{}
			if err := json.Unmarshal([]byte(transcript.String), &words); err != nil {
				// unreadable transcript column: keep the session meta only
				continue
			}
			b, err := json.MarshalIndent(map[string]interface{}{"words": words}, "", "  ")
			if err != nil {
				return errors.Wrapf(err, "encode transcript for session %s", id)
			}
			*ops = append(*ops, fileops.Write(transcriptPath, b))
		}
	}
	return rows.Err()
}

func extractEvents(ctx context.Context, db *sql.DB, st *store.Store, ops *[]fileops.Op) error {
	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM events`)
	if err != nil {
		return nil
	}
	defer func() {
		_ = rows.Close()
	}()

	events := map[string]gojson.RawMessage{}
	if existing := readJSONMap(st, "events.json"); existing != nil {
		for k, v := range existing {
			if b, err := json.Marshal(v); err == nil {
				events[k] = b
			}
		}
	}

	added := false
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return errors.Wrap(err, "scan event row")
		}
		if _, ok := events[id]; ok {
			continue
		}
		if !json.Valid([]byte(payload)) {
			continue
		}
		events[id] = gojson.RawMessage(payload)
		added = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !added {
		return nil
	}
	b, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode events.json")
	}
	*ops = append(*ops, fileops.Write("events.json", b))
	return nil
}
