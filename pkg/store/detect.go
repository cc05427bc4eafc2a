/*
 * Copyright © 2024 One Concern
 *
 */

package store

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/oneconcern/datamig/pkg/model"
)

const (
	// VersionMarker is the file at the store root holding the literal version
	// string of the furthest confirmed-applied migration state.
	VersionMarker = ".version"

	// SQLiteSnapshot is the embedded database file used by pre-extraction layouts
	SQLiteSnapshot = "db.sqlite"

	// SessionsDir holds per-session folders in all post-v0 layouts
	SessionsDir = "sessions"
)

// reserved root documents that do not count as flat v0 session files
var reservedRootFiles = map[string]struct{}{
	"events.json": {},
	"store.json":  {},
}

// DetectVersion probes the store and reports exactly one of: an explicit
// marker version, an inferred legacy layout, or a fresh store.
//
// It is total: marker corruption or unreadable directories degrade to the
// next probe instead of erroring. The probe order is fixed and part of the
// contract, since fingerprints can overlap (a nightly store still carries
// the sqlite snapshot):
//
//	1. parsable version marker            -> explicit
//	2. missing or empty directory         -> fresh
//	3. sessions/ with a UUID-named folder -> nightly-late
//	4. sessions/ present                  -> nightly-early
//	5. db.sqlite present                  -> sqlite-snapshot
//	6. loose root *.json session files    -> flat-sessions
//	7. anything else                      -> fresh
func (s *Store) DetectVersion() model.DetectedVersion {
	if raw, err := s.ReadFile(VersionMarker); err == nil {
		if v, err := model.NewVersion(strings.TrimSpace(string(raw))); err == nil {
			return model.Explicit(v)
		}
		// unparsable marker: fall through to structural inference
	}

	entries, err := s.ReadDir(".")
	if err != nil || len(entries) == 0 {
		return model.Fresh()
	}

	if ok, _ := s.DirExists(SessionsDir); ok {
		if s.hasUUIDSessionFolder() {
			return model.Inferred(model.LayoutNightlyLate)
		}
		return model.Inferred(model.LayoutNightlyEarly)
	}

	if ok, _ := s.Exists(SQLiteSnapshot); ok {
		return model.Inferred(model.LayoutSQLiteSnapshot)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, reserved := reservedRootFiles[name]; reserved || name == VersionMarker {
			continue
		}
		if filepath.Ext(name) == ".json" {
			return model.Inferred(model.LayoutFlatSessions)
		}
	}

	return model.Fresh()
}

func (s *Store) hasUUIDSessionFolder() bool {
	entries, err := s.ReadDir(SessionsDir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err == nil {
			return true
		}
	}
	return false
}

// WriteVersion persists v as the store checkpoint, replacing any previous
// marker. The write goes through a temporary file plus rename so the marker
// is replaced wholesale, never observed half-written.
func (s *Store) WriteVersion(v *model.Version) error {
	// a fresh install may not have the store directory yet
	if err := s.MkdirAll(".", 0755); err != nil {
		return err
	}
	tmp := VersionMarker + ".tmp"
	if err := s.WriteFile(tmp, []byte(v.String()+"\n"), 0644); err != nil {
		return err
	}
	return s.Rename(tmp, VersionMarker)
}
