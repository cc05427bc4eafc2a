/*
 * Copyright © 2024 One Concern
 *
 */

// Package store gives the migration engine a handle on the application data
// store directory: filesystem access rooted at the store, version marker
// read/write, and structural detection of legacy layouts.
package store

import (
	"github.com/spf13/afero"
)

// Store is a handle on a data store directory. All file access goes through
// the embedded afero filesystem, rooted at the store directory, so the
// engine and most migrations can run against a memory filesystem in tests.
type Store struct {
	afero.Afero
	path string
}

// New creates a store handle rooted at dir on the local filesystem
func New(dir string) *Store {
	return &Store{
		Afero: afero.Afero{Fs: afero.NewBasePathFs(afero.NewOsFs(), dir)},
		path:  dir,
	}
}

// NewWithFs creates a store handle over an arbitrary filesystem, e.g.
// afero.NewMemMapFs() in tests.
func NewWithFs(fs afero.Fs) *Store {
	return &Store{Afero: afero.Afero{Fs: fs}}
}

// Path returns the OS path of the store root. It is empty when the store is
// backed by a synthetic filesystem; migrations that must hand a real path to
// an external library (e.g. a sql driver) check for that.
func (s *Store) Path() string {
	return s.path
}
