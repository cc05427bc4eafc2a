/*
 * Copyright © 2024 One Concern
 *
 */

// Package fileops implements deferred file mutation intents. A migration
// computes its whole batch of intents without touching the store, then
// commits them in one ordered pass. Keeping the decide phase pure means it
// can be re-run safely and reasoned about without side effects.
package fileops

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// OpKind discriminates mutation intents
type OpKind int

const (
	// OpWrite writes file content, creating parent directories
	OpWrite OpKind = iota
	// OpRename moves a file or directory
	OpRename
	// OpRemove deletes a file or directory tree
	OpRemove
)

// Op is a single not-yet-committed mutation of the store
type Op struct {
	Kind    OpKind
	Path    string
	To      string // rename target
	Content []byte
	Force   bool // overwrite an existing file instead of failing
}

// Write overwrites path with content, creating it if needed
func Write(path string, content []byte) Op {
	return Op{Kind: OpWrite, Path: path, Content: content, Force: true}
}

// WriteNew writes content to path and fails if the file already exists
func WriteNew(path string, content []byte) Op {
	return Op{Kind: OpWrite, Path: path, Content: content}
}

// Rename moves old to new
func Rename(old, new string) Op {
	return Op{Kind: OpRename, Path: old, To: new}
}

// Remove deletes path and anything below it
func Remove(path string) Op {
	return Op{Kind: OpRemove, Path: path}
}

// Apply commits ops strictly in order. The first failing op aborts the
// remainder of the batch; ops already committed stay committed, so batches
// must be built to tolerate partial application followed by a retry of the
// whole migration.
func Apply(fs afero.Fs, ops []Op) error {
	for _, op := range ops {
		if err := apply(fs, op); err != nil {
			return err
		}
	}
	return nil
}

func apply(fs afero.Fs, op Op) error {
	switch op.Kind {
	case OpWrite:
		if dir := filepath.Dir(op.Path); dir != "." {
			if err := fs.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, "create parent for %s", op.Path)
			}
		}
		if op.Force {
			if err := afero.WriteFile(fs, op.Path, op.Content, 0644); err != nil {
				return errors.Wrapf(err, "write %s", op.Path)
			}
			return nil
		}
		f, err := fs.OpenFile(op.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return errors.Wrapf(err, "create %s", op.Path)
		}
		if _, err = f.Write(op.Content); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "write %s", op.Path)
		}
		if err = f.Close(); err != nil {
			return errors.Wrapf(err, "close %s", op.Path)
		}
		return nil
	case OpRename:
		if err := fs.Rename(op.Path, op.To); err != nil {
			return errors.Wrapf(err, "rename %s to %s", op.Path, op.To)
		}
		return nil
	case OpRemove:
		if err := fs.RemoveAll(op.Path); err != nil {
			return errors.Wrapf(err, "remove %s", op.Path)
		}
		return nil
	default:
		return errors.Errorf("unknown op kind %d", op.Kind)
	}
}
