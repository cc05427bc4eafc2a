/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"path"

	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

// inferredAs is true when the detection inferred one of the given layouts
func inferredAs(d model.DetectedVersion, layouts ...model.LegacyLayout) bool {
	if !d.IsInferred() {
		return false
	}
	for _, l := range layouts {
		if d.Layout == l {
			return true
		}
	}
	return false
}

// sessionDirs lists session folder names, empty when sessions/ is absent
func sessionDirs(st *store.Store) []string {
	entries, err := st.ReadDir(store.SessionsDir)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			out = append(out, entry.Name())
		}
	}
	return out
}

// readJSONMap reads a JSON object document, nil when the file is missing or
// does not hold an object
func readJSONMap(st *store.Store, p string) map[string]interface{} {
	raw, err := st.ReadFile(p)
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

func sessionPath(id string, file string) string {
	return path.Join(store.SessionsDir, id, file)
}

func getString(doc map[string]interface{}, key string) (string, bool) {
	v, ok := doc[key].(string)
	return v, ok
}

func getBool(doc map[string]interface{}, key string) bool {
	v, _ := doc[key].(bool)
	return v
}
