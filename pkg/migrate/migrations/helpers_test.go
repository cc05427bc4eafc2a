/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"path"
	"testing"

	"github.com/oneconcern/datamig/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func memStore(t *testing.T) *store.Store {
	t.Helper()
	return store.NewWithFs(afero.NewMemMapFs())
}

func writeJSON(t *testing.T, st *store.Store, p string, v interface{}) {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, st.MkdirAll(path.Dir(p), 0755))
	require.NoError(t, st.WriteFile(p, b, 0644))
}

func readJSON(t *testing.T, st *store.Store, p string) map[string]interface{} {
	t.Helper()
	raw, err := st.ReadFile(p)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func makeEvent(trackingID, title string) map[string]interface{} {
	return map[string]interface{}{
		"tracking_id_event":    trackingID,
		"calendar_id":          "cal-1",
		"title":                title,
		"started_at":           "2024-01-15T10:00:00Z",
		"ended_at":             "2024-01-15T11:00:00Z",
		"is_all_day":           false,
		"has_recurrence_rules": false,
	}
}

func makeMeta(eventID string) map[string]interface{} {
	return map[string]interface{}{
		"id":           "session-1",
		"user_id":      "user-1",
		"created_at":   "2024-01-01T00:00:00Z",
		"title":        "Test Session",
		"event_id":     eventID,
		"participants": []interface{}{},
	}
}

// makeStore builds a store.json document with the triple-nested format:
// store.json -> {"desktop": "<desktop json>"}
// desktop    -> {"TinybaseValues": "<values json>"}
func makeStoreDoc(t *testing.T, tbValues map[string]interface{}) map[string]interface{} {
	t.Helper()
	tbStr, err := json.Marshal(tbValues)
	require.NoError(t, err)
	desktopStr, err := json.Marshal(map[string]interface{}{"TinybaseValues": string(tbStr)})
	require.NoError(t, err)
	return map[string]interface{}{"desktop": string(desktopStr)}
}

func readTbValues(t *testing.T, storeDoc map[string]interface{}) map[string]interface{} {
	t.Helper()
	desktopStr, ok := storeDoc["desktop"].(string)
	require.True(t, ok)
	var desktop map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(desktopStr), &desktop))
	tbStr, ok := desktop["TinybaseValues"].(string)
	require.True(t, ok)
	var tb map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(tbStr), &tb))
	return tb
}
