/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"
	"time"

	"github.com/oneconcern/datamig/pkg/fileops"
	"github.com/oneconcern/datamig/pkg/migrate"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/oneconcern/datamig/pkg/store"
)

var eventsSyncVersion = model.MustVersion("1.0.7-nightly.1")

// eventsSync reshapes how calendar events relate to sessions and the
// preference store:
//
//   - each sessions/<id>/_meta.json gets the referenced event document
//     embedded under "event", replacing the dangling "event_id";
//   - the per-event "ignored" flag is dropped from events.json;
//   - ignored one-off events and string-encoded recurring series ids are
//     folded into the TinyBase value blobs of store.json, merging with
//     whatever entries are already there.
//
// store.json nests three levels of string-encoded JSON:
// {"desktop": "<json>"} -> {"TinybaseValues": "<json>"} ->
// {"ignored_recurring_series": "<json>", "ignored_events": "<json>", ...}.
type eventsSync struct {
	migrate.Base
}

func (eventsSync) Name() string                 { return "events-sync" }
func (eventsSync) IntroducedIn() *model.Version { return eventsSyncVersion }

func (eventsSync) Run(_ context.Context, st *store.Store) error {
	events := loadEvents(st)

	var ops []fileops.Op
	migrateSessionMetas(st, events, &ops)

	ignoredSeries := loadIgnoredRecurringSeriesIDs(st)
	ignored := collectIgnoredEvents(events, ignoredSeries)
	cleanEventsJSON(st, &ops)
	migrateStoreValues(st, ignored, &ops)

	return fileops.Apply(st.Fs, ops)
}

// events.json

func loadEvents(st *store.Store) map[string]map[string]interface{} {
	raw, err := st.ReadFile("events.json")
	if err != nil {
		return map[string]map[string]interface{}{}
	}
	var events map[string]map[string]interface{}
	if err := json.Unmarshal(raw, &events); err != nil {
		return map[string]map[string]interface{}{}
	}
	return events
}

func loadIgnoredRecurringSeriesIDs(st *store.Store) map[string]struct{} {
	ids := map[string]struct{}{}

	tb := readTinybaseValues(st)
	if tb == nil {
		return ids
	}
	raw, ok := getString(tb, "ignored_recurring_series")
	if !ok {
		return ids
	}
	var arr []interface{}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return ids
	}

	for _, v := range arr {
		if s, ok := v.(string); ok {
			ids[s] = struct{}{}
			continue
		}
		if obj, ok := v.(map[string]interface{}); ok {
			if id, ok := getString(obj, "id"); ok {
				ids[id] = struct{}{}
			}
		}
	}
	return ids
}

func collectIgnoredEvents(events map[string]map[string]interface{}, ignoredSeries map[string]struct{}) []map[string]interface{} {
	now := time.Now().UTC().Format(time.RFC3339)
	var result []map[string]interface{}

	for _, event := range events {
		if !getBool(event, "ignored") {
			continue
		}

		if seriesID, ok := getString(event, "recurrence_series_id"); ok {
			if _, already := ignoredSeries[seriesID]; already {
				continue
			}
		}

		trackingID, _ := getString(event, "tracking_id_event")
		startedAt, _ := getString(event, "started_at")
		day := "1970-01-01"
		if len(startedAt) >= 10 {
			day = startedAt[:10]
		}

		result = append(result, map[string]interface{}{
			"tracking_id": trackingID,
			"day":         day,
			"last_seen":   now,
		})
	}
	return result
}

func cleanEventsJSON(st *store.Store, ops *[]fileops.Op) {
	raw, err := st.ReadFile("events.json")
	if err != nil {
		return
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	changed := false
	for _, event := range data {
		obj, ok := event.(map[string]interface{})
		if !ok {
			continue
		}
		if _, has := obj["ignored"]; has {
			delete(obj, "ignored")
			changed = true
		}
	}
	if !changed {
		return
	}

	if b, err := json.MarshalIndent(data, "", "  "); err == nil {
		*ops = append(*ops, fileops.Write("events.json", b))
	}
}

// sessions/<session_id>/_meta.json

func buildSessionEvent(event map[string]interface{}) map[string]interface{} {
	obj := map[string]interface{}{}

	trackingID, _ := getString(event, "tracking_id_event")
	obj["tracking_id"] = trackingID

	for _, key := range []string{"calendar_id", "title", "started_at", "ended_at"} {
		v, _ := getString(event, key)
		obj[key] = v
	}
	for _, key := range []string{"is_all_day", "has_recurrence_rules"} {
		obj[key] = getBool(event, key)
	}
	for _, key := range []string{"location", "meeting_link", "description", "recurrence_series_id"} {
		if v, ok := getString(event, key); ok {
			obj[key] = v
		}
	}
	return obj
}

func migrateSessionMetas(st *store.Store, events map[string]map[string]interface{}, ops *[]fileops.Op) {
	for _, name := range sessionDirs(st) {
		metaPath := sessionPath(name, "_meta.json")
		if ok, _ := st.Exists(metaPath); !ok {
			continue
		}
		if op, ok := migrateMeta(st, metaPath, events); ok {
			*ops = append(*ops, op)
		}
	}
}

func migrateMeta(st *store.Store, metaPath string, events map[string]map[string]interface{}) (fileops.Op, bool) {
	meta := readJSONMap(st, metaPath)
	if meta == nil {
		return fileops.Op{}, false
	}

	if _, migrated := meta["event"]; migrated {
		return fileops.Op{}, false
	}
	eventID, ok := getString(meta, "event_id")
	if !ok {
		return fileops.Op{}, false
	}

	if event, found := events[eventID]; found {
		meta["event"] = buildSessionEvent(event)
	}
	delete(meta, "event_id")

	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fileops.Op{}, false
	}
	return fileops.Write(metaPath, b), true
}

// store.json (TinyBase values)

func readTinybaseValues(st *store.Store) map[string]interface{} {
	storeDoc := readJSONMap(st, "store.json")
	if storeDoc == nil {
		return nil
	}
	desktopStr, ok := getString(storeDoc, "desktop")
	if !ok {
		return nil
	}
	var desktop map[string]interface{}
	if err := json.Unmarshal([]byte(desktopStr), &desktop); err != nil {
		return nil
	}
	tbStr, ok := getString(desktop, "TinybaseValues")
	if !ok {
		return nil
	}
	var tb map[string]interface{}
	if err := json.Unmarshal([]byte(tbStr), &tb); err != nil {
		return nil
	}
	return tb
}

func migrateStoreValues(st *store.Store, ignoredEvents []map[string]interface{}, ops *[]fileops.Op) {
	storeDoc := readJSONMap(st, "store.json")
	if storeDoc == nil {
		return
	}
	desktopStr, ok := getString(storeDoc, "desktop")
	if !ok {
		return
	}
	var desktop map[string]interface{}
	if err := json.Unmarshal([]byte(desktopStr), &desktop); err != nil {
		return
	}
	tbStr, ok := getString(desktop, "TinybaseValues")
	if !ok {
		return
	}
	var tb map[string]interface{}
	if err := json.Unmarshal([]byte(tbStr), &tb); err != nil {
		return
	}

	changed := false
	if len(ignoredEvents) > 0 {
		changed = mergeIgnoredEvents(tb, ignoredEvents) || changed
	}
	changed = migrateIgnoredRecurringSeries(tb) || changed
	if !changed {
		return
	}

	newTb, err := json.Marshal(tb)
	if err != nil {
		return
	}
	desktop["TinybaseValues"] = string(newTb)

	newDesktop, err := json.Marshal(desktop)
	if err != nil {
		return
	}
	storeDoc["desktop"] = string(newDesktop)

	if b, err := json.MarshalIndent(storeDoc, "", "  "); err == nil {
		*ops = append(*ops, fileops.Write("store.json", b))
	}
}

func mergeIgnoredEvents(tb map[string]interface{}, newEntries []map[string]interface{}) bool {
	var existing []interface{}
	if raw, ok := getString(tb, "ignored_events"); ok {
		_ = json.Unmarshal([]byte(raw), &existing)
	}

	existingKeys := map[string]struct{}{}
	for _, e := range existing {
		obj, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		tid, okT := getString(obj, "tracking_id")
		day, okD := getString(obj, "day")
		if okT && okD {
			existingKeys[tid+":"+day] = struct{}{}
		}
	}

	added := false
	for _, entry := range newEntries {
		tid, okT := getString(entry, "tracking_id")
		day, okD := getString(entry, "day")
		if !okT || !okD {
			continue
		}
		if _, dup := existingKeys[tid+":"+day]; dup {
			continue
		}
		existing = append(existing, entry)
		added = true
	}
	if !added {
		return false
	}

	serialized, err := json.Marshal(existing)
	if err != nil {
		return false
	}
	tb["ignored_events"] = string(serialized)
	return true
}

func migrateIgnoredRecurringSeries(tb map[string]interface{}) bool {
	raw, ok := getString(tb, "ignored_recurring_series")
	if !ok {
		return false
	}
	var arr []interface{}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return false
	}
	if len(arr) == 0 {
		return false
	}

	alreadyMigrated := true
	for _, v := range arr {
		if _, ok := v.(map[string]interface{}); !ok {
			alreadyMigrated = false
			break
		}
	}
	if alreadyMigrated {
		return false
	}

	now := time.Now().UTC().Format(time.RFC3339)
	migrated := make([]interface{}, 0, len(arr))
	for _, v := range arr {
		if id, ok := v.(string); ok {
			migrated = append(migrated, map[string]interface{}{"id": id, "last_seen": now})
		}
	}

	serialized, err := json.Marshal(migrated)
	if err != nil {
		return false
	}
	tb["ignored_recurring_series"] = string(serialized)
	return true
}
