/*
 * Copyright © 2024 One Concern
 *
 */

package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsSyncEmbedsEventIntoMeta(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "events.json", map[string]interface{}{"row-1": makeEvent("track-1", "Meeting")})
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("row-1"))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	meta := readJSON(t, st, "sessions/session-1/_meta.json")
	assert.NotContains(t, meta, "event_id")
	event, ok := meta["event"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "track-1", event["tracking_id"])
	assert.Equal(t, "Meeting", event["title"])
	assert.Equal(t, "cal-1", event["calendar_id"])
	assert.Equal(t, false, event["is_all_day"])
}

func TestEventsSyncClearsDanglingEventID(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("nonexistent"))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	meta := readJSON(t, st, "sessions/session-1/_meta.json")
	assert.NotContains(t, meta, "event_id")
	assert.NotContains(t, meta, "event")
}

func TestEventsSyncSkipsAlreadyMigratedMeta(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "sessions/session-1/_meta.json", map[string]interface{}{
		"id":           "session-1",
		"event":        map[string]interface{}{"tracking_id": "track-1"},
		"participants": []interface{}{},
	})

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	meta := readJSON(t, st, "sessions/session-1/_meta.json")
	event, ok := meta["event"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "track-1", event["tracking_id"])
}

func TestEventsSyncMigratesMultipleSessions(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "events.json", map[string]interface{}{
		"row-1": makeEvent("track-1", "Meeting 1"),
		"row-2": makeEvent("track-2", "Meeting 2"),
	})
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("row-1"))
	meta2 := makeMeta("row-2")
	meta2["id"] = "session-2"
	writeJSON(t, st, "sessions/session-2/_meta.json", meta2)

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	event1 := readJSON(t, st, "sessions/session-1/_meta.json")["event"].(map[string]interface{})
	event2 := readJSON(t, st, "sessions/session-2/_meta.json")["event"].(map[string]interface{})
	assert.Equal(t, "track-1", event1["tracking_id"])
	assert.Equal(t, "track-2", event2["tracking_id"])
}

func TestEventsSyncOptionalEventFields(t *testing.T) {
	st := memStore(t)
	full := makeEvent("track-1", "Full Event")
	full["location"] = "Room 42"
	full["meeting_link"] = "https://meet.example.com"
	full["description"] = "A meeting"
	full["recurrence_series_id"] = "series-1"
	writeJSON(t, st, "events.json", map[string]interface{}{"row-1": full})
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("row-1"))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	event := readJSON(t, st, "sessions/session-1/_meta.json")["event"].(map[string]interface{})
	assert.Equal(t, "Room 42", event["location"])
	assert.Equal(t, "https://meet.example.com", event["meeting_link"])
	assert.Equal(t, "A meeting", event["description"])
	assert.Equal(t, "series-1", event["recurrence_series_id"])
}

func TestEventsSyncOmitsAbsentOptionalFields(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "events.json", map[string]interface{}{"row-1": makeEvent("track-1", "Basic")})
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("row-1"))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	event := readJSON(t, st, "sessions/session-1/_meta.json")["event"].(map[string]interface{})
	assert.NotContains(t, event, "location")
	assert.NotContains(t, event, "meeting_link")
	assert.NotContains(t, event, "description")
	assert.NotContains(t, event, "recurrence_series_id")
}

func TestEventsSyncStripsIgnoredFlag(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "events.json", map[string]interface{}{
		"event-1": map[string]interface{}{"tracking_id_event": "track-1", "title": "Meeting", "ignored": true},
		"event-2": map[string]interface{}{"tracking_id_event": "track-2", "title": "Lunch", "ignored": false},
	})

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	events := readJSON(t, st, "events.json")
	assert.NotContains(t, events["event-1"].(map[string]interface{}), "ignored")
	assert.NotContains(t, events["event-2"].(map[string]interface{}), "ignored")
	assert.Equal(t, "Meeting", events["event-1"].(map[string]interface{})["title"])
}

func TestCollectIgnoredEvents(t *testing.T) {
	events := map[string]map[string]interface{}{
		"e1": {"tracking_id_event": "track-1", "started_at": "2024-01-15T10:00:00Z", "ignored": true},
		"e2": {"tracking_id_event": "track-2", "started_at": "2024-02-01T09:00:00Z", "ignored": false},
		"e3": {"tracking_id_event": "track-3", "started_at": "2024-03-10T14:00:00Z", "ignored": true},
	}

	result := collectIgnoredEvents(events, map[string]struct{}{})
	require.Len(t, result, 2)

	tids := []string{}
	for _, e := range result {
		tids = append(tids, e["tracking_id"].(string))
	}
	assert.Contains(t, tids, "track-1")
	assert.Contains(t, tids, "track-3")
}

func TestCollectIgnoredEventsExtractsDay(t *testing.T) {
	events := map[string]map[string]interface{}{
		"e1": {"tracking_id_event": "track-1", "started_at": "2024-01-15T10:00:00Z", "ignored": true},
	}
	result := collectIgnoredEvents(events, map[string]struct{}{})
	require.Len(t, result, 1)
	assert.Equal(t, "2024-01-15", result[0]["day"])

	// missing started_at falls back to the epoch day
	events = map[string]map[string]interface{}{
		"e1": {"tracking_id_event": "track-1", "ignored": true},
	}
	result = collectIgnoredEvents(events, map[string]struct{}{})
	require.Len(t, result, 1)
	assert.Equal(t, "1970-01-01", result[0]["day"])
}

func TestCollectIgnoredEventsSkipsIgnoredSeries(t *testing.T) {
	events := map[string]map[string]interface{}{
		"e1": {"tracking_id_event": "track-1", "started_at": "2024-01-15T10:00:00Z", "ignored": true, "recurrence_series_id": "series-1"},
		"e2": {"tracking_id_event": "track-2", "started_at": "2024-02-01T09:00:00Z", "ignored": true},
	}

	result := collectIgnoredEvents(events, map[string]struct{}{"series-1": {}})
	require.Len(t, result, 1)
	assert.Equal(t, "track-2", result[0]["tracking_id"])
}

func TestEventsSyncAddsIgnoredEventsToStore(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "events.json", map[string]interface{}{
		"e1": map[string]interface{}{"tracking_id_event": "track-1", "started_at": "2024-01-15T10:00:00Z", "ignored": true},
	})
	writeJSON(t, st, "store.json", makeStoreDoc(t, map[string]interface{}{"user_id": "user-1"}))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	tb := readTbValues(t, readJSON(t, st, "store.json"))
	ignoredStr, ok := tb["ignored_events"].(string)
	require.True(t, ok)
	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ignoredStr), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "track-1", parsed[0]["tracking_id"])
	assert.Equal(t, "2024-01-15", parsed[0]["day"])
}

func TestEventsSyncMergesWithExistingIgnoredEvents(t *testing.T) {
	st := memStore(t)
	existing, err := json.Marshal([]map[string]interface{}{
		{"tracking_id": "track-1", "day": "2024-01-15", "last_seen": "old"},
	})
	require.NoError(t, err)
	writeJSON(t, st, "store.json", makeStoreDoc(t, map[string]interface{}{
		"user_id":        "user-1",
		"ignored_events": string(existing),
	}))
	writeJSON(t, st, "events.json", map[string]interface{}{
		"e1": map[string]interface{}{"tracking_id_event": "track-1", "started_at": "2024-01-15T10:00:00Z", "ignored": true},
		"e2": map[string]interface{}{"tracking_id_event": "track-2", "started_at": "2024-02-01T09:00:00Z", "ignored": true},
	})

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	tb := readTbValues(t, readJSON(t, st, "store.json"))
	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(tb["ignored_events"].(string)), &parsed))
	require.Len(t, parsed, 2)
	// the pre-existing entry keeps its original timestamp
	assert.Equal(t, "old", parsed[0]["last_seen"])
	assert.Equal(t, "track-2", parsed[1]["tracking_id"])
}

func TestEventsSyncMigratesRecurringSeriesFormat(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "store.json", makeStoreDoc(t, map[string]interface{}{
		"ignored_recurring_series": `["series-1","series-2"]`,
	}))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	tb := readTbValues(t, readJSON(t, st, "store.json"))
	var parsed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(tb["ignored_recurring_series"].(string)), &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "series-1", parsed[0]["id"])
	assert.NotEmpty(t, parsed[0]["last_seen"])
	assert.Equal(t, "series-2", parsed[1]["id"])
}

func TestEventsSyncRecurringSeriesAlreadyMigrated(t *testing.T) {
	st := memStore(t)
	series, err := json.Marshal([]map[string]interface{}{
		{"id": "series-1", "last_seen": "2024-01-01T00:00:00Z"},
	})
	require.NoError(t, err)
	original := makeStoreDoc(t, map[string]interface{}{
		"ignored_recurring_series": string(series),
	})
	writeJSON(t, st, "store.json", original)

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	// nothing to change: the document is untouched
	assert.Equal(t, original, readJSON(t, st, "store.json"))
}

func TestEventsSyncNoStoreJSON(t *testing.T) {
	st := memStore(t)
	writeJSON(t, st, "sessions/session-1/_meta.json", makeMeta("nonexistent"))

	require.NoError(t, eventsSync{}.Run(context.Background(), st))

	meta := readJSON(t, st, "sessions/session-1/_meta.json")
	assert.NotContains(t, meta, "event_id")
	assert.NotContains(t, meta, "event")
}

func TestEventsSyncEmptyStoreIsNoop(t *testing.T) {
	st := memStore(t)
	require.NoError(t, eventsSync{}.Run(context.Background(), st))
}
