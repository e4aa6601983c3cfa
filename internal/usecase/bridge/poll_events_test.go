package bridge

import (
	"context"
	"errors"
	"testing"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
)

func enableSync(t *testing.T, f serviceFixture, tenantID string) {
	t.Helper()
	if err := f.syncs.Upsert(context.Background(), tenantID, ports.SyncStatePatch{}); err != nil {
		t.Fatalf("seed sync state: %v", err)
	}
}

func TestPollEventsAdvancesCursor(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	enableSync(t, f, "t1")

	f.client.queryResp = &ozone.QueryEventsResponse{
		Cursor: "42",
		Events: []ozone.Event{
			{ID: 1, Event: ozone.EventBody{Type: ozone.EventTypeReport}},
			{ID: 2, Event: ozone.EventBody{Type: ozone.EventTypeLabel}},
		},
	}

	result, err := f.svc.PollEvents(ctx, "t1")
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if len(result.Events) != 2 || result.NewCursor != "42" {
		t.Fatalf("result = %+v", result)
	}
	if f.client.lastQuery.Cursor != "" || f.client.lastQuery.Limit != 100 || f.client.lastQuery.SortDirection != "asc" {
		t.Fatalf("first query params = %+v", f.client.lastQuery)
	}

	state, err := f.syncs.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get sync state: %v", err)
	}
	if state.LastSyncedCursor == nil || *state.LastSyncedCursor != "42" {
		t.Fatalf("stored cursor = %v, want 42", state.LastSyncedCursor)
	}
	if state.LastSyncedAt == nil {
		t.Fatal("last synced at not set")
	}

	// The next poll resumes from the stored cursor.
	f.client.queryResp = &ozone.QueryEventsResponse{Cursor: "43", Events: []ozone.Event{}}
	if _, err := f.svc.PollEvents(ctx, "t1"); err != nil {
		t.Fatalf("PollEvents() second error = %v", err)
	}
	if f.client.lastQuery.Cursor != "42" {
		t.Fatalf("second query cursor = %q, want 42", f.client.lastQuery.Cursor)
	}
	state, _ = f.syncs.Get(ctx, "t1")
	if state.LastSyncedCursor == nil || *state.LastSyncedCursor != "43" {
		t.Fatalf("stored cursor = %v, want 43", state.LastSyncedCursor)
	}
}

func TestPollEventsNoCursorNoAdvance(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	enableSync(t, f, "t1")

	cursor := "42"
	if err := f.syncs.Upsert(ctx, "t1", ports.SyncStatePatch{Cursor: &cursor}); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	// Events but no cursor field: conservative no-advance.
	f.client.queryResp = &ozone.QueryEventsResponse{
		Events: []ozone.Event{{ID: 3, Event: ozone.EventBody{Type: ozone.EventTypeComment}}},
	}

	result, err := f.svc.PollEvents(ctx, "t1")
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if result.NewCursor != "" || len(result.Events) != 1 {
		t.Fatalf("result = %+v", result)
	}

	state, _ := f.syncs.Get(ctx, "t1")
	if state.LastSyncedCursor == nil || *state.LastSyncedCursor != "42" {
		t.Fatalf("stored cursor = %v, want unchanged 42", state.LastSyncedCursor)
	}
}

func TestPollEventsUnconfiguredTenantIsEmpty(t *testing.T) {
	f := setupService(t)

	result, err := f.svc.PollEvents(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if len(result.Events) != 0 || result.NewCursor != "" {
		t.Fatalf("result = %+v, want empty", result)
	}
}

func TestPollEventsSkipsWithoutSyncState(t *testing.T) {
	f := setupService(t)

	result, err := f.svc.PollEvents(context.Background(), "t1")
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if len(result.Events) != 0 {
		t.Fatalf("result = %+v, want empty", result)
	}
	if f.client.lastQuery != nil {
		t.Fatal("queried labeler despite missing sync state")
	}
}

func TestPollEventsSkipsDisabledTenant(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	enableSync(t, f, "t1")

	if err := f.svc.SetSyncEnabled(ctx, "t1", false); err != nil {
		t.Fatalf("SetSyncEnabled() error = %v", err)
	}

	result, err := f.svc.PollEvents(ctx, "t1")
	if err != nil {
		t.Fatalf("PollEvents() error = %v", err)
	}
	if len(result.Events) != 0 || f.client.lastQuery != nil {
		t.Fatalf("disabled tenant was polled: %+v", result)
	}
}

func TestPollEventsErrorLeavesCursor(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	enableSync(t, f, "t1")

	cursor := "7"
	if err := f.syncs.Upsert(ctx, "t1", ports.SyncStatePatch{Cursor: &cursor}); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	f.client.queryErr = &domainbridge.HTTPError{Status: 502}
	_, err := f.svc.PollEvents(ctx, "t1")
	var httpErr *domainbridge.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}

	state, _ := f.syncs.Get(ctx, "t1")
	if state.LastSyncedCursor == nil || *state.LastSyncedCursor != "7" {
		t.Fatalf("cursor after failed poll = %v, want 7", state.LastSyncedCursor)
	}
}
