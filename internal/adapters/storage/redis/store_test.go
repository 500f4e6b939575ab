package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

func newTestStore(t *testing.T, changeLimit int) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := New(client, "", changeLimit)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStoreBoardRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 0)

	if _, ok, err := store.LoadBoard(ctx, "kanbanBoard"); err != nil || ok {
		t.Fatalf("LoadBoard() on empty = ok %t err %v", ok, err)
	}
	blob := []byte(`{"tasks":{},"columns":[]}`)
	if err := store.SaveBoard(ctx, "kanbanBoard", blob); err != nil {
		t.Fatalf("SaveBoard() error = %v", err)
	}
	got, err := mr.Get("tavla:board:kanbanBoard")
	if err != nil {
		t.Fatalf("miniredis Get() error = %v", err)
	}
	if got != string(blob) {
		t.Fatalf("unexpected raw value %q", got)
	}
	if ttl := mr.TTL("tavla:board:kanbanBoard"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
	loaded, ok, err := store.LoadBoard(ctx, "kanbanBoard")
	if err != nil || !ok || string(loaded) != string(blob) {
		t.Fatalf("LoadBoard() = %q ok %t err %v", loaded, ok, err)
	}
}

func TestStoreBoardKeysDoNotCollideWithLedger(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)

	for _, key := range []string{"changes", "changes:seq"} {
		blob := []byte(`{"tasks":{},"columns":[{"id":"` + key + `","name":"N","tasks":[]}]}`)
		if err := store.SaveBoard(ctx, key, blob); err != nil {
			t.Fatalf("SaveBoard(%q) error = %v", key, err)
		}
		err := store.RecordChange(ctx, domain.ChangeEvent{
			SessionID:  "s1",
			Operation:  domain.ChangeOperationCreate,
			TargetKind: domain.ChangeTargetTask,
			TargetID:   "task-0",
			OccurredAt: time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("RecordChange() with board key %q error = %v", key, err)
		}
		loaded, ok, err := store.LoadBoard(ctx, key)
		if err != nil || !ok || string(loaded) != string(blob) {
			t.Fatalf("LoadBoard(%q) = %q ok %t err %v", key, loaded, ok, err)
		}
	}
	changes, err := store.ListChanges(ctx, 10)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
}

func TestStoreChangeLedgerIsCapped(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, 3)
	base := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.RecordChange(ctx, domain.ChangeEvent{
			SessionID:  "s1",
			Operation:  domain.ChangeOperationCreate,
			TargetKind: domain.ChangeTargetTask,
			TargetID:   fmt.Sprintf("task-%d", i),
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordChange() error = %v", err)
		}
	}

	items, err := mr.List("tavla:changes")
	if err != nil {
		t.Fatalf("miniredis List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected capped list of 3, got %d", len(items))
	}

	events, err := store.ListChanges(ctx, 10)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].TargetID != "task-4" || events[0].ID != 5 {
		t.Fatalf("unexpected newest event %#v", events[0])
	}
	if events[2].TargetID != "task-2" || events[2].Metadata == nil {
		t.Fatalf("unexpected oldest event %#v", events[2])
	}
	if !events[0].OccurredAt.Equal(base.Add(4 * time.Minute)) {
		t.Fatalf("unexpected occurred_at %v", events[0].OccurredAt)
	}

	limited, _ := store.ListChanges(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected 1 event, got %d", len(limited))
	}
}

func TestOpenFromURL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := Open(context.Background(), Options{URL: "redis://" + mr.Addr() + "/0", Prefix: "x:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.SaveBoard(context.Background(), "k", []byte("{}")); err != nil {
		t.Fatalf("SaveBoard() error = %v", err)
	}
	if !mr.Exists("x:board:k") {
		t.Fatal("expected prefixed key")
	}

	if _, err := Open(context.Background(), Options{URL: ""}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := Open(context.Background(), Options{URL: "ftp://nope"}); err == nil {
		t.Fatal("expected error for invalid scheme")
	}
}

func TestStoreServiceIntegration(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, 0)
	svc := app.NewService(store, nil, nil, app.ServiceConfig{})
	if _, err := svc.AddTask(ctx, "Write docs"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, err := svc.AddColumn(ctx, "Review"); err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}

	reloaded := app.NewService(store, nil, nil, app.ServiceConfig{})
	view, err := reloaded.Board(ctx)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if len(view.Columns) != 4 || view.TotalTasks != 1 {
		t.Fatalf("unexpected reloaded board %#v", view)
	}
	events, err := reloaded.ListChanges(ctx, 10)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(events) != 2 || events[0].TargetKind != domain.ChangeTargetColumn {
		t.Fatalf("unexpected events %#v", events)
	}
}
