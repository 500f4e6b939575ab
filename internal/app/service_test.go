package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

type fakeStore struct {
	blobs   map[string][]byte
	saves   int
	saveErr error
	events  []domain.ChangeEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (f *fakeStore) LoadBoard(_ context.Context, key string) ([]byte, bool, error) {
	blob, ok := f.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (f *fakeStore) SaveBoard(_ context.Context, key string, blob []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (f *fakeStore) RecordChange(_ context.Context, event domain.ChangeEvent) error {
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ListChanges(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0, len(f.events))
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.events[i])
	}
	return out, nil
}

// plainStore implements BoardStore without the ledger.
type plainStore struct {
	blobs map[string][]byte
}

func (p *plainStore) LoadBoard(_ context.Context, key string) ([]byte, bool, error) {
	blob, ok := p.blobs[key]
	return blob, ok, nil
}

func (p *plainStore) SaveBoard(_ context.Context, key string, blob []byte) error {
	p.blobs[key] = blob
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, store BoardStore, cfg ServiceConfig) *Service {
	t.Helper()
	svc := NewService(store, fixedClock, nil, cfg)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return svc
}

func progressByColumn(t *testing.T, svc *Service) map[string]float64 {
	t.Helper()
	progress, err := svc.Progress(context.Background())
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	out := map[string]float64{}
	for _, p := range progress {
		out[p.ColumnID] = p.Percent
	}
	return out
}

func assertPercent(t *testing.T, got map[string]float64, columnID string, want float64) {
	t.Helper()
	if math.Abs(got[columnID]-want) > 1e-9 {
		t.Fatalf("progress[%s] = %v, want %v", columnID, got[columnID], want)
	}
}

func TestLoadSeedsDefaultColumnsWithoutSaving(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})

	view, err := svc.Board(context.Background())
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	want := []struct{ id, name string }{{"todo", "To Do"}, {"inProgress", "In Progress"}, {"done", "Done"}}
	if len(view.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(view.Columns))
	}
	for i, column := range view.Columns {
		if column.ID != want[i].id || column.Name != want[i].name || len(column.Tasks) != 0 {
			t.Fatalf("unexpected column %d: %#v", i, column)
		}
	}
	progress := progressByColumn(t, svc)
	for _, w := range want {
		assertPercent(t, progress, w.id, 0)
	}
	if store.saves != 0 {
		t.Fatalf("expected no save on first load, got %d", store.saves)
	}
}

func TestScenarioAddMoveDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})

	first, err := svc.AddTask(ctx, "Write docs")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if first.ID != "task-0" {
		t.Fatalf("expected task-0, got %q", first.ID)
	}
	progress := progressByColumn(t, svc)
	assertPercent(t, progress, "todo", 100)
	assertPercent(t, progress, "inProgress", 0)
	assertPercent(t, progress, "done", 0)

	second, err := svc.AddTask(ctx, "Review docs")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if second.ID != "task-1" {
		t.Fatalf("expected task-1, got %q", second.ID)
	}
	if err := svc.StartDrag(ctx, second.ID); err != nil {
		t.Fatalf("StartDrag() error = %v", err)
	}
	if _, err := svc.HideDragged(ctx); err != nil {
		t.Fatalf("HideDragged() error = %v", err)
	}
	moved, err := svc.Drop(ctx, "inProgress")
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if !moved {
		t.Fatal("expected drop to move the task")
	}
	if err := svc.EndDrag(ctx); err != nil {
		t.Fatalf("EndDrag() error = %v", err)
	}
	progress = progressByColumn(t, svc)
	assertPercent(t, progress, "todo", 50)
	assertPercent(t, progress, "inProgress", 50)
	assertPercent(t, progress, "done", 0)

	blob, err := DecodeBlob(store.blobs[DefaultStorageKey])
	if err != nil {
		t.Fatalf("DecodeBlob() error = %v", err)
	}
	if blob.Tasks["task-1"].Column != "inProgress" {
		t.Fatalf("expected persisted task-1 in inProgress, got %#v", blob.Tasks["task-1"])
	}

	if err := svc.DeleteTask(ctx, first.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	progress = progressByColumn(t, svc)
	assertPercent(t, progress, "todo", 0)
	assertPercent(t, progress, "inProgress", 100)
	view, _ := svc.Board(ctx)
	if view.TotalTasks != 1 {
		t.Fatalf("expected 1 task, got %d", view.TotalTasks)
	}
}

func TestAddTaskEmptyTextLeavesBlobUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	if _, err := svc.AddTask(ctx, "keep"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	before := string(store.blobs[DefaultStorageKey])
	saves := store.saves

	if _, err := svc.AddTask(ctx, "  \t "); !errors.Is(err, domain.ErrEmptyTaskText) {
		t.Fatalf("expected ErrEmptyTaskText, got %v", err)
	}
	if string(store.blobs[DefaultStorageKey]) != before || store.saves != saves {
		t.Fatal("expected blob and save count unchanged")
	}
	view, _ := svc.Board(ctx)
	if view.TotalTasks != 1 {
		t.Fatalf("expected 1 task, got %d", view.TotalTasks)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	for _, text := range []string{"a", "b", "c"} {
		if _, err := svc.AddTask(ctx, text); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	column, err := svc.AddColumn(ctx, "Review")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if err := svc.MoveTask(ctx, "task-1", column.ID); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	before, _ := svc.Board(ctx)

	reloaded := newTestService(t, store, ServiceConfig{})
	after, err := reloaded.Board(ctx)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if len(before.Columns) != len(after.Columns) {
		t.Fatalf("column count mismatch %d vs %d", len(before.Columns), len(after.Columns))
	}
	for i := range before.Columns {
		b, a := before.Columns[i], after.Columns[i]
		if b.ID != a.ID || b.Name != a.Name || len(b.Tasks) != len(a.Tasks) {
			t.Fatalf("column %d mismatch %#v vs %#v", i, b, a)
		}
		for j := range b.Tasks {
			if b.Tasks[j].ID != a.Tasks[j].ID || b.Tasks[j].Text != a.Tasks[j].Text {
				t.Fatalf("task mismatch %#v vs %#v", b.Tasks[j], a.Tasks[j])
			}
		}
	}

	next, err := reloaded.AddTask(ctx, "d")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if next.ID != "task-3" {
		t.Fatalf("expected task-3 after reload, got %q", next.ID)
	}
}

func TestDeleteColumnRemovesItsTasks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeStore(), ServiceConfig{})
	for _, text := range []string{"a", "b", "c"} {
		if _, err := svc.AddTask(ctx, text); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	if err := svc.MoveTask(ctx, "task-2", "done"); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	before, _ := svc.Board(ctx)
	todo, _ := before.Column("todo")

	if err := svc.DeleteColumn(ctx, "todo"); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	after, _ := svc.Board(ctx)
	if after.TotalTasks != before.TotalTasks-len(todo.Tasks) {
		t.Fatalf("expected total %d, got %d", before.TotalTasks-len(todo.Tasks), after.TotalTasks)
	}
	if _, ok := after.Task("task-2"); !ok {
		t.Fatal("expected task-2 to survive")
	}
	if err := svc.DeleteColumn(ctx, "todo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddTask(ctx, "x"); !errors.Is(err, domain.ErrTaskColumnMissing) {
		t.Fatalf("expected ErrTaskColumnMissing, got %v", err)
	}
}

func TestEditTaskAlwaysSaves(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	task, _ := svc.AddTask(ctx, "draft")
	saves := store.saves

	got, err := svc.EditTask(ctx, task.ID, nil)
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if got.Text != "draft" || store.saves != saves+1 {
		t.Fatalf("expected unchanged text with a save, got %q saves=%d", got.Text, store.saves)
	}
	text := " final "
	got, err = svc.EditTask(ctx, task.ID, &text)
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if got.Text != "final" {
		t.Fatalf("expected final, got %q", got.Text)
	}
	_, err = svc.EditTask(ctx, "task-9", &text)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrNotFound wrapping ErrTaskNotFound, got %v", err)
	}
}

func TestAddColumnValidation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	if _, err := svc.AddColumn(ctx, "   "); !errors.Is(err, domain.ErrEmptyColumnName) {
		t.Fatalf("expected ErrEmptyColumnName, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("expected no save, got %d", store.saves)
	}
	column, err := svc.AddColumn(ctx, "Blocked")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if column.ID != "column-0" {
		t.Fatalf("expected column-0, got %q", column.ID)
	}
}

func TestLegacyColumnCounterPolicy(t *testing.T) {
	ctx := context.Background()
	cfg := ServiceConfig{Board: domain.BoardOptions{ColumnCounter: domain.ColumnCounterColumnCount}}
	svc := newTestService(t, newFakeStore(), cfg)
	column, err := svc.AddColumn(ctx, "Blocked")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if column.ID != "column-3" {
		t.Fatalf("expected column-3, got %q", column.ID)
	}
}

func TestLoadMalformedBlob(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"tasks":`,
		"missing task":   `{"tasks":{},"columns":[{"id":"todo","name":"To Do","tasks":["task-0"]}]}`,
		"duplicate cols": `{"tasks":{},"columns":[{"id":"a","name":"A","tasks":[]},{"id":"a","name":"B","tasks":[]}]}`,
	}
	for name, raw := range cases {
		store := newFakeStore()
		store.blobs[DefaultStorageKey] = []byte(raw)
		svc := NewService(store, fixedClock, nil, ServiceConfig{})
		if err := svc.Load(context.Background()); !errors.Is(err, domain.ErrMalformedBoard) {
			t.Fatalf("%s: expected ErrMalformedBoard, got %v", name, err)
		}
	}
}

func TestLoadNullBlobSeedsDefaults(t *testing.T) {
	store := newFakeStore()
	store.blobs[DefaultStorageKey] = []byte(" null\n")
	svc := newTestService(t, store, ServiceConfig{})
	ctx := context.Background()

	view, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if len(view.Columns) != 3 || view.Columns[0].ID != "todo" {
		t.Fatalf("expected default columns, got %#v", view.Columns)
	}
	if store.saves != 0 {
		t.Fatalf("expected no save on seed, got %d", store.saves)
	}
	task, err := svc.AddTask(ctx, "Buy milk")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.ID != "task-0" {
		t.Fatalf("expected task-0, got %q", task.ID)
	}
	if IsNullBlob(store.blobs[DefaultStorageKey]) {
		t.Fatal("expected null blob to be replaced after a mutation")
	}
}

func TestImportRejectsNullBlob(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	ctx := context.Background()
	if _, err := svc.AddTask(ctx, "keep me"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	saves := store.saves

	if err := svc.ImportBlob(ctx, []byte("null")); !errors.Is(err, domain.ErrMalformedBoard) {
		t.Fatalf("expected ErrMalformedBoard, got %v", err)
	}
	if store.saves != saves {
		t.Fatalf("expected no save after rejected import, got %d saves", store.saves-saves)
	}
	view, _ := svc.Board(ctx)
	if view.TotalTasks != 1 {
		t.Fatalf("expected board unchanged, got %d tasks", view.TotalTasks)
	}
}

func TestLoadIgnoresUnlistedTasks(t *testing.T) {
	store := newFakeStore()
	store.blobs[DefaultStorageKey] = []byte(`{"tasks":{"task-0":{"text":"a","column":"todo"},"task-9":{"text":"stray","column":"gone"}},"columns":[{"id":"todo","name":"To Do","tasks":["task-0"]}]}`)
	svc := newTestService(t, store, ServiceConfig{})
	view, _ := svc.Board(context.Background())
	if view.TotalTasks != 1 {
		t.Fatalf("expected 1 task, got %d", view.TotalTasks)
	}
	next, err := svc.AddTask(context.Background(), "b")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if next.ID != "task-1" {
		t.Fatalf("expected task-1, got %q", next.ID)
	}
}

func TestDropPolicies(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		policy    domain.DropTargetPolicy
		wantMoved bool
	}{
		{policy: domain.DropTargetAncestor, wantMoved: true},
		{policy: domain.DropTargetStrict, wantMoved: false},
	}
	for _, tc := range cases {
		store := newFakeStore()
		svc := newTestService(t, store, ServiceConfig{Board: domain.BoardOptions{DropTarget: tc.policy}})
		a, _ := svc.AddTask(ctx, "a")
		b, _ := svc.AddTask(ctx, "b")
		if err := svc.MoveTask(ctx, b.ID, "done"); err != nil {
			t.Fatalf("MoveTask() error = %v", err)
		}
		if err := svc.StartDrag(ctx, a.ID); err != nil {
			t.Fatalf("StartDrag() error = %v", err)
		}
		saves := store.saves
		moved, err := svc.Drop(ctx, b.ID)
		if err != nil {
			t.Fatalf("Drop() error = %v", err)
		}
		if moved != tc.wantMoved {
			t.Fatalf("%s: moved = %t, want %t", tc.policy, moved, tc.wantMoved)
		}
		if store.saves != saves+1 {
			t.Fatalf("%s: expected drop to save", tc.policy)
		}
		view, _ := svc.Board(ctx)
		task, _ := view.Task(a.ID)
		wantColumn := "todo"
		if tc.wantMoved {
			wantColumn = "done"
		}
		if task.ColumnID != wantColumn {
			t.Fatalf("%s: expected task in %s, got %s", tc.policy, wantColumn, task.ColumnID)
		}
	}
}

func TestDragControllerStates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	task, _ := svc.AddTask(ctx, "a")

	moved, err := svc.Drop(ctx, "done")
	if err != nil || moved {
		t.Fatalf("expected idle drop to move nothing, got moved=%t err=%v", moved, err)
	}
	if err := svc.StartDrag(ctx, "task-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.StartDrag(ctx, task.ID); err != nil {
		t.Fatalf("StartDrag() error = %v", err)
	}
	if err := svc.StartDrag(ctx, task.ID); !errors.Is(err, domain.ErrDragInProgress) {
		t.Fatalf("expected ErrDragInProgress, got %v", err)
	}
	view, _ := svc.Board(ctx)
	if tv, _ := view.Task(task.ID); tv.Hidden {
		t.Fatal("expected task visible before hide tick")
	}
	if hidden, _ := svc.HideDragged(ctx); !hidden {
		t.Fatal("expected HideDragged() to hide")
	}
	view, _ = svc.Board(ctx)
	if tv, _ := view.Task(task.ID); !tv.Hidden {
		t.Fatal("expected task hidden after hide tick")
	}

	if ok, _ := svc.DragEnter(ctx, task.ID); ok {
		t.Fatal("expected DragEnter on a task to be ignored")
	}
	if ok, _ := svc.DragEnter(ctx, "done"); !ok {
		t.Fatal("expected DragEnter on a column to highlight")
	}
	if snap := svc.DragState(); len(snap.Highlighted) != 1 || snap.Highlighted[0] != "done" {
		t.Fatalf("unexpected highlight %#v", snap.Highlighted)
	}
	if ok, _ := svc.DragLeave(ctx, "done"); !ok {
		t.Fatal("expected DragLeave on a column")
	}
	if ok, _ := svc.DragOver(ctx, "nowhere"); ok {
		t.Fatal("expected DragOver on unknown target to be rejected")
	}
	if ok, _ := svc.DragOver(ctx, "inProgress"); !ok {
		t.Fatal("expected DragOver on a column to be allowed")
	}
	_, _ = svc.DragEnter(ctx, "inProgress")

	if err := svc.EndDrag(ctx); err != nil {
		t.Fatalf("EndDrag() error = %v", err)
	}
	snap := svc.DragState()
	if snap.Phase != domain.DragPhaseIdle || snap.Hidden || len(snap.Highlighted) != 0 {
		t.Fatalf("expected idle state, got %#v", snap)
	}
	view, _ = svc.Board(ctx)
	if tv, _ := view.Task(task.ID); tv.Hidden || tv.ColumnID != "todo" {
		t.Fatalf("expected visible task in todo, got %#v", tv)
	}
}

func TestSaveErrorKeepsMutation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{})
	store.saveErr = errors.New("disk full")
	if _, err := svc.AddTask(ctx, "a"); err == nil {
		t.Fatal("expected save error")
	}
	view, _ := svc.Board(ctx)
	if view.TotalTasks != 1 {
		t.Fatalf("expected mutation kept, got %d tasks", view.TotalTasks)
	}
	if len(store.events) != 0 {
		t.Fatalf("expected no ledger entry after failed save, got %d", len(store.events))
	}
}

func TestChangeLedgerRecordsActorAndSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, ServiceConfig{SessionID: "sess-1"})
	ctx := WithMutationActor(context.Background(), MutationActor{ActorID: " alice ", Surface: "HTTP"})
	task, _ := svc.AddTask(ctx, "a")
	if err := svc.MoveTask(ctx, task.ID, "done"); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}

	events, err := svc.ListChanges(ctx, 10)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	move := events[0]
	if move.Operation != domain.ChangeOperationMove || move.TargetID != task.ID {
		t.Fatalf("unexpected newest event %#v", move)
	}
	if move.Metadata["from_column_id"] != "todo" || move.Metadata["to_column_id"] != "done" {
		t.Fatalf("unexpected move metadata %#v", move.Metadata)
	}
	if move.SessionID != "sess-1" || move.Metadata["actor_id"] != "alice" || move.Metadata["surface"] != "http" {
		t.Fatalf("unexpected attribution %#v", move)
	}
	if !move.OccurredAt.Equal(fixedClock()) {
		t.Fatalf("unexpected occurred_at %v", move.OccurredAt)
	}
}

func TestListChangesWithoutRecorder(t *testing.T) {
	svc := newTestService(t, &plainStore{blobs: map[string][]byte{}}, ServiceConfig{})
	if _, err := svc.AddTask(context.Background(), "a"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	events, err := svc.ListChanges(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestExportImportBlob(t *testing.T) {
	ctx := context.Background()
	source := newTestService(t, newFakeStore(), ServiceConfig{})
	_, _ = source.AddTask(ctx, "a")
	_, _ = source.AddTask(ctx, "b")
	_, _ = source.AddColumn(ctx, "Later")
	data, err := source.ExportBlob(ctx)
	if err != nil {
		t.Fatalf("ExportBlob() error = %v", err)
	}

	store := newFakeStore()
	target := newTestService(t, store, ServiceConfig{})
	if err := target.ImportBlob(ctx, data); err != nil {
		t.Fatalf("ImportBlob() error = %v", err)
	}
	view, _ := target.Board(ctx)
	if view.TotalTasks != 2 || len(view.Columns) != 4 {
		t.Fatalf("unexpected imported board %#v", view)
	}
	column, err := target.AddColumn(ctx, "Next")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if column.ID != "column-1" {
		t.Fatalf("expected column-1 after import, got %q", column.ID)
	}
	if store.events[0].Operation != domain.ChangeOperationImport {
		t.Fatalf("expected import event, got %#v", store.events[0])
	}

	if err := target.ImportBlob(ctx, []byte(`not json`)); !errors.Is(err, domain.ErrMalformedBoard) {
		t.Fatalf("expected ErrMalformedBoard, got %v", err)
	}
	view, _ = target.Board(ctx)
	if view.TotalTasks != 2 {
		t.Fatalf("expected board unchanged after failed import, got %d tasks", view.TotalTasks)
	}
}

func TestCustomSeedColumnsAndTaskColumn(t *testing.T) {
	cfg := ServiceConfig{
		StorageKey:     "custom",
		Board:          domain.BoardOptions{TaskColumnID: "backlog"},
		DefaultColumns: []domain.SeedColumn{{ID: "backlog", Name: "Backlog"}, {ID: " ", Name: "skip"}, {ID: "backlog", Name: "dup"}, {ID: "ship", Name: "Ship"}},
	}
	store := newFakeStore()
	svc := newTestService(t, store, cfg)
	view, _ := svc.Board(context.Background())
	if len(view.Columns) != 2 || view.Columns[0].ID != "backlog" || view.Columns[1].ID != "ship" {
		t.Fatalf("unexpected seeded columns %#v", view.Columns)
	}
	if _, err := svc.AddTask(context.Background(), "a"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, ok := store.blobs["custom"]; !ok {
		t.Fatal("expected blob under custom key")
	}
}
