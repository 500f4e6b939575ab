package domain

import (
	"errors"
	"math"
	"testing"
)

func seededBoard(t *testing.T, opts BoardOptions) *Board {
	t.Helper()
	b := NewBoard(opts)
	for _, seed := range DefaultSeedColumns() {
		if _, err := b.AddColumnWithDefault(seed.Name, seed.ID); err != nil {
			t.Fatalf("AddColumnWithDefault() error = %v", err)
		}
	}
	return b
}

func TestNewTaskValidation(t *testing.T) {
	if _, err := NewTask("", "text"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTask("task-0", "   "); err != ErrEmptyTaskText {
		t.Fatalf("expected ErrEmptyTaskText, got %v", err)
	}
	task, err := NewTask(" task-0 ", "  Buy milk ")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "task-0" || task.Text != "Buy milk" {
		t.Fatalf("unexpected task %#v", task)
	}
}

func TestNewColumnValidation(t *testing.T) {
	if _, err := NewColumn("", "ok"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewColumn("c", "  "); err != ErrEmptyColumnName {
		t.Fatalf("expected ErrEmptyColumnName, got %v", err)
	}
}

func TestAddTaskAppendsToTodo(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	task, err := b.AddTask("  Buy milk  ")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.ID != "task-0" || task.Text != "Buy milk" {
		t.Fatalf("unexpected task %#v", task)
	}
	second, err := b.AddTask("Walk dog")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if second.ID != "task-1" {
		t.Fatalf("expected task-1, got %q", second.ID)
	}
	todo, ok := b.Column(SeedColumnTodo)
	if !ok {
		t.Fatal("expected todo column")
	}
	if got := todo.TaskIDs(); len(got) != 2 || got[0] != "task-0" || got[1] != "task-1" {
		t.Fatalf("unexpected todo tasks %#v", got)
	}
}

func TestAddTaskRejectsEmptyTextWithoutConsumingID(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	if _, err := b.AddTask("   "); err != ErrEmptyTaskText {
		t.Fatalf("expected ErrEmptyTaskText, got %v", err)
	}
	if b.TaskCount() != 0 {
		t.Fatalf("expected no tasks, got %d", b.TaskCount())
	}
	task, err := b.AddTask("x")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.ID != "task-0" {
		t.Fatalf("expected task-0, got %q", task.ID)
	}
}

func TestAddTaskMissingTaskColumn(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	if _, err := b.DeleteColumn(SeedColumnTodo); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if _, err := b.AddTask("orphan"); err != ErrTaskColumnMissing {
		t.Fatalf("expected ErrTaskColumnMissing, got %v", err)
	}
	if task, _ := b.Counters(); task != 0 {
		t.Fatalf("expected task counter untouched, got %d", task)
	}
}

func TestEditTask(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	task, _ := b.AddTask("draft")

	blank := "   "
	got, changed, err := b.EditTask(task.ID, &blank)
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if changed || got.Text != "draft" {
		t.Fatalf("expected blank edit to be ignored, got %#v changed=%t", got, changed)
	}

	got, changed, err = b.EditTask(task.ID, nil)
	if err != nil || changed || got.Text != "draft" {
		t.Fatalf("expected cancel to be ignored, got %#v changed=%t err=%v", got, changed, err)
	}

	final := "  final  "
	got, changed, err = b.EditTask(task.ID, &final)
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if !changed || got.Text != "final" {
		t.Fatalf("expected edited text, got %#v changed=%t", got, changed)
	}

	if _, _, err := b.EditTask("task-99", &final); err != ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteColumnRemovesExactlyItsTasks(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	a, _ := b.AddTask("a")
	c, _ := b.AddTask("c")
	if _, err := b.MoveTask(c.ID, SeedColumnDone); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	removed, err := b.DeleteColumn(SeedColumnTodo)
	if err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if len(removed.Tasks) != 1 || removed.Tasks[0].ID != a.ID {
		t.Fatalf("unexpected removed tasks %#v", removed.Tasks)
	}
	if _, _, ok := b.FindTask(a.ID); ok {
		t.Fatal("expected task a to be gone")
	}
	if _, col, ok := b.FindTask(c.ID); !ok || col != SeedColumnDone {
		t.Fatalf("expected task c in done, got %q ok=%t", col, ok)
	}
	if b.TaskCount() != 1 {
		t.Fatalf("expected 1 task, got %d", b.TaskCount())
	}
	if _, err := b.DeleteColumn("missing"); err != ErrColumnNotFound {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestMoveTaskAppendsToTarget(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	first, _ := b.AddTask("first")
	second, _ := b.AddTask("second")
	if _, err := b.MoveTask(second.ID, SeedColumnDone); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	from, err := b.MoveTask(first.ID, SeedColumnDone)
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if from != SeedColumnTodo {
		t.Fatalf("expected move from todo, got %q", from)
	}
	done, _ := b.Column(SeedColumnDone)
	if got := done.TaskIDs(); len(got) != 2 || got[0] != second.ID || got[1] != first.ID {
		t.Fatalf("unexpected done order %#v", got)
	}
	if _, err := b.MoveTask(first.ID, "nope"); err != ErrColumnNotFound {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if _, err := b.MoveTask("task-42", SeedColumnDone); err != ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAddColumnCounterPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy ColumnCounterPolicy
		wantID string
	}{
		{name: "max suffix ignores seeds", policy: ColumnCounterMaxSuffix, wantID: "column-0"},
		{name: "column count advances on seeds", policy: ColumnCounterColumnCount, wantID: "column-3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := seededBoard(t, BoardOptions{ColumnCounter: tc.policy})
			column, err := b.AddColumn("  Review ")
			if err != nil {
				t.Fatalf("AddColumn() error = %v", err)
			}
			if column.ID != tc.wantID || column.Name != "Review" {
				t.Fatalf("unexpected column %#v", column)
			}
			cols := b.Columns()
			if cols[len(cols)-1].ID != tc.wantID {
				t.Fatalf("expected new column last, got %#v", cols)
			}
		})
	}
}

func TestAddColumnRejectsEmptyName(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	if _, err := b.AddColumn(" \t"); err != ErrEmptyColumnName {
		t.Fatalf("expected ErrEmptyColumnName, got %v", err)
	}
	if len(b.Columns()) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(b.Columns()))
	}
}

func TestAddColumnSkipsTakenIDs(t *testing.T) {
	b := NewBoard(BoardOptions{ColumnCounter: ColumnCounterColumnCount})
	err := b.RestoreColumns([]Column{
		{ID: "column-1", Name: "A"},
		{ID: "column-2", Name: "B"},
	})
	if err != nil {
		t.Fatalf("RestoreColumns() error = %v", err)
	}
	column, err := b.AddColumn("C")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if column.ID != "column-3" {
		t.Fatalf("expected column-3, got %q", column.ID)
	}
}

func TestAddColumnWithDefaultRejectsDuplicate(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	if _, err := b.AddColumnWithDefault("Again", SeedColumnTodo); err != ErrDuplicateColumnID {
		t.Fatalf("expected ErrDuplicateColumnID, got %v", err)
	}
}

func TestRestoreColumnsRecomputesCounters(t *testing.T) {
	columns := []Column{
		{ID: "todo", Name: "To Do", Tasks: []Task{{ID: "task-3", Text: "a"}, {ID: "task-x", Text: "b"}}},
		{ID: "column-7", Name: "Later", Tasks: []Task{{ID: "task-10", Text: "c"}}},
	}
	cases := []struct {
		policy     ColumnCounterPolicy
		wantColumn int
	}{
		{policy: ColumnCounterMaxSuffix, wantColumn: 8},
		{policy: ColumnCounterColumnCount, wantColumn: 2},
	}
	for _, tc := range cases {
		b := NewBoard(BoardOptions{ColumnCounter: tc.policy})
		if err := b.RestoreColumns(columns); err != nil {
			t.Fatalf("RestoreColumns() error = %v", err)
		}
		task, column := b.Counters()
		if task != 11 {
			t.Fatalf("%s: expected task counter 11, got %d", tc.policy, task)
		}
		if column != tc.wantColumn {
			t.Fatalf("%s: expected column counter %d, got %d", tc.policy, tc.wantColumn, column)
		}
	}
}

func TestRestoreColumnsRejectsMalformed(t *testing.T) {
	cases := map[string][]Column{
		"duplicate column": {{ID: "a", Name: "A"}, {ID: "a", Name: "B"}},
		"task listed twice": {
			{ID: "a", Name: "A", Tasks: []Task{{ID: "task-0", Text: "x"}}},
			{ID: "b", Name: "B", Tasks: []Task{{ID: "task-0", Text: "x"}}},
		},
		"empty column id": {{ID: " ", Name: "A"}},
	}
	for name, columns := range cases {
		b := NewBoard(BoardOptions{})
		if err := b.RestoreColumns(columns); !errors.Is(err, ErrMalformedBoard) {
			t.Fatalf("%s: expected ErrMalformedBoard, got %v", name, err)
		}
	}
}

func TestResolveDropTarget(t *testing.T) {
	for _, policy := range []DropTargetPolicy{DropTargetAncestor, DropTargetStrict} {
		b := seededBoard(t, BoardOptions{DropTarget: policy})
		task, _ := b.AddTask("x")

		if got, ok := b.ResolveDropTarget(SeedColumnDone); !ok || got != SeedColumnDone {
			t.Fatalf("%s: expected column target to resolve, got %q ok=%t", policy, got, ok)
		}
		got, ok := b.ResolveDropTarget(task.ID)
		switch policy {
		case DropTargetAncestor:
			if !ok || got != SeedColumnTodo {
				t.Fatalf("expected task target to resolve to todo, got %q ok=%t", got, ok)
			}
		case DropTargetStrict:
			if ok {
				t.Fatalf("expected strict policy to reject task target, got %q", got)
			}
		}
		if _, ok := b.ResolveDropTarget("nowhere"); ok {
			t.Fatalf("%s: expected unknown target to fail", policy)
		}
	}
}

func TestProgressPercentages(t *testing.T) {
	b := seededBoard(t, BoardOptions{})
	for _, p := range b.Progress() {
		if p.Percent != 0 || p.Total != 0 {
			t.Fatalf("expected empty progress, got %#v", p)
		}
	}

	for _, text := range []string{"a", "b", "c"} {
		if _, err := b.AddTask(text); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	if _, err := b.MoveTask("task-2", SeedColumnDone); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	progress := b.Progress()
	want := map[string]float64{SeedColumnTodo: 200.0 / 3, SeedColumnInProgress: 0, SeedColumnDone: 100.0 / 3}
	sum := 0
	for _, p := range progress {
		sum += p.Tasks
		if math.Abs(p.Percent-want[p.ColumnID]) > 1e-9 {
			t.Fatalf("unexpected percent for %s: %v", p.ColumnID, p.Percent)
		}
	}
	if sum != b.TaskCount() {
		t.Fatalf("expected counts to sum to %d, got %d", b.TaskCount(), sum)
	}

	again := b.Progress()
	for i := range progress {
		if progress[i] != again[i] {
			t.Fatalf("expected idempotent progress, got %#v vs %#v", progress[i], again[i])
		}
	}
}

func TestDragStateTransitions(t *testing.T) {
	var d DragState
	if d.Phase() != DragPhaseIdle {
		t.Fatalf("expected idle, got %q", d.Phase())
	}
	if d.Hide() {
		t.Fatal("expected hide to fail while idle")
	}
	if err := d.Start("task-0"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := d.Start("task-1"); err != ErrDragInProgress {
		t.Fatalf("expected ErrDragInProgress, got %v", err)
	}
	if snap := d.Snapshot(); snap.Hidden {
		t.Fatal("expected task to stay visible until hide")
	}
	if !d.Hide() {
		t.Fatal("expected hide to succeed while dragging")
	}
	d.Highlight("done")
	d.Highlight("done")
	if snap := d.Snapshot(); len(snap.Highlighted) != 1 || !snap.Hidden {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	d.Unhighlight("done")
	if d.IsHighlighted("done") {
		t.Fatal("expected highlight cleared")
	}
	if id, ok := d.Payload(); !ok || id != "task-0" {
		t.Fatalf("unexpected payload %q ok=%t", id, ok)
	}
	d.Highlight("todo")
	d.End()
	snap := d.Snapshot()
	if snap.Phase != DragPhaseIdle || snap.Hidden || snap.TaskID != "" || len(snap.Highlighted) != 0 {
		t.Fatalf("expected reset state, got %#v", snap)
	}
}

func TestParsePolicies(t *testing.T) {
	if got, err := ParseColumnCounterPolicy(""); err != nil || got != ColumnCounterMaxSuffix {
		t.Fatalf("unexpected default counter policy %q err=%v", got, err)
	}
	if got, err := ParseColumnCounterPolicy("Column_Count"); err != nil || got != ColumnCounterColumnCount {
		t.Fatalf("unexpected counter policy %q err=%v", got, err)
	}
	if _, err := ParseColumnCounterPolicy("random"); err == nil {
		t.Fatal("expected error for unknown counter policy")
	}
	if got, err := ParseDropTargetPolicy("strict"); err != nil || got != DropTargetStrict {
		t.Fatalf("unexpected drop policy %q err=%v", got, err)
	}
	if _, err := ParseDropTargetPolicy("nearest"); err == nil {
		t.Fatal("expected error for unknown drop policy")
	}
}
