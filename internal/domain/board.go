package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DropTargetPolicy selects how a drop target id resolves to a column.
type DropTargetPolicy string

// DropTargetPolicy values.
const (
	// DropTargetAncestor resolves a task target to the column that owns it.
	DropTargetAncestor DropTargetPolicy = "ancestor"
	// DropTargetStrict accepts only column ids.
	DropTargetStrict DropTargetPolicy = "strict"
)

// ParseDropTargetPolicy validates a policy name. Empty means the default.
func ParseDropTargetPolicy(raw string) (DropTargetPolicy, error) {
	switch DropTargetPolicy(strings.TrimSpace(strings.ToLower(raw))) {
	case "", DropTargetAncestor:
		return DropTargetAncestor, nil
	case DropTargetStrict:
		return DropTargetStrict, nil
	default:
		return "", fmt.Errorf("unknown drop target policy %q", raw)
	}
}

// BoardOptions configures board behavior.
type BoardOptions struct {
	TaskColumnID  string
	ColumnCounter ColumnCounterPolicy
	DropTarget    DropTargetPolicy
}

// Board is the aggregate root: an ordered list of columns, each owning an ordered
// list of tasks.
type Board struct {
	opts    BoardOptions
	columns []Column
	ids     *IDAllocator
}

// NewBoard constructs an empty board.
func NewBoard(opts BoardOptions) *Board {
	opts.TaskColumnID = strings.TrimSpace(opts.TaskColumnID)
	if opts.TaskColumnID == "" {
		opts.TaskColumnID = SeedColumnTodo
	}
	if opts.ColumnCounter == "" {
		opts.ColumnCounter = ColumnCounterMaxSuffix
	}
	if opts.DropTarget == "" {
		opts.DropTarget = DropTargetAncestor
	}
	return &Board{
		opts:    opts,
		columns: []Column{},
		ids:     NewIDAllocator(opts.ColumnCounter),
	}
}

// Options returns the normalized board options.
func (b *Board) Options() BoardOptions {
	return b.opts
}

// Columns returns a deep copy of the columns in display order.
func (b *Board) Columns() []Column {
	out := make([]Column, 0, len(b.columns))
	for _, column := range b.columns {
		out = append(out, column.clone())
	}
	return out
}

// Column returns one column by id.
func (b *Board) Column(columnID string) (Column, bool) {
	idx := b.columnIndex(columnID)
	if idx < 0 {
		return Column{}, false
	}
	return b.columns[idx].clone(), true
}

// IsColumn reports whether the id names an existing column.
func (b *Board) IsColumn(id string) bool {
	return b.columnIndex(id) >= 0
}

// FindTask returns a task and the id of the column that owns it.
func (b *Board) FindTask(taskID string) (Task, string, bool) {
	ci, ti := b.taskIndex(taskID)
	if ci < 0 {
		return Task{}, "", false
	}
	return b.columns[ci].Tasks[ti], b.columns[ci].ID, true
}

// TaskCount returns the total number of tasks on the board.
func (b *Board) TaskCount() int {
	total := 0
	for _, column := range b.columns {
		total += len(column.Tasks)
	}
	return total
}

// Counters reports the next task and column numbers.
func (b *Board) Counters() (task, column int) {
	return b.ids.Counters()
}

// AddColumnWithDefault appends a column with an explicit id.
func (b *Board) AddColumnWithDefault(name, id string) (Column, error) {
	column, err := NewColumn(id, name)
	if err != nil {
		return Column{}, err
	}
	if b.IsColumn(column.ID) {
		return Column{}, ErrDuplicateColumnID
	}
	b.columns = append(b.columns, column)
	b.ids.NoteSeedColumn()
	return column.clone(), nil
}

// AddColumn appends an empty column with a minted id.
func (b *Board) AddColumn(name string) (Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Column{}, ErrEmptyColumnName
	}
	id := b.ids.NextColumnID(b.IsColumn)
	column, err := NewColumn(id, name)
	if err != nil {
		return Column{}, err
	}
	b.columns = append(b.columns, column)
	return column.clone(), nil
}

// DeleteColumn removes a column together with every task it holds.
func (b *Board) DeleteColumn(columnID string) (Column, error) {
	idx := b.columnIndex(columnID)
	if idx < 0 {
		return Column{}, ErrColumnNotFound
	}
	removed := b.columns[idx]
	b.columns = slices.Delete(b.columns, idx, idx+1)
	return removed, nil
}

// AddTask appends a new task to the configured task column.
func (b *Board) AddTask(text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyTaskText
	}
	idx := b.columnIndex(b.opts.TaskColumnID)
	if idx < 0 {
		return Task{}, ErrTaskColumnMissing
	}
	task, err := NewTask(b.ids.NextTaskID(), text)
	if err != nil {
		return Task{}, err
	}
	b.columns[idx].Tasks = append(b.columns[idx].Tasks, task)
	return task, nil
}

// EditTask applies user input to a task. It reports whether the text changed.
func (b *Board) EditTask(taskID string, input *string) (Task, bool, error) {
	ci, ti := b.taskIndex(taskID)
	if ci < 0 {
		return Task{}, false, ErrTaskNotFound
	}
	task := &b.columns[ci].Tasks[ti]
	before := task.Text
	if !task.Edit(input) {
		return *task, false, nil
	}
	return *task, task.Text != before, nil
}

// DeleteTask removes a task and returns it with its former column id.
func (b *Board) DeleteTask(taskID string) (Task, string, error) {
	ci, ti := b.taskIndex(taskID)
	if ci < 0 {
		return Task{}, "", ErrTaskNotFound
	}
	task := b.columns[ci].Tasks[ti]
	b.columns[ci].Tasks = slices.Delete(b.columns[ci].Tasks, ti, ti+1)
	return task, b.columns[ci].ID, nil
}

// MoveTask re-parents a task as the last child of the target column. It returns
// the id of the column the task left.
func (b *Board) MoveTask(taskID, columnID string) (string, error) {
	ci, ti := b.taskIndex(taskID)
	if ci < 0 {
		return "", ErrTaskNotFound
	}
	target := b.columnIndex(columnID)
	if target < 0 {
		return "", ErrColumnNotFound
	}
	from := b.columns[ci].ID
	task := b.columns[ci].Tasks[ti]
	b.columns[ci].Tasks = slices.Delete(b.columns[ci].Tasks, ti, ti+1)
	b.columns[target].Tasks = append(b.columns[target].Tasks, task)
	return from, nil
}

// ResolveDropTarget maps a drop target id to a column id under the board's policy.
func (b *Board) ResolveDropTarget(targetID string) (string, bool) {
	if b.IsColumn(targetID) {
		return targetID, true
	}
	if b.opts.DropTarget == DropTargetStrict {
		return "", false
	}
	_, columnID, ok := b.FindTask(targetID)
	return columnID, ok
}

// RestoreColumns replaces the board contents and recomputes the id counters.
func (b *Board) RestoreColumns(columns []Column) error {
	seenColumns := make(map[string]struct{}, len(columns))
	seenTasks := map[string]struct{}{}
	restored := make([]Column, 0, len(columns))
	for _, column := range columns {
		if strings.TrimSpace(column.ID) == "" {
			return fmt.Errorf("%w: column with empty id", ErrMalformedBoard)
		}
		if _, dup := seenColumns[column.ID]; dup {
			return fmt.Errorf("%w: %s: %q", ErrMalformedBoard, ErrDuplicateColumnID, column.ID)
		}
		seenColumns[column.ID] = struct{}{}
		for _, task := range column.Tasks {
			if strings.TrimSpace(task.ID) == "" {
				return fmt.Errorf("%w: task with empty id in column %q", ErrMalformedBoard, column.ID)
			}
			if _, dup := seenTasks[task.ID]; dup {
				return fmt.Errorf("%w: task %q listed twice", ErrMalformedBoard, task.ID)
			}
			seenTasks[task.ID] = struct{}{}
		}
		restored = append(restored, column.clone())
	}
	b.columns = restored
	b.ids.Recompute(b.columns)
	return nil
}

func (b *Board) columnIndex(columnID string) int {
	return slices.IndexFunc(b.columns, func(c Column) bool { return c.ID == columnID })
}

func (b *Board) taskIndex(taskID string) (int, int) {
	for ci, column := range b.columns {
		if ti := column.indexOfTask(taskID); ti >= 0 {
			return ci, ti
		}
	}
	return -1, -1
}
