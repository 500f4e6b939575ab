package domain

import (
	"slices"
	"strings"
)

// ColumnIDPrefix prefixes every counter-minted column id.
const ColumnIDPrefix = "column-"

// Seed column ids created on first run.
const (
	SeedColumnTodo       = "todo"
	SeedColumnInProgress = "inProgress"
	SeedColumnDone       = "done"
)

// SeedColumn describes one default column.
type SeedColumn struct {
	ID   string
	Name string
}

// DefaultSeedColumns returns the first-run columns in display order.
func DefaultSeedColumns() []SeedColumn {
	return []SeedColumn{
		{ID: SeedColumnTodo, Name: "To Do"},
		{ID: SeedColumnInProgress, Name: "In Progress"},
		{ID: SeedColumnDone, Name: "Done"},
	}
}

// Column represents a named, ordered container of tasks.
type Column struct {
	ID    string
	Name  string
	Tasks []Task
}

// NewColumn constructs an empty column.
func NewColumn(id, name string) (Column, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrEmptyColumnName
	}
	return Column{ID: id, Name: name, Tasks: []Task{}}, nil
}

// TaskIDs returns the ordered task ids of the column.
func (c Column) TaskIDs() []string {
	out := make([]string, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		out = append(out, task.ID)
	}
	return out
}

// clone deep-copies the column.
func (c Column) clone() Column {
	c.Tasks = slices.Clone(c.Tasks)
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	return c
}

// indexOfTask returns the position of one task id or -1.
func (c Column) indexOfTask(taskID string) int {
	return slices.IndexFunc(c.Tasks, func(t Task) bool { return t.ID == taskID })
}
