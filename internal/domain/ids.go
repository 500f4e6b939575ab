package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnCounterPolicy selects how the column counter is derived.
type ColumnCounterPolicy string

// ColumnCounterPolicy values.
const (
	// ColumnCounterMaxSuffix seeds the counter past the highest column-<n> id.
	ColumnCounterMaxSuffix ColumnCounterPolicy = "max_suffix"
	// ColumnCounterColumnCount seeds the counter with the number of columns and
	// advances it for every seed column.
	ColumnCounterColumnCount ColumnCounterPolicy = "column_count"
)

// ParseColumnCounterPolicy validates a policy name. Empty means the default.
func ParseColumnCounterPolicy(raw string) (ColumnCounterPolicy, error) {
	switch ColumnCounterPolicy(strings.TrimSpace(strings.ToLower(raw))) {
	case "", ColumnCounterMaxSuffix:
		return ColumnCounterMaxSuffix, nil
	case ColumnCounterColumnCount:
		return ColumnCounterColumnCount, nil
	default:
		return "", fmt.Errorf("unknown column counter policy %q", raw)
	}
}

// IDAllocator mints task and column ids. Counters only move forward.
type IDAllocator struct {
	policy     ColumnCounterPolicy
	nextTask   int
	nextColumn int
}

// NewIDAllocator constructs an allocator with zeroed counters.
func NewIDAllocator(policy ColumnCounterPolicy) *IDAllocator {
	if policy == "" {
		policy = ColumnCounterMaxSuffix
	}
	return &IDAllocator{policy: policy}
}

// NextTaskID returns task-<n> and advances the task counter.
func (a *IDAllocator) NextTaskID() string {
	id := TaskIDPrefix + strconv.Itoa(a.nextTask)
	a.nextTask++
	return id
}

// NextColumnID returns the next column-<n> id not reported as taken.
func (a *IDAllocator) NextColumnID(taken func(string) bool) string {
	for {
		id := ColumnIDPrefix + strconv.Itoa(a.nextColumn)
		a.nextColumn++
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// NoteSeedColumn records that a seed column was created.
func (a *IDAllocator) NoteSeedColumn() {
	if a.policy == ColumnCounterColumnCount {
		a.nextColumn++
	}
}

// Recompute derives both counters from loaded columns.
func (a *IDAllocator) Recompute(columns []Column) {
	a.nextTask = 0
	for _, column := range columns {
		for _, task := range column.Tasks {
			if n, ok := numericSuffix(task.ID, TaskIDPrefix); ok && n+1 > a.nextTask {
				a.nextTask = n + 1
			}
		}
	}

	switch a.policy {
	case ColumnCounterColumnCount:
		a.nextColumn = len(columns)
	default:
		a.nextColumn = 0
		for _, column := range columns {
			if n, ok := numericSuffix(column.ID, ColumnIDPrefix); ok && n+1 > a.nextColumn {
				a.nextColumn = n + 1
			}
		}
	}
}

// Counters reports the next task and column numbers.
func (a *IDAllocator) Counters() (task, column int) {
	return a.nextTask, a.nextColumn
}

// Policy returns the column counter policy.
func (a *IDAllocator) Policy() ColumnCounterPolicy {
	return a.policy
}

func numericSuffix(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
