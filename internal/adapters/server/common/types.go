// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed or rejected input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports requests that clash with current board state.
var ErrConflict = errors.New("conflict")

// TaskPayload is one task as seen by transport callers.
type TaskPayload struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ColumnID string `json:"column_id"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// ProgressPayload is one column's share of all tasks.
type ProgressPayload struct {
	ColumnID string  `json:"column_id"`
	Name     string  `json:"name"`
	Tasks    int     `json:"tasks"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// ColumnPayload is one column with its tasks and progress.
type ColumnPayload struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Tasks       []TaskPayload   `json:"tasks"`
	Progress    ProgressPayload `json:"progress"`
	Highlighted bool            `json:"highlighted,omitempty"`
}

// DragPayload reports the drag controller state.
type DragPayload struct {
	Phase       string   `json:"phase"`
	TaskID      string   `json:"task_id,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"`
	Highlighted []string `json:"highlighted,omitempty"`
}

// BoardPayload is the full board snapshot returned to HTTP and MCP callers.
type BoardPayload struct {
	Columns    []ColumnPayload `json:"columns"`
	TotalTasks int             `json:"total_tasks"`
	Drag       DragPayload     `json:"drag"`
	StateHash  string          `json:"state_hash"`
}

// ChangePayload is one activity ledger entry.
type ChangePayload struct {
	ID         int64             `json:"id"`
	SessionID  string            `json:"session_id"`
	Operation  string            `json:"operation"`
	TargetKind string            `json:"target_kind"`
	TargetID   string            `json:"target_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// AddTaskRequest captures input for new tasks.
type AddTaskRequest struct {
	Text string `json:"text"`
}

// EditTaskRequest captures input for task edits. A nil Text cancels the edit.
type EditTaskRequest struct {
	TaskID string  `json:"-"`
	Text   *string `json:"text,omitempty"`
}

// MoveTaskRequest captures input for re-parenting one task.
type MoveTaskRequest struct {
	TaskID   string `json:"-"`
	ColumnID string `json:"column_id"`
}

// AddColumnRequest captures input for new columns.
type AddColumnRequest struct {
	Name string `json:"name"`
}

// BoardService is the board surface shared by transport adapters.
type BoardService interface {
	GetBoard(context.Context) (BoardPayload, error)
	GetProgress(context.Context) ([]ProgressPayload, error)
	GetBlob(context.Context) (json.RawMessage, error)
	ListChanges(context.Context, int) ([]ChangePayload, error)
	AddTask(context.Context, AddTaskRequest) (TaskPayload, error)
	EditTask(context.Context, EditTaskRequest) (TaskPayload, error)
	DeleteTask(context.Context, string) error
	MoveTask(context.Context, MoveTaskRequest) (TaskPayload, error)
	AddColumn(context.Context, AddColumnRequest) (ColumnPayload, error)
	DeleteColumn(context.Context, string) error
}
