package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// defaultChangeLimit bounds list_changes responses when callers omit a limit.
const defaultChangeLimit = 50

// maxChangeLimit caps list_changes responses.
const maxChangeLimit = 500

// AppServiceAdapter maps transport contracts onto app.Service board APIs.
type AppServiceAdapter struct {
	service *app.Service
}

var _ BoardService = (*AppServiceAdapter)(nil)

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// GetBoard returns the current board with a content hash.
func (a *AppServiceAdapter) GetBoard(ctx context.Context) (BoardPayload, error) {
	if err := a.ready(); err != nil {
		return BoardPayload{}, err
	}
	view, err := a.service.Board(ctx)
	if err != nil {
		return BoardPayload{}, mapAppError("get board", err)
	}
	blob, err := a.service.ExportBlob(ctx)
	if err != nil {
		return BoardPayload{}, mapAppError("get board", err)
	}
	out := mapBoardView(view)
	out.StateHash = computeStateHash(blob)
	return out, nil
}

// GetProgress returns per-column progress.
func (a *AppServiceAdapter) GetProgress(ctx context.Context) ([]ProgressPayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	progress, err := a.service.Progress(ctx)
	if err != nil {
		return nil, mapAppError("get progress", err)
	}
	out := make([]ProgressPayload, 0, len(progress))
	for _, p := range progress {
		out = append(out, mapProgress(p))
	}
	return out, nil
}

// GetBlob returns the persisted board document.
func (a *AppServiceAdapter) GetBlob(ctx context.Context) (json.RawMessage, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	blob, err := a.service.ExportBlob(ctx)
	if err != nil {
		return nil, mapAppError("get blob", err)
	}
	return json.RawMessage(blob), nil
}

// ListChanges returns recent activity, newest first.
func (a *AppServiceAdapter) ListChanges(ctx context.Context, limit int) ([]ChangePayload, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("list changes: limit must be >= 0: %w", ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultChangeLimit
	}
	if limit > maxChangeLimit {
		limit = maxChangeLimit
	}
	events, err := a.service.ListChanges(ctx, limit)
	if err != nil {
		return nil, mapAppError("list changes", err)
	}
	out := make([]ChangePayload, 0, len(events))
	for _, event := range events {
		out = append(out, ChangePayload{
			ID:         event.ID,
			SessionID:  event.SessionID,
			Operation:  string(event.Operation),
			TargetKind: string(event.TargetKind),
			TargetID:   event.TargetID,
			Metadata:   event.Metadata,
			OccurredAt: event.OccurredAt,
		})
	}
	return out, nil
}

// AddTask creates one task in the task column.
func (a *AppServiceAdapter) AddTask(ctx context.Context, in AddTaskRequest) (TaskPayload, error) {
	if err := a.ready(); err != nil {
		return TaskPayload{}, err
	}
	task, err := a.service.AddTask(ctx, in.Text)
	if err != nil {
		return TaskPayload{}, mapAppError("add task", err)
	}
	return a.taskPayload(ctx, task.ID, task.Text)
}

// EditTask applies one edit. A nil text leaves the task unchanged.
func (a *AppServiceAdapter) EditTask(ctx context.Context, in EditTaskRequest) (TaskPayload, error) {
	if err := a.ready(); err != nil {
		return TaskPayload{}, err
	}
	taskID, err := requireID("task_id", in.TaskID)
	if err != nil {
		return TaskPayload{}, err
	}
	task, err := a.service.EditTask(ctx, taskID, in.Text)
	if err != nil {
		return TaskPayload{}, mapAppError("edit task", err)
	}
	return a.taskPayload(ctx, task.ID, task.Text)
}

// DeleteTask removes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, taskID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	taskID, err := requireID("task_id", taskID)
	if err != nil {
		return err
	}
	return mapAppError("delete task", a.service.DeleteTask(ctx, taskID))
}

// MoveTask re-parents one task as the last child of a column.
func (a *AppServiceAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (TaskPayload, error) {
	if err := a.ready(); err != nil {
		return TaskPayload{}, err
	}
	taskID, err := requireID("task_id", in.TaskID)
	if err != nil {
		return TaskPayload{}, err
	}
	columnID, err := requireID("column_id", in.ColumnID)
	if err != nil {
		return TaskPayload{}, err
	}
	if err := a.service.MoveTask(ctx, taskID, columnID); err != nil {
		return TaskPayload{}, mapAppError("move task", err)
	}
	return a.taskPayload(ctx, taskID, "")
}

// AddColumn creates one empty column.
func (a *AppServiceAdapter) AddColumn(ctx context.Context, in AddColumnRequest) (ColumnPayload, error) {
	if err := a.ready(); err != nil {
		return ColumnPayload{}, err
	}
	column, err := a.service.AddColumn(ctx, in.Name)
	if err != nil {
		return ColumnPayload{}, mapAppError("add column", err)
	}
	view, err := a.service.Board(ctx)
	if err != nil {
		return ColumnPayload{}, mapAppError("add column", err)
	}
	cv, ok := view.Column(column.ID)
	if !ok {
		return ColumnPayload{ID: column.ID, Name: column.Name, Tasks: []TaskPayload{}}, nil
	}
	return mapColumnView(cv), nil
}

// DeleteColumn removes one column and its tasks.
func (a *AppServiceAdapter) DeleteColumn(ctx context.Context, columnID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	columnID, err := requireID("column_id", columnID)
	if err != nil {
		return err
	}
	return mapAppError("delete column", a.service.DeleteColumn(ctx, columnID))
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	return nil
}

// taskPayload re-reads one task so the payload carries its owning column.
func (a *AppServiceAdapter) taskPayload(ctx context.Context, taskID, fallbackText string) (TaskPayload, error) {
	view, err := a.service.Board(ctx)
	if err != nil {
		return TaskPayload{}, mapAppError("read task", err)
	}
	task, ok := view.Task(taskID)
	if !ok {
		return TaskPayload{ID: taskID, Text: fallbackText}, nil
	}
	return mapTaskView(task), nil
}

func requireID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%s is required: %w", field, ErrInvalidRequest)
	}
	return id, nil
}

// mapAppError maps app and domain failures onto transport error classes.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrDragInProgress),
		errors.Is(err, domain.ErrTaskColumnMissing),
		errors.Is(err, domain.ErrDuplicateColumnID):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, domain.ErrEmptyTaskText),
		errors.Is(err, domain.ErrEmptyColumnName),
		errors.Is(err, domain.ErrInvalidID):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.Is(err, domain.ErrMalformedBoard):
		// Stored data is corrupt; surface as an internal failure.
		return fmt.Errorf("%s: %w", operation, err)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

func mapBoardView(view app.BoardView) BoardPayload {
	out := BoardPayload{
		Columns:    make([]ColumnPayload, 0, len(view.Columns)),
		TotalTasks: view.TotalTasks,
		Drag: DragPayload{
			Phase:       string(view.Drag.Phase),
			TaskID:      view.Drag.TaskID,
			Hidden:      view.Drag.Hidden,
			Highlighted: view.Drag.Highlighted,
		},
	}
	for _, column := range view.Columns {
		out.Columns = append(out.Columns, mapColumnView(column))
	}
	return out
}

func mapColumnView(column app.ColumnView) ColumnPayload {
	out := ColumnPayload{
		ID:          column.ID,
		Name:        column.Name,
		Tasks:       make([]TaskPayload, 0, len(column.Tasks)),
		Progress:    mapProgress(column.Progress),
		Highlighted: column.Highlighted,
	}
	for _, task := range column.Tasks {
		out.Tasks = append(out.Tasks, mapTaskView(task))
	}
	return out
}

func mapTaskView(task app.TaskView) TaskPayload {
	return TaskPayload{
		ID:       task.ID,
		Text:     task.Text,
		ColumnID: task.ColumnID,
		Hidden:   task.Hidden,
	}
}

func mapProgress(p domain.ColumnProgress) ProgressPayload {
	return ProgressPayload{
		ColumnID: p.ColumnID,
		Name:     p.Name,
		Tasks:    p.Tasks,
		Total:    p.Total,
		Percent:  p.Percent,
	}
}

// computeStateHash fingerprints the persisted document so callers can detect changes.
func computeStateHash(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
