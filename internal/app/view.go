package app

import "github.com/hylla/tavla/internal/domain"

// BoardView is a read-only projection of the board for rendering surfaces.
type BoardView struct {
	Columns    []ColumnView
	TotalTasks int
	Drag       domain.DragSnapshot
}

// ColumnView is one rendered column with its progress.
type ColumnView struct {
	ID          string
	Name        string
	Tasks       []TaskView
	Progress    domain.ColumnProgress
	Highlighted bool
}

// TaskView is one rendered task.
type TaskView struct {
	ID       string
	Text     string
	ColumnID string
	Hidden   bool
}

// Column returns one column view by id.
func (v BoardView) Column(columnID string) (ColumnView, bool) {
	for _, column := range v.Columns {
		if column.ID == columnID {
			return column, true
		}
	}
	return ColumnView{}, false
}

// Task returns one task view by id.
func (v BoardView) Task(taskID string) (TaskView, bool) {
	for _, column := range v.Columns {
		for _, task := range column.Tasks {
			if task.ID == taskID {
				return task, true
			}
		}
	}
	return TaskView{}, false
}

func buildBoardView(columns []domain.Column, progress []domain.ColumnProgress, drag domain.DragSnapshot) BoardView {
	byColumn := make(map[string]domain.ColumnProgress, len(progress))
	for _, p := range progress {
		byColumn[p.ColumnID] = p
	}
	highlighted := make(map[string]struct{}, len(drag.Highlighted))
	for _, id := range drag.Highlighted {
		highlighted[id] = struct{}{}
	}

	view := BoardView{Columns: make([]ColumnView, 0, len(columns)), Drag: drag}
	for _, column := range columns {
		cv := ColumnView{
			ID:       column.ID,
			Name:     column.Name,
			Tasks:    make([]TaskView, 0, len(column.Tasks)),
			Progress: byColumn[column.ID],
		}
		_, cv.Highlighted = highlighted[column.ID]
		for _, task := range column.Tasks {
			cv.Tasks = append(cv.Tasks, TaskView{
				ID:       task.ID,
				Text:     task.Text,
				ColumnID: column.ID,
				Hidden:   drag.Hidden && drag.TaskID == task.ID,
			})
		}
		view.TotalTasks += len(column.Tasks)
		view.Columns = append(view.Columns, cv)
	}
	return view
}
