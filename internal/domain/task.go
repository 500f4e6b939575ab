package domain

import "strings"

// TaskIDPrefix prefixes every minted task id.
const TaskIDPrefix = "task-"

// Task represents one work item. The owning column is derived from board position.
type Task struct {
	ID   string
	Text string
}

// NewTask validates and constructs a task.
func NewTask(id, text string) (Task, error) {
	id = strings.TrimSpace(id)
	text = strings.TrimSpace(text)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	if text == "" {
		return Task{}, ErrEmptyTaskText
	}
	return Task{ID: id, Text: text}, nil
}

// Edit replaces the task text with trimmed input. A nil or blank input leaves the
// text unchanged and reports false.
func (t *Task) Edit(input *string) bool {
	if input == nil {
		return false
	}
	text := strings.TrimSpace(*input)
	if text == "" {
		return false
	}
	t.Text = text
	return true
}
