package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid id")
	ErrEmptyTaskText     = errors.New("please enter a task")
	ErrEmptyColumnName   = errors.New("please enter a column name")
	ErrDuplicateColumnID = errors.New("duplicate column id")
	ErrTaskNotFound      = errors.New("task not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrTaskColumnMissing = errors.New("task column missing")
	ErrMalformedBoard    = errors.New("malformed board")
	ErrDragInProgress    = errors.New("drag already in progress")
)
