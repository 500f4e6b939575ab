package domain

import "time"

// ChangeOperation describes a persisted activity operation for a board element.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationUpdate ChangeOperation = "update"
	ChangeOperationMove   ChangeOperation = "move"
	ChangeOperationDelete ChangeOperation = "delete"
	ChangeOperationImport ChangeOperation = "import"
)

// ChangeTarget identifies what kind of board element an event touched.
type ChangeTarget string

// ChangeTarget values.
const (
	ChangeTargetTask   ChangeTarget = "task"
	ChangeTargetColumn ChangeTarget = "column"
	ChangeTargetBoard  ChangeTarget = "board"
)

// ChangeEvent represents a single activity-log entry for the board.
type ChangeEvent struct {
	ID         int64
	SessionID  string
	Operation  ChangeOperation
	TargetKind ChangeTarget
	TargetID   string
	Metadata   map[string]string
	OccurredAt time.Time
}
