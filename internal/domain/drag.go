package domain

import "slices"

// DragPhase describes the drag-and-drop controller state.
type DragPhase string

// DragPhase values.
const (
	DragPhaseIdle     DragPhase = "idle"
	DragPhaseDragging DragPhase = "dragging"
)

// DragState tracks one in-flight drag: the payload task, whether it is hidden,
// and which columns are highlighted.
type DragState struct {
	phase       DragPhase
	taskID      string
	hidden      bool
	highlighted []string
}

// DragSnapshot is a read-only copy of the drag state.
type DragSnapshot struct {
	Phase       DragPhase
	TaskID      string
	Hidden      bool
	Highlighted []string
}

// Phase returns the current phase.
func (d *DragState) Phase() DragPhase {
	if d.phase == "" {
		return DragPhaseIdle
	}
	return d.phase
}

// Start records the payload and enters the dragging phase.
func (d *DragState) Start(taskID string) error {
	if d.Phase() == DragPhaseDragging {
		return ErrDragInProgress
	}
	d.phase = DragPhaseDragging
	d.taskID = taskID
	d.hidden = false
	return nil
}

// Hide hides the dragged task. It reports false when no drag is active.
func (d *DragState) Hide() bool {
	if d.Phase() != DragPhaseDragging {
		return false
	}
	d.hidden = true
	return true
}

// Payload returns the dragged task id.
func (d *DragState) Payload() (string, bool) {
	if d.Phase() != DragPhaseDragging {
		return "", false
	}
	return d.taskID, true
}

// Highlight marks a column as hovered.
func (d *DragState) Highlight(columnID string) {
	if !slices.Contains(d.highlighted, columnID) {
		d.highlighted = append(d.highlighted, columnID)
	}
}

// Unhighlight clears the hover mark on a column.
func (d *DragState) Unhighlight(columnID string) {
	d.highlighted = slices.DeleteFunc(d.highlighted, func(id string) bool { return id == columnID })
}

// IsHighlighted reports whether a column is hovered.
func (d *DragState) IsHighlighted(columnID string) bool {
	return slices.Contains(d.highlighted, columnID)
}

// End un-hides the task, clears highlights and returns to idle.
func (d *DragState) End() {
	d.phase = DragPhaseIdle
	d.taskID = ""
	d.hidden = false
	d.highlighted = nil
}

// Snapshot copies the current state.
func (d *DragState) Snapshot() DragSnapshot {
	return DragSnapshot{
		Phase:       d.Phase(),
		TaskID:      d.taskID,
		Hidden:      d.hidden,
		Highlighted: slices.Clone(d.highlighted),
	}
}
