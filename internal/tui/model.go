// Package tui renders the board in the terminal and maps keys onto board operations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service is the board surface the terminal UI drives.
type Service interface {
	Board(context.Context) (app.BoardView, error)
	AddTask(context.Context, string) (domain.Task, error)
	EditTask(context.Context, string, *string) (domain.Task, error)
	DeleteTask(context.Context, string) error
	AddColumn(context.Context, string) (domain.Column, error)
	DeleteColumn(context.Context, string) error
	StartDrag(context.Context, string) error
	HideDragged(context.Context) (bool, error)
	DragEnter(context.Context, string) (bool, error)
	DragLeave(context.Context, string) (bool, error)
	DragOver(context.Context, string) (bool, error)
	Drop(context.Context, string) (bool, error)
	EndDrag(context.Context) error
	ListChanges(context.Context, int) ([]domain.ChangeEvent, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeAddColumn
	modeEditTask
	modeDrag
	modePreview
	modeActivityLog
)

// activity log limits used by modal rendering.
const (
	activityLogMaxItems   = 200
	activityLogViewWindow = 14
)

// activityEntry is one rendered activity log row.
type activityEntry struct {
	At      time.Time
	Summary string
	Target  string
}

// Model is the bubbletea model for the board.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string
	alert  string

	help help.Model
	keys keyMap

	board          app.BoardView
	selectedColumn int
	selectedTask   int

	mode          inputMode
	input         textinput.Model
	editingTaskID string
	dragTaskID    string
	dragHover     string
	previewTaskID string
	activityLog   []activityEntry

	pendingFocusTaskID string

	markdown *markdownRenderer
	copyText ClipboardFunc
	actorID  string
}

// loadedMsg carries a fresh board snapshot.
type loadedMsg struct {
	board app.BoardView
	err   error
}

// actionMsg carries the outcome of one mutation.
type actionMsg struct {
	err         error
	status      string
	reload      bool
	focusTaskID string
}

// dragStartedMsg reports that the service accepted a drag.
type dragStartedMsg struct {
	taskID   string
	columnID string
	err      error
}

// hideDragMsg fires one tick after a drag starts.
type hideDragMsg struct{}

// activityLogLoadedMsg carries persisted activity entries.
type activityLogLoadedMsg struct {
	entries []activityEntry
	err     error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:         svc,
		status:      "loading...",
		help:        h,
		keys:        newKeyMap(),
		input:       newModalInput("", "", "", 200),
		activityLog: []activityEntry{},
		markdown:    newMarkdownRenderer("dark"),
		copyText:    defaultClipboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadBoard
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.board = msg.board
		m.clampSelections()
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.applyActionError(msg.err)
			if msg.reload {
				return m, m.loadBoard
			}
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.reload {
			return m, m.loadBoard
		}
		return m, nil

	case dragStartedMsg:
		if msg.err != nil {
			m.mode = modeNone
			m.applyActionError(msg.err)
			return m, nil
		}
		m.mode = modeDrag
		m.dragTaskID = msg.taskID
		m.dragHover = msg.columnID
		m.status = "dragging " + msg.taskID
		return m, tea.Tick(0, func(time.Time) tea.Msg { return hideDragMsg{} })

	case hideDragMsg:
		if m.mode != modeDrag {
			return m, nil
		}
		return m, m.hideDraggedCmd()

	case activityLogLoadedMsg:
		if msg.err != nil {
			if m.mode == modeActivityLog {
				m.status = "activity log unavailable: " + msg.err.Error()
			}
			return m, nil
		}
		m.activityLog = append([]activityEntry(nil), msg.entries...)
		return m, nil

	case tea.KeyPressMsg:
		m.alert = ""
		switch m.mode {
		case modeAddTask, modeAddColumn, modeEditTask:
			return m.handleInputModeKey(msg)
		case modeDrag:
			return m.handleDragModeKey(msg)
		case modePreview, modeActivityLog:
			return m.handleModalKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	default:
		if m.mode == modeAddTask || m.mode == modeAddColumn || m.mode == modeEditTask {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// handleNormalModeKey maps board-level keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadBoard
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(m.board.Columns)-1)
		m.selectedTask = 0
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(m.board.Columns)-1)
		m.selectedTask = 0
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		m.startInput(modeAddTask, "new task: ", "what needs doing?", "")
		return m, nil
	case key.Matches(msg, m.keys.addColumn):
		m.startInput(modeAddColumn, "new column: ", "column name", "")
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskView()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.editingTaskID = task.ID
		m.startInput(modeEditTask, "edit: ", "", task.Text)
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskView()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.deleteTaskCmd(task.ID)
	case key.Matches(msg, m.keys.deleteColumn):
		column, ok := m.selectedColumnView()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.deleteColumnCmd(column.ID, column.Name)
	case key.Matches(msg, m.keys.startDrag):
		task, ok := m.selectedTaskView()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startDragCmd(task.ID, task.ColumnID)
	case key.Matches(msg, m.keys.preview):
		task, ok := m.selectedTaskView()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modePreview
		m.previewTaskID = task.ID
		return m, nil
	case key.Matches(msg, m.keys.yank):
		m.yankSelectedTask()
		return m, nil
	case key.Matches(msg, m.keys.activityLog):
		m.mode = modeActivityLog
		m.status = "activity log"
		return m, m.loadActivityLog
	}
	return m, nil
}

// handleInputModeKey handles keys while a text prompt is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		return m.submitInputMode()
	case key.Matches(msg, m.keys.cancel):
		mode := m.mode
		taskID := m.editingTaskID
		m.closeInput()
		if mode == modeEditTask {
			return m, m.editTaskCmd(taskID, nil)
		}
		m.status = "cancelled"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInputMode commits the open prompt.
func (m Model) submitInputMode() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	mode := m.mode
	taskID := m.editingTaskID
	m.closeInput()
	switch mode {
	case modeAddTask:
		return m, m.addTaskCmd(value)
	case modeAddColumn:
		return m, m.addColumnCmd(value)
	case modeEditTask:
		return m, m.editTaskCmd(taskID, &value)
	}
	return m, nil
}

// handleDragModeKey moves the drag hover between columns and drops or cancels.
func (m Model) handleDragModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveLeft), key.Matches(msg, m.keys.moveRight):
		delta := 1
		if key.Matches(msg, m.keys.moveLeft) {
			delta = -1
		}
		next := clamp(m.selectedColumn+delta, 0, len(m.board.Columns)-1)
		if next == m.selectedColumn || next < 0 || next >= len(m.board.Columns) {
			return m, nil
		}
		from := m.dragHover
		to := m.board.Columns[next].ID
		m.selectedColumn = next
		m.dragHover = to
		m.status = "over " + m.board.Columns[next].Name
		return m, m.dragHoverCmd(from, to)
	case key.Matches(msg, m.keys.confirm):
		target := m.dragHover
		taskID := m.dragTaskID
		m.endDragMode()
		return m, m.dropCmd(taskID, target)
	case key.Matches(msg, m.keys.cancel):
		m.endDragMode()
		return m, m.endDragCmd()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

// handleModalKey handles keys while preview or the activity log is open.
func (m Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel),
		m.mode == modePreview && key.Matches(msg, m.keys.preview),
		m.mode == modeActivityLog && key.Matches(msg, m.keys.activityLog):
		m.mode = modeNone
		m.previewTaskID = ""
		m.status = "ready"
		return m, nil
	case m.mode == modePreview && key.Matches(msg, m.keys.yank):
		m.yankSelectedTask()
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

// handleMouseClick selects the column and task under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || len(m.board.Columns) == 0 {
		return m, nil
	}
	colWidth := m.columnWidth() + columnOverhead
	idx := msg.X / max(1, colWidth)
	if idx >= 0 && idx < len(m.board.Columns) {
		m.selectedColumn = idx
	}
	row := msg.Y - boardTop - columnHeaderRows
	if row >= 0 {
		m.selectedTask = row
	}
	m.clampSelections()
	return m, nil
}

// startInput opens one text prompt.
func (m *Model) startInput(mode inputMode, prompt, placeholder, value string) {
	m.mode = mode
	m.input = newModalInput(prompt, placeholder, value, 200)
	m.input.Focus()
}

// closeInput dismisses the text prompt.
func (m *Model) closeInput() {
	m.mode = modeNone
	m.editingTaskID = ""
	m.input.Blur()
}

// endDragMode leaves drag mode locally.
func (m *Model) endDragMode() {
	m.mode = modeNone
	m.dragTaskID = ""
	m.dragHover = ""
}

// applyActionError routes validation failures to the alert line.
func (m *Model) applyActionError(err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTaskText),
		errors.Is(err, domain.ErrEmptyColumnName),
		errors.Is(err, domain.ErrDuplicateColumnID),
		errors.Is(err, domain.ErrTaskColumnMissing),
		errors.Is(err, domain.ErrDragInProgress):
		m.alert = validationMessage(err)
	default:
		m.status = "error: " + err.Error()
	}
}

// validationMessage returns the user-facing text for one validation error.
func validationMessage(err error) string {
	for _, target := range []error{
		domain.ErrEmptyTaskText,
		domain.ErrEmptyColumnName,
		domain.ErrDuplicateColumnID,
		domain.ErrTaskColumnMissing,
		domain.ErrDragInProgress,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// yankSelectedTask copies the selected task text.
func (m *Model) yankSelectedTask() {
	task, ok := m.selectedTaskView()
	if m.mode == modePreview {
		task, ok = m.board.Task(m.previewTaskID)
	}
	if !ok {
		m.status = "no task selected"
		return
	}
	if err := m.copyText(task.Text); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + task.ID
}

// ctx returns the context used for service calls from the terminal.
func (m Model) ctx() context.Context {
	return app.WithMutationActor(context.Background(), app.MutationActor{
		ActorID: m.actorID,
		Surface: app.SurfaceTUI,
	})
}

// loadBoard loads a fresh board snapshot.
func (m Model) loadBoard() tea.Msg {
	board, err := m.svc.Board(m.ctx())
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{board: board}
}

// loadActivityLog fetches persisted activity entries.
func (m Model) loadActivityLog() tea.Msg {
	events, err := m.svc.ListChanges(m.ctx(), activityLogMaxItems)
	if err != nil {
		return activityLogLoadedMsg{err: err}
	}
	return activityLogLoadedMsg{entries: mapChangeEventsToActivityEntries(events)}
}

func (m Model) addTaskCmd(text string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.AddTask(m.ctx(), text)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "added " + task.ID, reload: true, focusTaskID: task.ID}
	}
}

func (m Model) editTaskCmd(taskID string, text *string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.EditTask(m.ctx(), taskID, text)
		if err != nil {
			return actionMsg{err: err, reload: true}
		}
		status := "updated " + task.ID
		if text == nil {
			status = "edit cancelled"
		}
		return actionMsg{status: status, reload: true, focusTaskID: task.ID}
	}
}

func (m Model) deleteTaskCmd(taskID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteTask(m.ctx(), taskID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "deleted " + taskID, reload: true}
	}
}

func (m Model) addColumnCmd(name string) tea.Cmd {
	return func() tea.Msg {
		column, err := m.svc.AddColumn(m.ctx(), name)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "added column " + column.Name, reload: true}
	}
}

func (m Model) deleteColumnCmd(columnID, name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteColumn(m.ctx(), columnID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "deleted column " + name, reload: true}
	}
}

// startDragCmd starts a drag and highlights the origin column.
func (m Model) startDragCmd(taskID, columnID string) tea.Cmd {
	return func() tea.Msg {
		ctx := m.ctx()
		if err := m.svc.StartDrag(ctx, taskID); err != nil {
			return dragStartedMsg{err: err}
		}
		if _, err := m.svc.DragEnter(ctx, columnID); err != nil {
			return dragStartedMsg{err: err}
		}
		return dragStartedMsg{taskID: taskID, columnID: columnID}
	}
}

// hideDraggedCmd hides the dragged task and reloads.
func (m Model) hideDraggedCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.HideDragged(m.ctx()); err != nil {
			return actionMsg{err: err}
		}
		return m.loadBoard()
	}
}

// dragHoverCmd moves the highlight from one column to another.
func (m Model) dragHoverCmd(from, to string) tea.Cmd {
	return func() tea.Msg {
		ctx := m.ctx()
		if from != "" {
			if _, err := m.svc.DragLeave(ctx, from); err != nil {
				return actionMsg{err: err}
			}
		}
		if _, err := m.svc.DragEnter(ctx, to); err != nil {
			return actionMsg{err: err}
		}
		if ok, err := m.svc.DragOver(ctx, to); err != nil {
			return actionMsg{err: err}
		} else if !ok {
			return actionMsg{status: "cannot drop here", reload: true}
		}
		return m.loadBoard()
	}
}

// dropCmd drops the dragged task on the target and ends the drag.
func (m Model) dropCmd(taskID, target string) tea.Cmd {
	return func() tea.Msg {
		ctx := m.ctx()
		moved, dropErr := m.svc.Drop(ctx, target)
		endErr := m.svc.EndDrag(ctx)
		if err := errors.Join(dropErr, endErr); err != nil {
			return actionMsg{err: err, reload: true}
		}
		if !moved {
			return actionMsg{status: "nothing moved", reload: true}
		}
		return actionMsg{status: fmt.Sprintf("moved %s to %s", taskID, target), reload: true, focusTaskID: taskID}
	}
}

// endDragCmd ends the drag without dropping.
func (m Model) endDragCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.EndDrag(m.ctx()); err != nil {
			return actionMsg{err: err, reload: true}
		}
		return actionMsg{status: "drag cancelled", reload: true}
	}
}

// selectedColumnView returns the selected column.
func (m Model) selectedColumnView() (app.ColumnView, bool) {
	if len(m.board.Columns) == 0 {
		return app.ColumnView{}, false
	}
	return m.board.Columns[clamp(m.selectedColumn, 0, len(m.board.Columns)-1)], true
}

// selectedTaskView returns the selected task.
func (m Model) selectedTaskView() (app.TaskView, bool) {
	column, ok := m.selectedColumnView()
	if !ok {
		return app.TaskView{}, false
	}
	tasks := visibleTasks(column)
	if len(tasks) == 0 {
		return app.TaskView{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// clampSelections keeps selection indexes inside the board.
func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.board.Columns)-1)
	column, ok := m.selectedColumnView()
	if !ok {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(visibleTasks(column))-1)
}

// focusTaskByID selects the task with the given id when present.
func (m *Model) focusTaskByID(taskID string) {
	for colIdx, column := range m.board.Columns {
		for taskIdx, task := range visibleTasks(column) {
			if task.ID == taskID {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

// visibleTasks drops tasks hidden by an active drag.
func visibleTasks(column app.ColumnView) []app.TaskView {
	out := make([]app.TaskView, 0, len(column.Tasks))
	for _, task := range column.Tasks {
		if task.Hidden {
			continue
		}
		out = append(out, task)
	}
	return out
}

// mapChangeEventsToActivityEntries converts newest-first persisted events into modal rows.
func mapChangeEventsToActivityEntries(events []domain.ChangeEvent) []activityEntry {
	if len(events) == 0 {
		return []activityEntry{}
	}
	entries := make([]activityEntry, 0, len(events))
	// Repository events are newest-first; modal rendering expects chronological order.
	for idx := len(events) - 1; idx >= 0; idx-- {
		entries = append(entries, mapChangeEventToActivityEntry(events[idx]))
	}
	if len(entries) > activityLogMaxItems {
		entries = append([]activityEntry(nil), entries[len(entries)-activityLogMaxItems:]...)
	}
	return entries
}

// mapChangeEventToActivityEntry derives a compact activity row from one persisted event.
func mapChangeEventToActivityEntry(event domain.ChangeEvent) activityEntry {
	summary := string(event.Operation) + " " + string(event.TargetKind)
	target := strings.TrimSpace(event.TargetID)
	if target == "" {
		target = "-"
	}
	if event.Operation == domain.ChangeOperationMove {
		if to := event.Metadata["to_column_id"]; to != "" {
			target += " → " + to
		}
	}
	if surface := event.Metadata["surface"]; surface != "" {
		summary += " (" + surface + ")"
	}
	return activityEntry{
		At:      event.OccurredAt.UTC(),
		Summary: summary,
		Target:  target,
	}
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}
