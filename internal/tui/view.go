package tui

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// layout constants shared by rendering and mouse hit testing.
const (
	// columnOverhead is border (2) + horizontal padding (4) + right margin (1).
	columnOverhead   = 7
	boardTop         = 2
	columnHeaderRows = 5
	progressBarWidth = 16
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		return newView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
	}
	if !m.ready {
		return newView("loading...")
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	highlight := lipgloss.Color("214")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	alertStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	header := titleStyle.Render("tavla") + statusStyle.Render(fmt.Sprintf("  %d tasks  [%s]", m.board.TotalTasks, m.modeLabel()))

	colWidth := m.columnWidth()
	columnViews := make([]string, 0, len(m.board.Columns))
	for colIdx := range m.board.Columns {
		columnViews = append(columnViews, m.renderColumn(colIdx, colWidth, accent, muted, dim, highlight))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
	if len(m.board.Columns) == 0 {
		body = statusStyle.Render("No columns. Press C to add one.")
	}

	sections := []string{header, "", body}
	if m.mode == modeDrag {
		sections = append(sections, statusStyle.Render(fmt.Sprintf(
			"dragging %s • %s choose column • %s drop • %s cancel",
			m.dragTaskID, "h/l", m.keys.confirm.Help().Key, m.keys.cancel.Help().Key,
		)))
	}
	if m.alert != "" {
		sections = append(sections, alertStyle.Render("! "+m.alert))
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, dim, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return newView(fullContent)
}

// newView wraps content with the program-wide view settings.
func newView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderColumn renders one bordered column with its progress bar.
func (m Model) renderColumn(colIdx, colWidth int, accent, muted, dim, highlight color.Color) string {
	column := m.board.Columns[colIdx]
	selected := colIdx == m.selectedColumn

	border := dim
	switch {
	case column.Highlighted:
		border = highlight
	case selected:
		border = accent
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(muted)

	tasks := visibleTasks(column)
	lines := []string{
		colTitle.Render(fmt.Sprintf("%s (%d)", column.Name, len(tasks))),
		barStyle.Render(renderProgressBar(column.Progress.Percent, min(progressBarWidth, max(4, colWidth-10)))),
		"",
	}
	if len(tasks) == 0 {
		lines = append(lines, emptyStyle.Render("(empty)"))
	}
	for taskIdx, task := range tasks {
		isSelected := selected && taskIdx == m.selectedTask && m.mode != modeDrag
		prefix := "  "
		if isSelected {
			prefix = "│ "
		}
		line := prefix + truncate(firstLine(task.Text), max(1, colWidth-6))
		if isSelected {
			line = selectedTaskStyle.Render(line)
		}
		lines = append(lines, line)
	}
	content := strings.Join(lines, "\n")
	if m.height > 0 {
		content = fitLines(content, max(4, m.height-12))
	}
	return style.Render(content)
}

// renderProgressBar draws a fixed-width bar for one percentage.
func renderProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = math.Max(0, math.Min(100, percent))
	filled := int(math.Round(percent / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %3.0f%%", percent)
}

// renderModeOverlay renders the modal for the active mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 24, 72)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hint := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeAddTask, modeAddColumn, modeEditTask:
		label := map[inputMode]string{
			modeAddTask:   "New task",
			modeAddColumn: "New column",
			modeEditTask:  "Edit task",
		}[m.mode]
		return box.Render(strings.Join([]string{
			title.Render(label),
			m.input.View(),
			hint.Render("enter save • esc cancel"),
		}, "\n"))

	case modePreview:
		task, ok := m.board.Task(m.previewTaskID)
		if !ok {
			return ""
		}
		body := m.markdown.render(task.Text, width-4)
		if body == "" {
			body = hint.Render("(no text)")
		}
		return box.Render(strings.Join([]string{
			title.Render(task.ID),
			body,
			hint.Render(fmt.Sprintf("%s copy • esc close", m.keys.yank.Help().Key)),
		}, "\n"))

	case modeActivityLog:
		lines := []string{title.Render("Activity")}
		entries := m.activityLog
		if len(entries) > activityLogViewWindow {
			entries = entries[len(entries)-activityLogViewWindow:]
		}
		if len(entries) == 0 {
			lines = append(lines, hint.Render("(no activity yet)"))
		}
		stamp := lipgloss.NewStyle().Foreground(dim)
		for _, entry := range entries {
			lines = append(lines, stamp.Render(entry.At.Local().Format("01-02 15:04"))+"  "+truncate(entry.Summary+"  "+entry.Target, max(1, width-16)))
		}
		lines = append(lines, hint.Render("esc close"))
		return box.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders the full key help.
func (m Model) renderHelpOverlay(accent, dim color.Color, maxWidth int) string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(max(0, maxWidth-4))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Keys") + "\n" +
			helpBubble.View(m.keys) + "\n" +
			lipgloss.NewStyle().Foreground(dim).Render("? close"))
}

// modeLabel returns the header label for the active mode.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "add task"
	case modeAddColumn:
		return "add column"
	case modeEditTask:
		return "edit"
	case modeDrag:
		return "drag"
	case modePreview:
		return "preview"
	case modeActivityLog:
		return "activity"
	default:
		return "board"
	}
}

// columnWidth returns column width for the current terminal width.
func (m Model) columnWidth() int {
	if len(m.board.Columns) == 0 {
		return 24
	}
	w := 28
	if m.width > 0 {
		usable := m.width - len(m.board.Columns)*columnOverhead
		if candidate := usable / len(m.board.Columns); candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 18, 42)
}

// firstLine returns the first line of multi-line task text.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
