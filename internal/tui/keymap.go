package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	addTask      key.Binding
	addColumn    key.Binding
	editTask     key.Binding
	deleteTask   key.Binding
	deleteColumn key.Binding
	startDrag    key.Binding
	confirm      key.Binding
	cancel       key.Binding
	preview      key.Binding
	yank         key.Binding
	activityLog  key.Binding
}

// KeyConfig holds configurable key overrides.
type KeyConfig struct {
	ActivityLog string
	Preview     string
	Yank        string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		addColumn:    key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "new column")),
		editTask:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		deleteColumn: key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete column")),
		startDrag:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "drag task")),
		confirm:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm / drop")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		preview:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "preview task")),
		yank:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task text")),
		activityLog:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "activity log")),
	}
}

// applyConfig rebinds the configurable keys.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.activityLog, cfg.ActivityLog, "g", "activity log")
	configureBinding(&k.preview, cfg.Preview, "i", "preview task")
	configureBinding(&k.yank, cfg.Yank, "y", "copy task text")
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.startDrag, k.preview, k.activityLog, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.addColumn, k.editTask, k.deleteTask, k.deleteColumn},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.startDrag, k.confirm, k.cancel},
		{k.preview, k.yank, k.activityLog, k.reload, k.toggleHelp, k.quit},
	}
}

// configureBinding replaces one binding's keys with a configured value or the fallback.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys converts one configured key into matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}
