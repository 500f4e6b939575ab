package tui

import "github.com/atotto/clipboard"

// Option configures a Model.
type Option func(*Model)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

// defaultClipboard writes through the OS clipboard.
func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// WithKeyConfig rebinds the configurable keys.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}

// WithActorID names the operator recorded on activity entries.
func WithActorID(actorID string) Option {
	return func(m *Model) {
		m.actorID = actorID
	}
}

// WithMarkdownStyle selects the glamour style used by the task preview.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.markdown = newMarkdownRenderer(style)
	}
}
