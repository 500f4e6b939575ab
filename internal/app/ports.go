package app

import (
	"context"

	"github.com/hylla/tavla/internal/domain"
)

// BoardStore persists the single board blob under one key.
type BoardStore interface {
	// LoadBoard returns the stored blob and false when the key is absent.
	LoadBoard(context.Context, string) ([]byte, bool, error)
	// SaveBoard overwrites the key with the blob.
	SaveBoard(context.Context, string, []byte) error
}

// ChangeRecorder is implemented by stores that keep an activity ledger.
type ChangeRecorder interface {
	RecordChange(context.Context, domain.ChangeEvent) error
	// ListChanges returns the newest events first.
	ListChanges(context.Context, int) ([]domain.ChangeEvent, error)
}

// Logger is the structured logging surface the service writes to.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}
