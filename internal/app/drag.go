package app

import (
	"context"
	"errors"

	"github.com/hylla/tavla/internal/domain"
)

// StartDrag records the dragged task. The task stays visible until HideDragged.
func (s *Service) StartDrag(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, _, ok := s.board.FindTask(taskID); !ok {
		return translateDomainErr(domain.ErrTaskNotFound)
	}
	return s.drag.Start(taskID)
}

// HideDragged hides the dragged task. Renderers call it one tick after StartDrag.
func (s *Service) HideDragged(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.drag.Hide(), nil
}

// DragEnter highlights the target when it is a column.
func (s *Service) DragEnter(ctx context.Context, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if !s.board.IsColumn(targetID) {
		return false, nil
	}
	s.drag.Highlight(targetID)
	return true, nil
}

// DragLeave clears the highlight when the target is a column.
func (s *Service) DragLeave(ctx context.Context, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if !s.board.IsColumn(targetID) {
		return false, nil
	}
	s.drag.Unhighlight(targetID)
	return true, nil
}

// DragOver reports whether a drop on the target would resolve to a column.
func (s *Service) DragOver(ctx context.Context, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	_, ok := s.board.ResolveDropTarget(targetID)
	return ok, nil
}

// Drop moves the dragged task to the column the target resolves to. Progress is
// recomputed and the board saved even when nothing moved.
func (s *Service) Drop(ctx context.Context, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}

	moved := false
	var taskID, from, to string
	if payload, ok := s.drag.Payload(); ok {
		if columnID, resolved := s.board.ResolveDropTarget(targetID); resolved {
			s.drag.Unhighlight(columnID)
			prev, err := s.board.MoveTask(payload, columnID)
			switch {
			case err == nil:
				moved, taskID, from, to = true, payload, prev, columnID
			case errors.Is(err, domain.ErrTaskNotFound):
				s.logger.Warn("dropped task no longer exists", "task_id", payload)
			default:
				return false, err
			}
		}
	}

	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return moved, err
	}
	if moved {
		s.recordMove(ctx, taskID, from, to)
	}
	return moved, nil
}

// EndDrag un-hides the dragged task, clears highlights and saves.
func (s *Service) EndDrag(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.drag.End()
	s.refreshProgress()
	return s.save(ctx)
}

// DragState returns a copy of the drag controller state.
func (s *Service) DragState() domain.DragSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Snapshot()
}
