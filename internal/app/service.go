package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/tavla/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	StorageKey     string
	SessionID      string
	Board          domain.BoardOptions
	DefaultColumns []domain.SeedColumn
}

// Clock returns the current time.
type Clock func() time.Time

// Service is the board controller. It owns one board, persists the whole blob
// after every mutation and serializes all calls.
type Service struct {
	mu sync.Mutex

	store    BoardStore
	recorder ChangeRecorder
	clock    Clock
	logger   Logger

	key       string
	sessionID string
	boardOpts domain.BoardOptions
	seeds     []domain.SeedColumn

	loaded   bool
	board    *domain.Board
	drag     domain.DragState
	progress []domain.ColumnProgress
}

// NewService constructs a new value for this package.
func NewService(store BoardStore, clock Clock, logger Logger, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	cfg.StorageKey = strings.TrimSpace(cfg.StorageKey)
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	cfg.SessionID = strings.TrimSpace(cfg.SessionID)
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	seeds := sanitizeSeedColumns(cfg.DefaultColumns)
	if len(seeds) == 0 {
		seeds = domain.DefaultSeedColumns()
	}

	recorder, _ := store.(ChangeRecorder)
	return &Service{
		store:     store,
		recorder:  recorder,
		clock:     clock,
		logger:    logger,
		key:       cfg.StorageKey,
		sessionID: cfg.SessionID,
		boardOpts: cfg.Board,
		seeds:     seeds,
		board:     domain.NewBoard(cfg.Board),
	}
}

// SessionID returns the id stamped on change events from this process.
func (s *Service) SessionID() string {
	return s.sessionID
}

// StorageKey returns the key the blob is stored under.
func (s *Service) StorageKey() string {
	return s.key
}

// Load reads the persisted board, seeding default columns when nothing is stored.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save writes the current board to the store.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	return s.save(ctx)
}

// Board returns a rendering projection of the current board.
func (s *Service) Board(ctx context.Context) (BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return BoardView{}, err
	}
	return buildBoardView(s.board.Columns(), s.progress, s.drag.Snapshot()), nil
}

// Progress returns the per-column progress computed after the last mutation.
func (s *Service) Progress(ctx context.Context) ([]domain.ColumnProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(s.progress), nil
}

// AddTask appends a task to the task column.
func (s *Service) AddTask(ctx context.Context, text string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Task{}, err
	}
	task, err := s.board.AddTask(text)
	if err != nil {
		return domain.Task{}, err
	}
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return task, err
	}
	_, columnID, _ := s.board.FindTask(task.ID)
	s.record(ctx, domain.ChangeOperationCreate, domain.ChangeTargetTask, task.ID, map[string]string{
		"column_id": columnID,
		"text":      task.Text,
	})
	return task, nil
}

// EditTask applies user input to a task. A nil or blank input leaves the text
// unchanged; the board is saved either way.
func (s *Service) EditTask(ctx context.Context, taskID string, input *string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Task{}, err
	}
	task, changed, err := s.board.EditTask(taskID, input)
	if err != nil {
		return domain.Task{}, translateDomainErr(err)
	}
	if err := s.save(ctx); err != nil {
		return task, err
	}
	if changed {
		s.record(ctx, domain.ChangeOperationUpdate, domain.ChangeTargetTask, task.ID, map[string]string{
			"text": task.Text,
		})
	}
	return task, nil
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	task, columnID, err := s.board.DeleteTask(taskID)
	if err != nil {
		return translateDomainErr(err)
	}
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return err
	}
	s.record(ctx, domain.ChangeOperationDelete, domain.ChangeTargetTask, task.ID, map[string]string{
		"column_id": columnID,
	})
	return nil
}

// AddColumn appends a new empty column with a minted id.
func (s *Service) AddColumn(ctx context.Context, name string) (domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Column{}, err
	}
	column, err := s.board.AddColumn(name)
	if err != nil {
		return domain.Column{}, err
	}
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return column, err
	}
	s.record(ctx, domain.ChangeOperationCreate, domain.ChangeTargetColumn, column.ID, map[string]string{
		"name": column.Name,
	})
	return column, nil
}

// AddColumnWithDefault appends a column with an explicit id without saving.
func (s *Service) AddColumnWithDefault(ctx context.Context, name, id string) (domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Column{}, err
	}
	column, err := s.board.AddColumnWithDefault(name, id)
	if err != nil {
		return domain.Column{}, err
	}
	s.refreshProgress()
	return column, nil
}

// DeleteColumn removes a column and every task it holds.
func (s *Service) DeleteColumn(ctx context.Context, columnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	removed, err := s.board.DeleteColumn(columnID)
	if err != nil {
		return translateDomainErr(err)
	}
	s.drag.Unhighlight(removed.ID)
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return err
	}
	s.record(ctx, domain.ChangeOperationDelete, domain.ChangeTargetColumn, removed.ID, map[string]string{
		"name":          removed.Name,
		"removed_tasks": strings.Join(removed.TaskIDs(), ","),
	})
	return nil
}

// MoveTask re-parents a task as the last child of a column.
func (s *Service) MoveTask(ctx context.Context, taskID, columnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	from, err := s.board.MoveTask(taskID, columnID)
	if err != nil {
		return translateDomainErr(err)
	}
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return err
	}
	s.recordMove(ctx, taskID, from, columnID)
	return nil
}

// ExportBlob returns the serialized board.
func (s *Service) ExportBlob(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return EncodeBlob(s.board.Columns())
}

// ImportBlob replaces the board with a serialized document and saves it.
func (s *Service) ImportBlob(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if IsNullBlob(data) {
		return fmt.Errorf("%w: import document is null", domain.ErrMalformedBoard)
	}
	blob, err := DecodeBlob(data)
	if err != nil {
		return err
	}
	columns, err := blob.ToColumns()
	if err != nil {
		return err
	}
	board := domain.NewBoard(s.boardOpts)
	if err := board.RestoreColumns(columns); err != nil {
		return err
	}
	s.board = board
	s.drag.End()
	s.refreshProgress()
	if err := s.save(ctx); err != nil {
		return err
	}
	s.record(ctx, domain.ChangeOperationImport, domain.ChangeTargetBoard, s.key, map[string]string{
		"columns": fmt.Sprint(len(columns)),
		"tasks":   fmt.Sprint(board.TaskCount()),
	})
	return nil
}

// ListChanges returns recent activity, newest first.
func (s *Service) ListChanges(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if s.recorder == nil {
		return []domain.ChangeEvent{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.recorder.ListChanges(ctx, limit)
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) error {
	if s.store == nil {
		return ErrStoreRequired
	}
	data, ok, err := s.store.LoadBoard(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load board %q: %w", s.key, err)
	}

	if ok && IsNullBlob(data) {
		s.logger.Warn("stored board is null, seeding defaults", "key", s.key)
		ok = false
	}

	board := domain.NewBoard(s.boardOpts)
	if !ok {
		for _, seed := range s.seeds {
			if _, err := board.AddColumnWithDefault(seed.Name, seed.ID); err != nil {
				return fmt.Errorf("seed column %q: %w", seed.ID, err)
			}
		}
		s.logger.Info("seeded default board", "key", s.key, "columns", len(s.seeds))
	} else {
		blob, err := DecodeBlob(data)
		if err != nil {
			return err
		}
		columns, err := blob.ToColumns()
		if err != nil {
			return err
		}
		if err := board.RestoreColumns(columns); err != nil {
			return err
		}
		taskCounter, columnCounter := board.Counters()
		s.logger.Debug("loaded board", "key", s.key, "columns", len(columns), "tasks", board.TaskCount(), "next_task", taskCounter, "next_column", columnCounter)
	}

	s.board = board
	s.drag.End()
	s.loaded = true
	s.refreshProgress()
	return nil
}

func (s *Service) save(ctx context.Context) error {
	data, err := EncodeBlob(s.board.Columns())
	if err != nil {
		return err
	}
	if err := s.store.SaveBoard(ctx, s.key, data); err != nil {
		s.logger.Error("save board failed", "key", s.key, "err", err)
		return fmt.Errorf("save board %q: %w", s.key, err)
	}
	s.logger.Debug("saved board", "key", s.key, "bytes", len(data))
	return nil
}

func (s *Service) refreshProgress() {
	s.progress = s.board.Progress()
}

func (s *Service) recordMove(ctx context.Context, taskID, from, to string) {
	s.record(ctx, domain.ChangeOperationMove, domain.ChangeTargetTask, taskID, map[string]string{
		"from_column_id": from,
		"to_column_id":   to,
	})
}

// record appends to the activity ledger. Ledger failures are logged, not returned.
func (s *Service) record(ctx context.Context, op domain.ChangeOperation, kind domain.ChangeTarget, targetID string, metadata map[string]string) {
	if s.recorder == nil {
		return
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	if actor, ok := MutationActorFromContext(ctx); ok {
		if actor.ActorID != "" {
			metadata["actor_id"] = actor.ActorID
		}
		if actor.Surface != "" {
			metadata["surface"] = string(actor.Surface)
		}
	}
	event := domain.ChangeEvent{
		SessionID:  s.sessionID,
		Operation:  op,
		TargetKind: kind,
		TargetID:   targetID,
		Metadata:   metadata,
		OccurredAt: s.clock().UTC(),
	}
	if err := s.recorder.RecordChange(ctx, event); err != nil {
		s.logger.Warn("record change failed", "operation", op, "target_id", targetID, "err", err)
	}
}

// translateDomainErr maps domain lookup failures to ErrNotFound while keeping the cause.
func translateDomainErr(err error) error {
	if errors.Is(err, domain.ErrTaskNotFound) || errors.Is(err, domain.ErrColumnNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func sanitizeSeedColumns(in []domain.SeedColumn) []domain.SeedColumn {
	out := make([]domain.SeedColumn, 0, len(in))
	seen := map[string]struct{}{}
	for _, seed := range in {
		seed.ID = strings.TrimSpace(seed.ID)
		seed.Name = strings.TrimSpace(seed.Name)
		if seed.ID == "" || seed.Name == "" {
			continue
		}
		if _, ok := seen[seed.ID]; ok {
			continue
		}
		seen[seed.ID] = struct{}{}
		out = append(out, seed)
	}
	return out
}
