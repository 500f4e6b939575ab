package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Defaults applied when options leave fields empty.
const (
	DefaultPrefix      = "tavla:"
	DefaultChangeLimit = 500
)

// Store keeps board blobs under <prefix>board:<key> and the activity ledger in a
// capped list at <prefix>changes, so no storage key can collide with the ledger.
type Store struct {
	client      *goredis.Client
	prefix      string
	changeLimit int64
}

var (
	_ app.BoardStore     = (*Store)(nil)
	_ app.ChangeRecorder = (*Store)(nil)
)

// Options configures a Store.
type Options struct {
	URL         string
	Prefix      string
	ChangeLimit int
}

// Open parses the URL, connects and pings the server.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("redis url is required")
	}
	redisOpts, err := goredis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, opts.Prefix, opts.ChangeLimit), nil
}

// New wraps an existing client.
func New(client *goredis.Client, prefix string, changeLimit int) *Store {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	if changeLimit <= 0 {
		changeLimit = DefaultChangeLimit
	}
	return &Store{client: client, prefix: prefix, changeLimit: int64(changeLimit)}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// LoadBoard returns the blob stored under key.
func (s *Store) LoadBoard(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.boardKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get board blob: %w", err)
	}
	return data, true, nil
}

// SaveBoard overwrites the blob stored under key.
func (s *Store) SaveBoard(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, s.boardKey(key), blob, 0).Err(); err != nil {
		return fmt.Errorf("set board blob: %w", err)
	}
	return nil
}

type changeRecord struct {
	ID         int64             `json:"id"`
	SessionID  string            `json:"session_id"`
	Operation  string            `json:"operation"`
	TargetKind string            `json:"target_kind"`
	TargetID   string            `json:"target_id"`
	Metadata   map[string]string `json:"metadata"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// RecordChange prepends one event to the capped ledger list.
func (s *Store) RecordChange(ctx context.Context, event domain.ChangeEvent) error {
	id, err := s.client.Incr(ctx, s.prefix+"changes:seq").Result()
	if err != nil {
		return fmt.Errorf("allocate change id: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	data, err := json.Marshal(changeRecord{
		ID:         id,
		SessionID:  event.SessionID,
		Operation:  string(event.Operation),
		TargetKind: string(event.TargetKind),
		TargetID:   event.TargetID,
		Metadata:   event.Metadata,
		OccurredAt: occurred.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	listKey := s.changesKey()
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, listKey, data)
		pipe.LTrim(ctx, listKey, 0, s.changeLimit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push change event: %w", err)
	}
	return nil
}

// ListChanges returns up to limit events, newest first.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := s.client.LRange(ctx, s.changesKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list change events: %w", err)
	}
	out := make([]domain.ChangeEvent, 0, len(raw))
	for _, item := range raw {
		var rec changeRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode change event: %w", err)
		}
		if rec.Metadata == nil {
			rec.Metadata = map[string]string{}
		}
		out = append(out, domain.ChangeEvent{
			ID:         rec.ID,
			SessionID:  rec.SessionID,
			Operation:  domain.ChangeOperation(rec.Operation),
			TargetKind: domain.ChangeTarget(rec.TargetKind),
			TargetID:   rec.TargetID,
			Metadata:   rec.Metadata,
			OccurredAt: rec.OccurredAt.UTC(),
		})
	}
	return out, nil
}

func (s *Store) boardKey(key string) string {
	return s.prefix + "board:" + key
}

func (s *Store) changesKey() string {
	return s.prefix + "changes"
}
