// Package redisstate parks fill-session snapshots in Redis so any server
// instance can resume a session.
package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formstudio/pkg/flow"
)

const (
	defaultTTL    = 24 * time.Hour
	defaultPrefix = "formstudio:session:"
)

// Store implements flow.SnapshotStore on Redis.
type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an idle session is kept. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

var _ flow.SnapshotStore = (*Store)(nil)

// New wraps client.
func New(client redis.Cmdable, options ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix, ttl: defaultTTL}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the snapshot stored under id and refreshes its TTL.
func (s *Store) Get(ctx context.Context, id string) (flow.Snapshot, error) {
	v, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return flow.Snapshot{}, fmt.Errorf("%w: %s", flow.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return flow.Snapshot{}, fmt.Errorf("redisstate: get %s: %w", id, err)
	}

	var snap flow.Snapshot
	if err := json.Unmarshal(v, &snap); err != nil {
		return flow.Snapshot{}, fmt.Errorf("redisstate: decode %s: %w", id, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key(id), s.ttl).Err(); err != nil {
			return flow.Snapshot{}, fmt.Errorf("redisstate: touch %s: %w", id, err)
		}
	}
	return snap, nil
}

// Set stores snap under id.
func (s *Store) Set(ctx context.Context, id string, snap flow.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redisstate: encode %s: %w", id, err)
	}
	if err := s.client.Set(ctx, s.key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstate: set %s: %w", id, err)
	}
	return nil
}

// Delete removes the snapshot stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redisstate: delete %s: %w", id, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}
