package redisstate

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formstudio/pkg/flow"
)

// Runs against the Redis named by FORMSTUDIO_TEST_REDIS_ADDR.
func TestStore(t *testing.T) {
	addr := os.Getenv("FORMSTUDIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FORMSTUDIO_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	prefix := "formstudio:test:" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"
	s := New(client, WithPrefix(prefix), WithTTL(time.Minute))

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, flow.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	formID := int64(3)
	snap := flow.Snapshot{
		FormID:   &formID,
		Phase:    flow.PhaseQuestions,
		Question: "12",
		Path:     []string{"11"},
		Answers:  map[string]string{"11": "yes"},
	}
	if err := s.Set(ctx, "s1", snap); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	ttl, err := client.TTL(ctx, prefix+"s1").Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); !errors.Is(err, flow.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
	}
}

func TestKey(t *testing.T) {
	s := New(nil)
	if got := s.key("abc"); got != "formstudio:session:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	s = New(nil, WithPrefix("x:"), WithTTL(-1))
	if s.key("abc") != "x:abc" || s.ttl != defaultTTL {
		t.Fatalf("options not applied: %q %s", s.key("abc"), s.ttl)
	}
}
