package dedupe

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLock(t *testing.T) (*CommitLock, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCommitLock(client), srv
}

func TestCommitLockBlocksSecondAcquire(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "upload-1")
	if err != nil || !ok {
		t.Fatalf("first acquire failed: ok=%v err=%v", ok, err)
	}

	ok, err = lock.Acquire(ctx, "upload-1")
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatal("second acquire should have been refused")
	}
}

func TestCommitLockIsPerUpload(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "upload-1"); !ok {
		t.Fatal("acquire upload-1 failed")
	}
	if ok, _ := lock.Acquire(ctx, "upload-2"); !ok {
		t.Fatal("acquire upload-2 should be independent")
	}
}

func TestCommitLockReleaseAllowsReacquire(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "upload-1"); !ok {
		t.Fatal("acquire failed")
	}
	lock.Release(ctx, "upload-1")
	if ok, _ := lock.Acquire(ctx, "upload-1"); !ok {
		t.Fatal("reacquire after release failed")
	}
}

func TestCommitLockExpiresWithTTL(t *testing.T) {
	lock, srv := newTestLock(t)
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "upload-1"); !ok {
		t.Fatal("acquire failed")
	}

	srv.FastForward(commitLockTTL * 2)

	if ok, _ := lock.Acquire(ctx, "upload-1"); !ok {
		t.Fatal("lock should expire after TTL")
	}
}
