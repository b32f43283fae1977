package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const commitLockTTL = 2 * time.Minute

// CommitLock serializes bulk commits per upload. Validation and commit are
// two separate user actions, so a double-clicked commit button would
// otherwise run the pipeline twice against the same validated rows.
type CommitLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCommitLock creates a CommitLock on the given redis client.
func NewCommitLock(client redis.UniversalClient) *CommitLock {
	return &CommitLock{client: client, ttl: commitLockTTL}
}

func lockKey(uploadID string) string {
	return "intake:commit-lock:" + uploadID
}

// Acquire takes the per-upload lock. Returns false when another commit for
// the same upload is already in flight. The TTL guards against a crashed
// holder wedging the upload forever.
func (l *CommitLock) Acquire(ctx context.Context, uploadID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(uploadID), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire commit lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock after the commit finishes, success or not.
func (l *CommitLock) Release(ctx context.Context, uploadID string) {
	_ = l.client.Del(ctx, lockKey(uploadID)).Err()
}
