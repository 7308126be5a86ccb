// Package redis contains the Redis-backed handover code store.
package redis

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

const maxOtpAttempts = 3

// verifyScript runs the whole verification as one atomic step so that two
// concurrent attempts cannot both consume the code or both count the same
// mismatch.
//
// KEYS[1] code, KEYS[2] attempt counter, KEYS[3] lock.
// ARGV[1] presented code, ARGV[2] counter TTL seconds, ARGV[3] max attempts,
// ARGV[4] lock TTL seconds.
var verifyScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[3]) == 1 then
	return 'locked'
end
local code = redis.call('GET', KEYS[1])
if not code then
	return 'missing'
end
if code == ARGV[1] then
	redis.call('DEL', KEYS[1], KEYS[2])
	return 'ok'
end
local attempts = redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], ARGV[2])
if attempts >= tonumber(ARGV[3]) then
	redis.call('SET', KEYS[3], '1', 'EX', ARGV[4])
	redis.call('DEL', KEYS[1], KEYS[2])
	return 'locked'
end
return 'mismatch'
`)

// RedisOtpStore keeps handover codes in Redis. A code lives under a TTL, is
// consumed on the first successful verification, and locks its step for a
// cool-down window after repeated mismatches.
type RedisOtpStore struct {
	client   *goredis.Client
	lockTTL  time.Duration
	counters time.Duration
}

// NewRedisOtpStore creates a store. lockTTL is the cool-down applied after
// the third consecutive mismatch.
func NewRedisOtpStore(client *goredis.Client, lockTTL time.Duration) *RedisOtpStore {
	return &RedisOtpStore{
		client:   client,
		lockTTL:  lockTTL,
		counters: lockTTL,
	}
}

func (s *RedisOtpStore) Issue(
	ctx context.Context, assignmentID kernel.UUID, step ports.OtpStep, code string, ttl time.Duration,
) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}

	codeKey, attemptsKey, lockKey := s.keys(assignmentID, step)

	// Replacing the code also forgets previous mismatches and any lock.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, codeKey, code, ttl)
	pipe.Del(ctx, attemptsKey, lockKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("issue %s code for assignment %s: %w", step, assignmentID, err)
	}
	return nil
}

func (s *RedisOtpStore) Verify(
	ctx context.Context, assignmentID kernel.UUID, step ports.OtpStep, code string,
) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}

	codeKey, attemptsKey, lockKey := s.keys(assignmentID, step)

	result, err := verifyScript.Run(ctx, s.client,
		[]string{codeKey, attemptsKey, lockKey},
		code,
		int(s.counters.Seconds()),
		maxOtpAttempts,
		int(s.lockTTL.Seconds()),
	).Text()
	if err != nil {
		return fmt.Errorf("verify %s code for assignment %s: %w", step, assignmentID, err)
	}

	switch result {
	case "ok":
		return nil
	case "locked":
		return ports.ErrOtpLocked
	case "mismatch":
		return ports.ErrOtpMismatch
	case "missing":
		return errs.NewObjectNotFoundError(fmt.Sprintf("%s code", step), assignmentID)
	default:
		return fmt.Errorf("verify %s code for assignment %s: unexpected result %q", step, assignmentID, result)
	}
}

func (s *RedisOtpStore) keys(assignmentID kernel.UUID, step ports.OtpStep) (code, attempts, lock string) {
	prefix := fmt.Sprintf("otp:%s:%s", assignmentID, step)
	return prefix, prefix + ":attempts", prefix + ":lock"
}
