package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 10 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the lock key only when it still holds our
// owner token, so an expired lock reacquired by someone else is never
// released from here.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker provides per-key mutual exclusion backed by Redis SET NX.
// It serialises session supersession (per user) and the clock-in/out
// check-and-write (per employee).
type Locker struct {
	client *redis.Client
}

// NewLocker creates a Locker wrapping the given Redis client.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Lock blocks until the key is acquired or ctx is done. The returned
// func releases the lock; the TTL bounds the damage of a crashed holder.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context), error) {
	token, err := lockToken()
	if err != nil {
		return nil, err
	}

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}

	release := func(ctx context.Context) {
		_, _ = releaseScript.Run(ctx, l.client, []string{key}, token).Result()
	}
	return release, nil
}

func lockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
