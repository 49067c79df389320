package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

// replayGuard makes value-moving commands safe to retry. An empty key or a
// missing store disables it.
type replayGuard struct {
	Store ports.IdempotencyStore
	TTL   time.Duration
}

func hashRequest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func lookupReplay[T any](ctx context.Context, guard replayGuard, key string, requestHash string, now time.Time) (T, bool, error) {
	var zero T
	key = strings.TrimSpace(key)
	if guard.Store == nil || key == "" {
		return zero, false, nil
	}
	record, found, err := guard.Store.Get(ctx, key, now)
	if err != nil || !found {
		return zero, false, err
	}
	if record.RequestHash != requestHash {
		return zero, false, domainerrors.ErrIdempotencyConflict
	}
	var result T
	if err := json.Unmarshal(record.Response, &result); err != nil {
		return zero, false, err
	}
	return result, true, nil
}

func rememberReplay[T any](ctx context.Context, guard replayGuard, key string, requestHash string, result T, now time.Time) error {
	key = strings.TrimSpace(key)
	if guard.Store == nil || key == "" {
		return nil
	}
	response, err := json.Marshal(result)
	if err != nil {
		return err
	}
	ttl := guard.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return guard.Store.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Response:    response,
		ExpiresAt:   now.Add(ttl),
	})
}
