package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/ports"
)

const defaultIdempotencyTTL = 7 * 24 * time.Hour

func hashRequest(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// replay returns the stored result for key, or found=false when the command
// has not run yet.
func replay(
	ctx context.Context,
	store ports.IdempotencyStore,
	key string,
	requestHash string,
	now time.Time,
) (RoleResult, bool, error) {
	existing, found, err := store.GetRecord(ctx, key, now)
	if err != nil || !found {
		return RoleResult{}, false, err
	}
	if existing.RequestHash != requestHash {
		return RoleResult{}, false, domainerrors.ErrIdempotencyConflict
	}
	var result RoleResult
	if err := json.Unmarshal(existing.ResponsePayload, &result); err != nil {
		return RoleResult{}, false, err
	}
	result.Replayed = true
	return result, true, nil
}
