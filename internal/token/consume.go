package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/paylink/internal/cache"
)

// Take atomically removes and returns the token issued to the client
// fingerprint, falling back to the legacy unscoped key. It returns
// cache.ErrMiss when neither key holds a token.
func Take(ctx context.Context, c cache.Store, code, fingerprint string) (Record, error) {
	for _, key := range []string{cache.TokenKey(code, fingerprint), cache.LegacyTokenKey(code)} {
		raw, err := c.Take(ctx, key)
		if errors.Is(err, cache.ErrMiss) {
			continue
		}

		if err != nil {
			return Record{}, fmt.Errorf("take token %s: %w", key, err)
		}

		return DecodeRecord(raw)
	}

	return Record{}, cache.ErrMiss
}
