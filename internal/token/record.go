// Package token issues and decodes the single-use redemption tokens that
// prove a visitor sat through the interstitial wait.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Decoding errors.
var (
	ErrEmptyRecord     = errors.New("empty token record")
	ErrMalformedRecord = errors.New("malformed token record")
)

// Record is a cached redemption token. Zero-valued optional fields mean the
// token was not bound to that attribute when issued.
type Record struct {
	Token     string    `json:"token"`
	Code      string    `json:"code,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// HasIssuedAt reports whether the record carries an issuance time.
func (r Record) HasIssuedAt() bool {
	return !r.IssuedAt.IsZero()
}

// Encode returns the cached representation of r.
func (r Record) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode token record: %w", err)
	}

	return string(data), nil
}

// DecodeRecord normalizes a cached token value. Older writers stored the
// bare token string; those decode to a Record with only Token set.
func DecodeRecord(raw string) (Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Record{}, ErrEmptyRecord
	}

	if !strings.HasPrefix(raw, "{") {
		return Record{Token: raw}, nil
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if r.Token == "" {
		return Record{}, ErrEmptyRecord
	}

	return r, nil
}

// Fingerprint scopes a token to the client that requested it.
func Fingerprint(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + strings.TrimSpace(userAgent)))

	return hex.EncodeToString(sum[:])
}
