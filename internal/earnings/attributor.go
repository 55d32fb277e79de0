// Package earnings credits link owners for valid unique views.
package earnings

import (
	"context"
	"fmt"

	"github.com/serroba/paylink/internal/shortener"
	"go.uber.org/zap"
)

// Ledger applies a credit to a user balance and a link total atomically.
type Ledger interface {
	Credit(ctx context.Context, userID, linkID int64, amount shortener.Money) error
}

// Attributor credits earnings. It is not idempotent: each call adds amount.
type Attributor struct {
	ledger Ledger
	logger *zap.Logger
}

// NewAttributor creates an earnings attributor.
func NewAttributor(ledger Ledger, logger *zap.Logger) *Attributor {
	return &Attributor{ledger: ledger, logger: logger}
}

// Attribute credits amount to userID for a view on link. Balance and link
// total change together or not at all.
func (a *Attributor) Attribute(ctx context.Context, link *shortener.Snapshot, userID int64, amount shortener.Money) error {
	if amount <= 0 {
		return shortener.ErrInvalidAmount
	}

	if !link.OwnedBy(userID) {
		return shortener.ErrNotOwner
	}

	if err := a.ledger.Credit(ctx, userID, link.ID, amount); err != nil {
		return fmt.Errorf("attribute %s to user %d: %w", amount, userID, err)
	}

	a.logger.Debug("earnings attributed",
		zap.String("code", string(link.Code)),
		zap.Int64("user_id", userID),
		zap.Int64("amount_cents", int64(amount)),
	)

	return nil
}
