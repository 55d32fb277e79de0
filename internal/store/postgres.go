package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/paylink/internal/shortener"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// PostgresStore is a PostgreSQL implementation of the link, view and balance stores.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Create(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (user_id, code, original_url, title, password, expired_at,
			status, earn_per_click_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		link.OwnerID,
		string(link.Code),
		link.OriginalURL,
		nullableString(link.Title),
		nullableString(link.Password),
		link.ExpiresAt,
		string(link.Status),
		int64(link.EarnPerClick),
		link.CreatedAt,
		link.UpdatedAt,
	).Scan(&link.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return shortener.ErrCodeCollision
			case checkViolation:
				return fmt.Errorf("create link %s: %w", link.Code, shortener.ErrGuestEarnings)
			}
		}

		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `
		SELECT id, user_id, code, original_url, COALESCE(title, ''), COALESCE(password, ''),
			expired_at, status, COALESCE(admin_comment, ''), earn_per_click_cents,
			total_earned_cents, created_at, updated_at
		FROM links
		WHERE code = $1
	`

	var (
		link              shortener.Link
		status            string
		earnPerClick, sum int64
	)

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.ID,
		&link.OwnerID,
		&link.Code,
		&link.OriginalURL,
		&link.Title,
		&link.Password,
		&link.ExpiresAt,
		&status,
		&link.AdminComment,
		&earnPerClick,
		&sum,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrLinkNotFound
		}

		return nil, fmt.Errorf("get link %s: %w", code, err)
	}

	link.Status = shortener.Status(status)
	link.EarnPerClick = shortener.Money(earnPerClick)
	link.TotalEarned = shortener.Money(sum)

	return &link, nil
}

// Update writes the editable columns. total_earned is only changed by Credit.
func (p *PostgresStore) Update(ctx context.Context, link *shortener.Link) error {
	query := `
		UPDATE links
		SET original_url = $2, title = $3, password = $4, expired_at = $5,
			status = $6, admin_comment = $7, updated_at = $8
		WHERE code = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.OriginalURL,
		nullableString(link.Title),
		nullableString(link.Password),
		link.ExpiresAt,
		string(link.Status),
		nullableString(link.AdminComment),
		link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update link %s: %w", link.Code, err)
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrLinkNotFound
	}

	return nil
}

func (p *PostgresStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE code = $1)`, string(code)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("link exists %s: %w", code, err)
	}

	return exists, nil
}

func (p *PostgresStore) SaveView(ctx context.Context, view *shortener.View) error {
	query := `
		INSERT INTO views (link_id, ip_address, user_agent, referer, country, device, browser,
			is_unique, is_valid, earned_cents, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		view.LinkID,
		view.ClientIP,
		nullableString(view.UserAgent),
		nullableString(view.Referer),
		nullableString(view.Country),
		nullableString(view.Device),
		nullableString(view.Browser),
		view.IsUnique,
		view.IsValid,
		int64(view.Earned),
		nullableString(view.Note),
		view.CreatedAt,
	).Scan(&view.ID)
	if err != nil {
		return fmt.Errorf("save view for link %d: %w", view.LinkID, err)
	}

	return nil
}

func (p *PostgresStore) HasValidViewSince(ctx context.Context, linkID int64, ip string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM views
			WHERE link_id = $1 AND ip_address = $2 AND is_valid AND created_at >= $3
		)
	`

	var exists bool

	if err := p.pool.QueryRow(ctx, query, linkID, ip, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup prior view for link %d: %w", linkID, err)
	}

	return exists, nil
}

func (p *PostgresStore) Stats(ctx context.Context, linkID int64) (*shortener.Stats, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE is_unique),
			count(*) FILTER (WHERE is_valid),
			COALESCE(sum(earned_cents), 0)::bigint
		FROM views
		WHERE link_id = $1
	`

	var (
		stats  shortener.Stats
		earned int64
	)

	err := p.pool.QueryRow(ctx, query, linkID).Scan(
		&stats.TotalViews,
		&stats.UniqueViews,
		&stats.ValidViews,
		&earned,
	)
	if err != nil {
		return nil, fmt.Errorf("stats for link %d: %w", linkID, err)
	}

	stats.EarnedTotal = shortener.Money(earned)

	return &stats, nil
}

// Credit adds amount to the owner's balance and the link's total inside one transaction.
func (p *PostgresStore) Credit(ctx context.Context, userID, linkID int64, amount shortener.Money) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE links SET total_earned_cents = total_earned_cents + $1 WHERE id = $2 AND user_id = $3`,
			int64(amount), linkID, userID,
		)
		if err != nil {
			return fmt.Errorf("credit link %d: %w", linkID, err)
		}

		if tag.RowsAffected() != 1 {
			return fmt.Errorf("credit link %d: %w", linkID, shortener.ErrNotOwner)
		}

		tag, err = tx.Exec(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id = $2`,
			int64(amount), userID,
		)
		if err != nil {
			return fmt.Errorf("credit user %d: %w", userID, err)
		}

		if tag.RowsAffected() != 1 {
			return fmt.Errorf("credit user %d: %w", userID, shortener.ErrNotFound)
		}

		return nil
	})
}

// Balance returns the spendable balance of a user.
func (p *PostgresStore) Balance(ctx context.Context, userID int64) (shortener.Money, error) {
	var balance int64

	err := p.pool.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %d: %w", userID, shortener.ErrNotFound)
		}

		return 0, fmt.Errorf("balance for user %d: %w", userID, err)
	}

	return shortener.Money(balance), nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
