package shortener

import (
	"context"
	"errors"
	"time"
)

// MaxCodeAttempts bounds code generation retries on collision.
const MaxCodeAttempts = 5

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// CreateInput describes a new link.
type CreateInput struct {
	OriginalURL string
	Alias       string
	Title       string
	Password    string
	ExpiresAt   *time.Time
	OwnerID     *int64
}

// UpdateInput holds owner edits. Nil fields are left unchanged;
// an empty Password clears the password and ClearExpiry removes the expiry.
type UpdateInput struct {
	OriginalURL *string
	Title       *string
	Password    *string
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// ModerateInput holds admin moderation changes.
type ModerateInput struct {
	Status       *Status
	AdminComment *string
}

// Service creates, edits and reports on links.
type Service struct {
	repo         Repository
	stats        StatsReader
	generateCode CodeGenerator
	earnPerClick Money
	now          func() time.Time
}

// NewService creates a link service. earnPerClick is the rate given to owned links.
func NewService(repo Repository, stats StatsReader, generator CodeGenerator, earnPerClick Money) *Service {
	return &Service{
		repo:         repo,
		stats:        stats,
		generateCode: generator,
		earnPerClick: earnPerClick,
		now:          time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

// Create validates the input and stores a new link. Guest links never earn.
// Generated codes are retried up to MaxCodeAttempts times on collision;
// a taken alias fails immediately.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Link, error) {
	originalURL, err := ValidateURL(in.OriginalURL)
	if err != nil {
		return nil, err
	}

	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidExpiresAt
	}

	link := &Link{
		OriginalURL: originalURL,
		Title:       in.Title,
		Password:    in.Password,
		ExpiresAt:   in.ExpiresAt,
		Status:      StatusActive,
		OwnerID:     in.OwnerID,
	}

	if in.OwnerID != nil {
		link.EarnPerClick = s.earnPerClick
	}

	if in.Alias != "" {
		return s.createWithAlias(ctx, link, in.Alias)
	}

	for range MaxCodeAttempts {
		link.Code = Code(s.generateCode())
		s.stamp(link)

		err = s.repo.Create(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
	}

	return nil, ErrCodesExhausted
}

func (s *Service) createWithAlias(ctx context.Context, link *Link, alias string) (*Link, error) {
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, Code(alias))
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, ErrAliasTaken
	}

	link.Code = Code(alias)
	s.stamp(link)

	if err := s.repo.Create(ctx, link); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrAliasTaken
		}

		return nil, err
	}

	return link, nil
}

// AliasExists reports whether alias is already in use. The answer may be stale.
func (s *Service) AliasExists(ctx context.Context, alias string) (bool, error) {
	if err := ValidateAlias(alias); err != nil {
		return false, err
	}

	return s.repo.Exists(ctx, Code(alias))
}

// Update applies owner edits to a link.
func (s *Service) Update(ctx context.Context, code Code, userID int64, in UpdateInput) (*Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.OwnerID == nil || *link.OwnerID != userID {
		return nil, ErrNotOwner
	}

	if in.OriginalURL != nil {
		originalURL, err := ValidateURL(*in.OriginalURL)
		if err != nil {
			return nil, err
		}

		link.OriginalURL = originalURL
	}

	if in.Title != nil {
		link.Title = *in.Title
	}

	if in.Password != nil {
		link.Password = *in.Password
	}

	switch {
	case in.ClearExpiry && in.ExpiresAt != nil:
		return nil, ErrExpiryConflict
	case in.ClearExpiry:
		link.ExpiresAt = nil
	case in.ExpiresAt != nil:
		if !in.ExpiresAt.After(s.now()) {
			return nil, ErrInvalidExpiresAt
		}

		link.ExpiresAt = in.ExpiresAt
	}

	link.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Moderate applies an admin status change or comment.
func (s *Service) Moderate(ctx context.Context, code Code, in ModerateInput) (*Link, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}

		link.Status = *in.Status
	}

	if in.AdminComment != nil {
		link.AdminComment = *in.AdminComment
	}

	link.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Stats returns view aggregates for a link owned by userID.
func (s *Service) Stats(ctx context.Context, code Code, userID int64) (*Stats, error) {
	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.OwnerID == nil || *link.OwnerID != userID {
		return nil, ErrNotOwner
	}

	return s.stats.Stats(ctx, link.ID)
}

func (s *Service) stamp(link *Link) {
	now := s.now()
	link.CreatedAt = now
	link.UpdatedAt = now
}
