package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/paylink/internal/redemption"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/token"
	"go.uber.org/zap"
)

// LinkService creates, edits and reports on links.
type LinkService interface {
	Create(ctx context.Context, in shortener.CreateInput) (*shortener.Link, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
	Update(ctx context.Context, code shortener.Code, userID int64, in shortener.UpdateInput) (*shortener.Link, error)
	Moderate(ctx context.Context, code shortener.Code, in shortener.ModerateInput) (*shortener.Link, error)
	Stats(ctx context.Context, code shortener.Code, userID int64) (*shortener.Stats, error)
}

// TokenIssuer issues interstitial redemption tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, code shortener.Code, clientIP, userAgent string) (*token.Ticket, error)
}

// Redeemer validates a redemption attempt.
type Redeemer interface {
	Redeem(ctx context.Context, req redemption.Request) (*redemption.Result, error)
}

// LinkEvents is notified of newly created links.
type LinkEvents interface {
	LinkCreated(ctx context.Context, link *shortener.Link, clientIP, userAgent string)
}

// LinkHandler handles link operations.
type LinkHandler struct {
	links    LinkService
	issuer   TokenIssuer
	redeemer Redeemer
	events   LinkEvents
	baseURL  string
	logger   *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	links LinkService,
	issuer TokenIssuer,
	redeemer Redeemer,
	events LinkEvents,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		links:    links,
		issuer:   issuer,
		redeemer: redeemer,
		events:   events,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	in := shortener.CreateInput{
		OriginalURL: req.Body.OriginalURL,
		Alias:       req.Body.Alias,
		Title:       req.Body.Title,
		Password:    req.Body.Password,
		ExpiresAt:   req.Body.ExpiredAt,
	}

	if viewer, ok := ViewerFromContext(ctx); ok {
		in.OwnerID = &viewer.UserID
	}

	link, err := h.links.Create(ctx, in)
	if err != nil {
		h.logFailure("failed to create link", err)

		return nil, toHTTPError(err)
	}

	meta := RequestMetaFromContext(ctx)
	h.events.LinkCreated(ctx, link, meta.ClientIP, meta.UserAgent)

	shortURL := h.shortURL(link.Code)

	resp := &CreateLinkResponse{}
	resp.Headers.Location = shortURL
	resp.Body.Code = string(link.Code)
	resp.Body.ShortURL = shortURL
	resp.Body.EarnPerClick = link.EarnPerClick.Float64()
	resp.Body.IsGuest = link.IsGuest()
	resp.Body.UserID = link.OwnerID
	resp.Body.Message = "Short link created."

	if link.IsGuest() {
		resp.Body.Message = "Short link created as guest. Sign in to earn from views."
	}

	return resp, nil
}

func (h *LinkHandler) CheckAlias(ctx context.Context, req *CheckAliasRequest) (*CheckAliasResponse, error) {
	exists, err := h.links.AliasExists(ctx, req.Alias)
	if err != nil {
		h.logFailure("failed to check alias", err)

		return nil, toHTTPError(err)
	}

	resp := &CheckAliasResponse{}
	resp.Body.Exists = exists

	return resp, nil
}

// ShowLink issues a redemption token for the interstitial page.
func (h *LinkHandler) ShowLink(ctx context.Context, req *ShowLinkRequest) (*ShowLinkResponse, error) {
	meta := RequestMetaFromContext(ctx)

	ticket, err := h.issuer.Issue(ctx, shortener.Code(req.Code), meta.ClientIP, meta.UserAgent)
	if err != nil {
		h.logFailure("failed to issue token", err, zap.String("code", req.Code))

		return nil, toHTTPError(err)
	}

	resp := &ShowLinkResponse{}
	resp.Body.Token = ticket.Token
	resp.Body.WaitTime = int(ticket.Wait / time.Second)
	resp.Body.Ads = ticket.Ads
	resp.Body.PasswordRequired = ticket.PasswordRequired
	resp.Body.Message = ticket.Message

	return resp, nil
}

// ContinueLink redeems a token and returns the destination.
func (h *LinkHandler) ContinueLink(ctx context.Context, req *ContinueLinkRequest) (*ContinueLinkResponse, error) {
	meta := RequestMetaFromContext(ctx)

	r := redemption.Request{
		Code:      shortener.Code(req.Code),
		Token:     req.Body.Token,
		Password:  req.Body.Password,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
	}

	if viewer, ok := ViewerFromContext(ctx); ok {
		r.ViewerID = &viewer.UserID
	}

	result, err := h.redeemer.Redeem(ctx, r)
	if err != nil {
		h.logFailure("redemption rejected", err, zap.String("code", req.Code))

		return nil, toHTTPError(err)
	}

	resp := &ContinueLinkResponse{}
	resp.Body.OriginalURL = result.OriginalURL
	resp.Body.IsGuestLink = result.IsGuestLink
	resp.Body.Earned = result.Earned.Float64()
	resp.Body.Message = result.Message

	return resp, nil
}

func (h *LinkHandler) Stats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	viewer, ok := ViewerFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	stats, err := h.links.Stats(ctx, shortener.Code(req.Code), viewer.UserID)
	if err != nil {
		h.logFailure("failed to load stats", err, zap.String("code", req.Code))

		return nil, toHTTPError(err)
	}

	resp := &StatsResponse{}
	resp.Body.TotalViews = stats.TotalViews
	resp.Body.UniqueViews = stats.UniqueViews
	resp.Body.ValidViews = stats.ValidViews
	resp.Body.EarnedTotal = stats.EarnedTotal.Float64()

	return resp, nil
}

func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*LinkResponse, error) {
	viewer, ok := ViewerFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	link, err := h.links.Update(ctx, shortener.Code(req.Code), viewer.UserID, shortener.UpdateInput{
		OriginalURL: req.Body.OriginalURL,
		Title:       req.Body.Title,
		Password:    req.Body.Password,
		ExpiresAt:   req.Body.ExpiredAt,
		ClearExpiry: req.Body.ClearExpiry,
	})
	if err != nil {
		h.logFailure("failed to update link", err, zap.String("code", req.Code))

		return nil, toHTTPError(err)
	}

	return h.linkResponse(link), nil
}

func (h *LinkHandler) ModerateLink(ctx context.Context, req *ModerateLinkRequest) (*LinkResponse, error) {
	viewer, ok := ViewerFromContext(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	if !viewer.IsAdmin() {
		return nil, toHTTPError(shortener.NewError(shortener.ErrForbidden, "Admin role required."))
	}

	in := shortener.ModerateInput{AdminComment: req.Body.AdminComment}

	if req.Body.Status != nil {
		status := shortener.Status(*req.Body.Status)
		in.Status = &status
	}

	link, err := h.links.Moderate(ctx, shortener.Code(req.Code), in)
	if err != nil {
		h.logFailure("failed to moderate link", err, zap.String("code", req.Code))

		return nil, toHTTPError(err)
	}

	h.logger.Info("link moderated",
		zap.String("code", req.Code),
		zap.String("status", string(link.Status)),
		zap.Int64("admin_id", viewer.UserID),
	)

	return h.linkResponse(link), nil
}

func (h *LinkHandler) shortURL(code shortener.Code) string {
	return fmt.Sprintf("%s/%s", h.baseURL, code)
}

func (h *LinkHandler) linkResponse(link *shortener.Link) *LinkResponse {
	return &LinkResponse{Body: LinkBody{
		Code:         string(link.Code),
		ShortURL:     h.shortURL(link.Code),
		OriginalURL:  link.OriginalURL,
		Title:        link.Title,
		HasPassword:  link.Password != "",
		ExpiredAt:    link.ExpiresAt,
		Status:       string(link.Status),
		AdminComment: link.AdminComment,
		UserID:       link.OwnerID,
		EarnPerClick: link.EarnPerClick.Float64(),
		TotalEarned:  link.TotalEarned.Float64(),
		CreatedAt:    link.CreatedAt,
		UpdatedAt:    link.UpdatedAt,
	}}
}

// logFailure logs infrastructure faults as errors and expected rejections at debug.
func (h *LinkHandler) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))

	var reason *shortener.Error
	if errors.As(err, &reason) && !errors.Is(err, shortener.ErrInternal) {
		h.logger.Debug(msg, fields...)

		return
	}

	h.logger.Error(msg, fields...)
}
