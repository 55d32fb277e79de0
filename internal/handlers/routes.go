package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/paylink/internal/ratelimit"
)

// CreateLinkLimits caps link creation per client. Creation is the only
// endpoint that writes durable rows on every request.
var CreateLinkLimits = []ratelimit.LimitConfig{
	{Window: time.Minute, Max: 10},
	{Window: time.Hour, Max: 100},
	{Window: 24 * time.Hour, Max: 500},
}

// RegisterRoutes registers all link routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/links",
		Summary:       "Create short link",
		Description:   "Creates a short link. Authenticated callers own the link and earn per valid view.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata:      ratelimit.Custom(CreateLinkLimits...).Metadata(),
	}, h.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "check-alias",
		Method:      http.MethodGet,
		Path:        "/check-alias/{alias}",
		Summary:     "Check alias availability",
		Tags:        []string{"Links"},
	}, h.CheckAlias)

	// Issue and redeem also carry their own per (ip, code) limits.
	huma.Register(api, huma.Operation{
		OperationID: "show-link",
		Method:      http.MethodGet,
		Path:        "/links/{code}",
		Summary:     "Show interstitial",
		Description: "Issues a single-use redemption token bound to the caller.",
		Tags:        []string{"Redirect"},
		Metadata:    ratelimit.InScope(ratelimit.ScopeRedirect).Metadata(),
	}, h.ShowLink)

	huma.Register(api, huma.Operation{
		OperationID: "continue-link",
		Method:      http.MethodPost,
		Path:        "/links/{code}/continue",
		Summary:     "Redeem token",
		Description: "Validates the token and returns the destination URL.",
		Tags:        []string{"Redirect"},
		Metadata:    ratelimit.InScope(ratelimit.ScopeRedirect).Metadata(),
	}, h.ContinueLink)

	huma.Register(api, huma.Operation{
		OperationID: "link-stats",
		Method:      http.MethodGet,
		Path:        "/links/{code}/stats",
		Summary:     "Link statistics",
		Tags:        []string{"Links"},
	}, h.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "update-link",
		Method:      http.MethodPatch,
		Path:        "/links/{code}",
		Summary:     "Edit link",
		Tags:        []string{"Links"},
	}, h.UpdateLink)

	huma.Register(api, huma.Operation{
		OperationID: "moderate-link",
		Method:      http.MethodPatch,
		Path:        "/admin/links/{code}",
		Summary:     "Moderate link",
		Tags:        []string{"Admin"},
		Metadata:    ratelimit.InScope(ratelimit.ScopeAdmin).Metadata(),
	}, h.ModerateLink)
}
