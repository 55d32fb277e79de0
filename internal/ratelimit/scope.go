package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope names a group of operations that share policy limits.
type Scope string

const (
	// ScopeGlobal counts every request a client makes.
	ScopeGlobal Scope = "global"
	// ScopeRead covers lookups such as alias checks and stats.
	ScopeRead Scope = "read"
	// ScopeWrite covers owner mutations such as editing a link.
	ScopeWrite Scope = "write"
	// ScopeRedirect covers the visitor path: the interstitial and token
	// redemption.
	ScopeRedirect Scope = "redirect"
	// ScopeAdmin covers moderation.
	ScopeAdmin Scope = "admin"
)

// MetadataKey is the operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for one operation.
//
// Non-empty Limits replace the policy for the endpoint and Scope is then
// ignored. With neither set the scope follows the HTTP method.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// InScope counts the endpoint against scope instead of its method scope.
func InScope(scope Scope) EndpointConfig {
	return EndpointConfig{Scope: scope}
}

// Custom gives the endpoint its own limits, outside the policy.
func Custom(limits ...LimitConfig) EndpointConfig {
	return EndpointConfig{Limits: limits}
}

// Unlimited exempts the endpoint.
func Unlimited() EndpointConfig {
	return EndpointConfig{Disabled: true}
}

// Metadata returns operation metadata carrying the config.
func (c EndpointConfig) Metadata() map[string]any {
	return map[string]any{MetadataKey: c}
}

// ScopeResolver determines which scopes apply to a given request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver puts safe methods in ScopeRead and the rest in
// ScopeWrite, always alongside ScopeGlobal.
type MethodScopeResolver struct{}

// NewMethodScopeResolver creates a new method-based scope resolver.
func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

func (r *MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// OperationScopeResolver prefers the scope declared on the operation and
// falls back to the method.
type OperationScopeResolver struct {
	fallback *MethodScopeResolver
}

// NewOperationScopeResolver creates a new operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{
		fallback: NewMethodScopeResolver(),
	}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return r.fallback.Resolve(ctx)
}

// GetEndpointConfig returns the operation's EndpointConfig, or nil.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
