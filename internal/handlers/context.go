package handlers

import "context"

// RoleAdmin is the role allowed to moderate links.
const RoleAdmin = "admin"

type (
	requestMetaKey struct{}
	viewerKey      struct{}
)

// RequestMeta holds HTTP request metadata used for fingerprinting and analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referer   string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// Viewer is the authenticated caller of a request.
type Viewer struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the viewer may moderate links.
func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// ContextWithViewer adds the authenticated caller to context.
func ContextWithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFromContext returns the authenticated caller, if any.
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(Viewer)

	return v, ok
}
