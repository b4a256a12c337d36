package testutil

import (
	"net/http"
	"time"

	"capela/pkg/requestcontext"
)

// WithAuth returns the request with an authenticated user id and role in its
// context, the same shape the auth middleware produces for valid tokens.
func WithAuth(req *http.Request, userID, role string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock to a fixed instant.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
