package waitlist

import (
	"crypto/subtle"
	"strings"

	"github.com/akeren/aimaker-waitlist/config/router"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
)

// AdminTokenFromRequest reads "Authorization: Bearer <token>", falling back to
// the token query parameter so the listing page can be opened from a browser.
func AdminTokenFromRequest(ctx *router.RequestContext) string {
	if header := ctx.GetHeader("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ctx.Query("token")
}

// IsAuthorized always passes when no admin token is configured.
func IsAuthorized(ctx *router.RequestContext, adminToken string) bool {
	if adminToken == "" {
		return true
	}
	supplied := AdminTokenFromRequest(ctx)
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(adminToken)) == 1
}

// RequireAdminToken rejects listing requests that do not carry the admin token.
func RequireAdminToken(adminToken string) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		if IsAuthorized(ctx, adminToken) {
			ctx.Next()
			return
		}

		router.GetLogger(ctx).Warn("Rejected unauthenticated waitlist listing request", "path", ctx.Request.URL.Path)
		err := apperrors.NewUnauthorizedError(MessageUnauthorized, nil)
		ctx.AbortWithStatusJSON(apperrors.HTTPStatusCode(err), errorResult(err, false).ToJSON())
	}
}
