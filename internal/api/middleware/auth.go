package middleware

import (
	"net/http"

	"github.com/skydeals/skydeals-api/internal/api"
	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/service/auth"
	"github.com/skydeals/skydeals-api/internal/store"
)

// AuthMiddleware is the authentication guard: it resolves the auth cookie
// into a principal and attaches it to the request context.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      store.UserStore
	errWriter  *api.ErrorWriter
}

// NewAuthMiddleware creates the authentication guard.
func NewAuthMiddleware(jwtService auth.JWTService, users store.UserStore, ew *api.ErrorWriter) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		errWriter:  ew,
	}
}

// Authenticate validates the auth cookie, checks the referenced account is
// still usable, and attaches the principal to the context. Failures:
// 401 when the cookie is absent, invalid or expired, when the account no
// longer exists, or when the password changed after the token was issued;
// 403 when the account is deactivated or the email is unverified.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		cookie, err := r.Cookie(api.AuthCookieName)
		if err != nil || cookie.Value == "" {
			m.errWriter.WriteError(w, r,
				api.NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access"))
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), cookie.Value)
		if err != nil {
			m.errWriter.WriteError(w, r, err)
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			m.errWriter.WriteError(w, r,
				api.NewError(http.StatusUnauthorized, "The user belonging to this token no longer exists"))
			return
		}

		if user.PasswordChangedAfter(claims.IssuedAt) {
			log.Debug("stale token after password change", "user_id", user.ID)
			m.errWriter.WriteError(w, r,
				api.NewError(http.StatusUnauthorized, "Password was recently changed. Please log in again"))
			return
		}

		if !user.Active {
			m.errWriter.WriteError(w, r,
				api.NewError(http.StatusForbidden, "This account has been deactivated"))
			return
		}

		if !user.EmailVerified {
			m.errWriter.WriteError(w, r,
				api.NewError(http.StatusForbidden, "Please verify your email address to perform this action"))
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithPrincipal(r.Context(), user)))
	})
}
