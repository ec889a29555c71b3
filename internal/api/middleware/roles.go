package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skydeals/skydeals-api/internal/api"
	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/store"
)

// Guard holds the role and ownership predicates applied after
// authentication.
type Guard struct {
	users     store.UserStore
	errWriter *api.ErrorWriter
}

// NewGuard creates the access-control guard.
func NewGuard(users store.UserStore, ew *api.ErrorWriter) *Guard {
	return &Guard{users: users, errWriter: ew}
}

// RequireRole rejects with 403 unless the principal's role is in the
// allowed set. Must run after Authenticate.
func (g *Guard) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFrom(r.Context())
			if !ok {
				g.errWriter.WriteError(w, r,
					api.NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access"))
				return
			}
			if !allowed[principal.Role] {
				g.errWriter.WriteError(w, r,
					api.NewError(http.StatusForbidden, "You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireListingOwner rejects with 403 unless the listing named by the
// route's {id} parameter belongs to the principal. The check consults the
// principal's own listing-id set, so a non-owner gets 403 even for a
// listing that exists. Must run after Authenticate.
func (g *Guard) RequireListingOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := shared.PrincipalFrom(r.Context())
		if !ok {
			g.errWriter.WriteError(w, r,
				api.NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access"))
			return
		}

		raw := chi.URLParam(r, "id")
		id, err := uuid.Parse(raw)
		if err != nil {
			g.errWriter.WriteError(w, r, api.InvalidIDError("id", raw))
			return
		}

		owned, err := g.users.ListingIDs(r.Context(), principal.ID)
		if err != nil {
			g.errWriter.WriteError(w, r, err)
			return
		}
		if !containsID(owned, id) {
			g.errWriter.WriteError(w, r,
				api.NewError(http.StatusForbidden, "You can only manage your own listings"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
