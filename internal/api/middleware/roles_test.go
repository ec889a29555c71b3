package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withPrincipal(req *http.Request, user *domain.User) *http.Request {
	return req.WithContext(shared.WithPrincipal(req.Context(), user))
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	guard := NewGuard(&stubUserStore{}, testErrorWriter())

	t.Run("allowed role passes", func(t *testing.T) {
		t.Parallel()
		req := withPrincipal(httptest.NewRequest(http.MethodPatch, "/aircrafts/approve-listing/x", nil),
			&domain.User{ID: uuid.New(), Role: domain.RoleAdmin})
		rec := httptest.NewRecorder()

		guard.RequireRole(domain.RoleAdmin)(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role rejected", func(t *testing.T) {
		t.Parallel()
		req := withPrincipal(httptest.NewRequest(http.MethodPatch, "/aircrafts/approve-listing/x", nil),
			&domain.User{ID: uuid.New(), Role: domain.RoleSeller})
		rec := httptest.NewRecorder()

		guard.RequireRole(domain.RoleAdmin)(forbiddenHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "permission")
	})

	t.Run("missing principal rejected", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPatch, "/aircrafts/approve-listing/x", nil)
		rec := httptest.NewRecorder()

		guard.RequireRole(domain.RoleAdmin)(forbiddenHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func routeWithID(id string, req *http.Request) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRequireListingOwner(t *testing.T) {
	t.Parallel()

	owned := uuid.New()
	other := uuid.New()
	seller := &domain.User{ID: uuid.New(), Role: domain.RoleSeller, Active: true, EmailVerified: true}

	t.Run("owner passes", func(t *testing.T) {
		t.Parallel()
		guard := NewGuard(&stubUserStore{listingIDs: []uuid.UUID{owned}}, testErrorWriter())

		req := withPrincipal(httptest.NewRequest(http.MethodDelete, "/aircrafts/"+owned.String(), nil), seller)
		req = routeWithID(owned.String(), req)
		rec := httptest.NewRecorder()

		guard.RequireListingOwner(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-owner rejected even when the listing exists", func(t *testing.T) {
		t.Parallel()
		guard := NewGuard(&stubUserStore{listingIDs: []uuid.UUID{owned}}, testErrorWriter())

		req := withPrincipal(httptest.NewRequest(http.MethodDelete, "/aircrafts/"+other.String(), nil), seller)
		req = routeWithID(other.String(), req)
		rec := httptest.NewRecorder()

		guard.RequireListingOwner(forbiddenHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed id rejected", func(t *testing.T) {
		t.Parallel()
		guard := NewGuard(&stubUserStore{}, testErrorWriter())

		req := withPrincipal(httptest.NewRequest(http.MethodDelete, "/aircrafts/banana", nil), seller)
		req = routeWithID("banana", req)
		rec := httptest.NewRecorder()

		guard.RequireListingOwner(forbiddenHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "banana")
	})
}
