package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/store"
)

// UserHandler serves profile and account endpoints.
type UserHandler struct {
	users     store.UserStore
	aircrafts store.AircraftStore
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users store.UserStore, aircrafts store.AircraftStore) *UserHandler {
	return &UserHandler{users: users, aircrafts: aircrafts}
}

// GetMe handles GET /users/get-me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) error {
	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		return NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access")
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(principal))
	return nil
}

// UpdateMe handles PATCH /users/updateMe. Empty fields keep their current
// values; password changes go through the dedicated endpoint.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) error {
	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		return NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access")
	}

	var req UpdateMeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	if req.Name != "" {
		principal.Name = req.Name
	}
	if req.Phone != "" {
		principal.Phone = req.Phone
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != principal.Email {
		// A changed address must be re-verified before the account can
		// act on listings again.
		principal.Email = email
		principal.EmailVerified = false
	}

	if err := h.users.Update(r.Context(), principal); err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(principal))
	return nil
}

// GetMyAds handles GET /users/get-my-ads: the caller's own listings,
// including submissions still awaiting moderation so sellers can track
// their status.
func (h *UserHandler) GetMyAds(w http.ResponseWriter, r *http.Request) error {
	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		return NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access")
	}

	ads, err := h.aircrafts.ListByOwner(r.Context(), principal.ID, false)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(ads))
	return nil
}

// GetByID handles GET /users/{id} (admin only).
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return InvalidIDError("id", raw)
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(user))
	return nil
}
