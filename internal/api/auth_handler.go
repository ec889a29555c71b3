package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/config"
	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/platform/mail"
	"github.com/skydeals/skydeals-api/internal/platform/metrics"
	"github.com/skydeals/skydeals-api/internal/service/auth"
	"github.com/skydeals/skydeals-api/internal/service/listing"
	"github.com/skydeals/skydeals-api/internal/store"
)

// stateCookieName carries the OAuth CSRF state between redirect and
// callback.
const stateCookieName = "oauth_state"

// AuthHandler handles signup, login, verification and password flows.
type AuthHandler struct {
	users      store.UserStore
	jwtService auth.JWTService
	verifier   auth.PasswordVerifier
	google     *auth.GoogleOAuth
	mailer     mail.Mailer
	notifier   listing.Notifier
	cookies    *CookieIssuer
	server     config.ServerConfig
}

// NewAuthHandler creates an AuthHandler with the given dependencies. The
// mailer is used for password-reset delivery, where failures must reach
// the caller; the notifier queues everything else.
func NewAuthHandler(
	users store.UserStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	google *auth.GoogleOAuth,
	mailer mail.Mailer,
	notifier listing.Notifier,
	cookies *CookieIssuer,
	server config.ServerConfig,
) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		verifier:   verifier,
		google:     google,
		mailer:     mailer,
		notifier:   notifier,
		cookies:    cookies,
		server:     server,
	}
}

// Signup handles POST /users/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) error {
	var req SignupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	user, err := domain.NewUser(req.Email, req.Name, req.Phone, req.Password, req.Role)
	if err != nil {
		return err
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", h.server.FrontendURL, user.VerificationToken)
	if msg, err := mail.Welcome(user.Email, user.Name, verifyURL); err == nil {
		h.notifier.Notify(r.Context(), msg)
		metrics.MailSent.WithLabelValues("welcome", "queued").Inc()
	}

	if err := h.logIn(w, r, user); err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, shared.Success(user))
	return nil
}

// Login handles POST /users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return NewError(http.StatusUnauthorized, "Incorrect email or password")
		}
		return err
	}
	if user.HashedPassword == "" {
		// Google-provisioned accounts have no password to check.
		return NewError(http.StatusUnauthorized, "Incorrect email or password")
	}
	if err := h.verifier.Compare(user.HashedPassword, req.Password); err != nil {
		return NewError(http.StatusUnauthorized, "Incorrect email or password")
	}
	if !user.Active {
		return NewError(http.StatusForbidden, "This account has been deactivated")
	}

	if err := h.logIn(w, r, user); err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(user))
	return nil
}

// Logout handles POST /users/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	h.cookies.Clear(w)
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(nil))
	return nil
}

// Verify handles GET /users/verify?token=.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		return NewError(http.StatusBadRequest, "Verification token is required")
	}

	user, err := h.users.GetByVerificationToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return NewError(http.StatusBadRequest, "Verification token is invalid")
		}
		return err
	}

	user.EmailVerified = true
	user.VerificationToken = ""
	if err := h.users.Update(r.Context(), user); err != nil {
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(user))
	return nil
}

// ForgotPassword handles POST /users/forgot-password. Unlike the
// notification mails, a reset mail that fails to send surfaces as an
// error and the stored token is discarded so a later retry starts clean.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req ForgotPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return NewError(http.StatusNotFound, "There is no user with that email address")
		}
		return err
	}

	rawToken := user.NewResetToken()
	if err := h.users.Update(r.Context(), user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", h.server.FrontendURL, rawToken)
	msg, err := mail.PasswordReset(user.Email, user.Name, resetURL)
	if err == nil {
		err = h.mailer.Send(r.Context(), msg)
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("password reset mail failed",
			"error", err,
			"user_id", user.ID)
		metrics.MailSent.WithLabelValues("password_reset", "error").Inc()

		user.ClearResetToken()
		if updateErr := h.users.Update(r.Context(), user); updateErr != nil {
			return updateErr
		}
		return NewError(http.StatusInternalServerError,
			"There was an error sending the email. Try again later")
	}
	metrics.MailSent.WithLabelValues("password_reset", "ok").Inc()

	shared.RespondWithJSON(w, r, http.StatusOK,
		shared.Success(map[string]string{"message": "Token sent to email"}))
	return nil
}

// ResetPassword handles PATCH /users/reset-password/{token}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	rawToken := chi.URLParam(r, "token")

	user, err := h.users.GetByResetToken(r.Context(), domain.HashResetToken(rawToken))
	if err != nil || !user.ResetTokenValid(time.Now().UTC()) {
		return NewError(http.StatusBadRequest, "Token is invalid or has expired")
	}

	var req ResetPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	user.Password = req.Password
	user.ClearResetToken()
	if err := h.users.Update(r.Context(), user); err != nil {
		return err
	}

	if err := h.logIn(w, r, user); err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(user))
	return nil
}

// UpdatePassword handles PATCH /users/update-password for a logged-in
// user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	principal, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		return NewError(http.StatusUnauthorized, "You are not logged in. Please log in to get access")
	}

	var req UpdatePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request format")
	}
	if err := shared.ValidateRequest(req); err != nil {
		return err
	}

	if err := h.verifier.Compare(principal.HashedPassword, req.CurrentPassword); err != nil {
		return NewError(http.StatusUnauthorized, "Your current password is wrong")
	}

	principal.Password = req.NewPassword
	if err := h.users.Update(r.Context(), principal); err != nil {
		return err
	}

	if err := h.logIn(w, r, principal); err != nil {
		return err
	}
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Success(principal))
	return nil
}

// GoogleLogin handles GET /auth/google: redirect to the consent page.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) error {
	state := randomState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
	return nil
}

// GoogleCallback handles GET /auth/google/callback: upsert the account
// keyed by email, then log the browser in and bounce to the frontend.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) error {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		return NewError(http.StatusUnauthorized, "OAuth state mismatch")
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		return NewError(http.StatusUnauthorized, "Authorization code missing")
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		logger.FromContext(r.Context()).Error("google exchange failed", "error", err)
		return NewError(http.StatusUnauthorized, "Google sign-in failed")
	}

	user, err := h.users.GetByEmail(r.Context(), profile.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = domain.NewGoogleUser(profile.Email, profile.Name)
		if err != nil {
			return err
		}
		if err := h.users.Create(r.Context(), user); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := h.logIn(w, r, user); err != nil {
		return err
	}
	http.Redirect(w, r, h.server.FrontendURL, http.StatusTemporaryRedirect)
	return nil
}

// logIn signs a token for the user and sets the auth cookie.
func (h *AuthHandler) logIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		return err
	}
	h.cookies.Issue(w, token)
	return nil
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
