package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeals/skydeals-api/internal/api/shared"
	"github.com/skydeals/skydeals-api/internal/config"
	"github.com/skydeals/skydeals-api/internal/domain"
	"github.com/skydeals/skydeals-api/internal/service/auth"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Env:         "production",
		FrontendURL: "https://skydeals.example.com",
	}
}

type authFixture struct {
	handler  *AuthHandler
	users    *fakeUserStore
	mailer   *stubMailer
	notifier *stubNotifier
	wrap     func(HandlerFunc) http.HandlerFunc
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	serverCfg := testServerConfig()
	authCfg := config.AuthConfig{
		JWTSecret:            "test-secret-thats-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	}

	jwtSvc, err := auth.NewJWTService(authCfg)
	require.NoError(t, err)

	users := newFakeUserStore()
	mailer := &stubMailer{}
	notifier := &stubNotifier{}
	ew := NewErrorWriter(serverCfg)

	handler := NewAuthHandler(
		users,
		jwtSvc,
		fakeVerifier{},
		auth.NewGoogleOAuth(config.OAuthConfig{}),
		mailer,
		notifier,
		NewCookieIssuer(serverCfg, authCfg),
		serverCfg,
	)
	return &authFixture{
		handler:  handler,
		users:    users,
		mailer:   mailer,
		notifier: notifier,
		wrap:     ew.Wrap,
	}
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == AuthCookieName {
			return c
		}
	}
	return nil
}

func seedUser(t *testing.T, fx *authFixture, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "Amelia", "5551234567", password, "")
	require.NoError(t, err)
	user.EmailVerified = true
	require.NoError(t, fx.users.Create(context.Background(), user))
	return user
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates seller, sets cookie, queues welcome mail", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		body := `{"name":"Amelia","email":"Pilot@Example.com","phone":"5551234567","password":"supersecret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Signup)(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		cookie := authCookie(t, rec)
		require.NotNil(t, cookie, "auth cookie must be set")
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

		body2 := decodeBody(t, rec)
		assert.Equal(t, "success", body2["status"])
		data := body2["data"].(map[string]any)
		assert.Equal(t, "pilot@example.com", data["email"])
		assert.Equal(t, domain.RoleSeller, data["role"])
		assert.NotContains(t, rec.Body.String(), "password")

		require.Len(t, fx.notifier.messages, 1)
		assert.Contains(t, fx.notifier.messages[0].Subject, "Welcome")
	})

	t.Run("admin role request downgraded to seller", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		body := `{"name":"Mallory","email":"m@example.com","password":"supersecret","role":"admin"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Signup)(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, domain.RoleSeller, data["role"])
	})

	t.Run("duplicate email echoes the value", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		seedUser(t, fx, "taken@example.com", "supersecret")

		body := `{"name":"Copy","email":"taken@example.com","password":"supersecret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Signup)(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		respBody := decodeBody(t, rec)
		assert.Equal(t, "fail", respBody["status"])
		assert.Contains(t, respBody["message"], "taken@example.com")
	})

	t.Run("validation failures joined", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		body := `{"name":"A","email":"not-an-email","password":"short"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Signup)(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		msg := decodeBody(t, rec)["message"].(string)
		assert.Contains(t, msg, ". ")
		assert.Contains(t, msg, "Email")
		assert.Contains(t, msg, "Password")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials set the cookie", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		seedUser(t, fx, "pilot@example.com", "supersecret")

		body := `{"email":"pilot@example.com","password":"supersecret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Login)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, authCookie(t, rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		seedUser(t, fx, "pilot@example.com", "supersecret")

		body := `{"email":"pilot@example.com","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Login)(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Incorrect email or password")
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		body := `{"email":"ghost@example.com","password":"whatever1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.Login)(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Incorrect email or password")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()

	fx.wrap(fx.handler.Logout)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := authCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)

	user, err := domain.NewUser("new@example.com", "Newbie", "", "supersecret", "")
	require.NoError(t, err)
	require.NoError(t, fx.users.Create(context.Background(), user))
	require.False(t, user.EmailVerified)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/verify?token="+user.VerificationToken, nil)
	rec := httptest.NewRecorder()

	fx.wrap(fx.handler.Verify)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, err := fx.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Empty(t, stored.VerificationToken)

	t.Run("bogus token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/verify?token=bogus", nil)
		rec := httptest.NewRecorder()
		fx.wrap(fx.handler.Verify)(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	t.Run("sends the reset mail with the raw token", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		user := seedUser(t, fx, "pilot@example.com", "supersecret")

		body := `{"email":"pilot@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/forgot-password", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.ForgotPassword)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, fx.mailer.sent, 1)
		assert.Contains(t, fx.mailer.sent[0].HTML, "/reset-password/")

		stored, err := fx.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordResetToken)
		// Only the hash is stored; the raw token lives in the email.
		assert.NotContains(t, fx.mailer.sent[0].HTML, stored.PasswordResetToken)
	})

	t.Run("mail failure clears the stored token and returns 500", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)
		user := seedUser(t, fx, "pilot@example.com", "supersecret")
		fx.mailer.err = assert.AnError

		body := `{"email":"pilot@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/forgot-password", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.ForgotPassword)(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "error sending the email")

		stored, err := fx.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PasswordResetToken)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		fx := newAuthFixture(t)

		body := `{"email":"ghost@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/forgot-password", strings.NewReader(body))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.ForgotPassword)(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)
	user := seedUser(t, fx, "pilot@example.com", "supersecret")

	// Issue a reset token the way ForgotPassword does.
	stored, err := fx.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	rawToken := stored.NewResetToken()
	require.NoError(t, fx.users.Update(context.Background(), stored))

	t.Run("valid token sets the new password and logs in", func(t *testing.T) {
		body := `{"password":"brand-new-password"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/reset-password/"+rawToken, strings.NewReader(body))
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("token", rawToken)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.ResetPassword)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, authCookie(t, rec))

		after, err := fx.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, fakeHash("brand-new-password"), after.HashedPassword)
		assert.Empty(t, after.PasswordResetToken)
	})

	t.Run("reused token rejected", func(t *testing.T) {
		body := `{"password":"another-password"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/reset-password/"+rawToken, strings.NewReader(body))
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("token", rawToken)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.ResetPassword)(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or has expired")
	})
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture(t)
	user := seedUser(t, fx, "pilot@example.com", "supersecret")

	stored, err := fx.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		body := `{"current_password":"nope","new_password":"brand-new-password"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-password", strings.NewReader(body))
		req = req.WithContext(shared.WithPrincipal(req.Context(), stored))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.UpdatePassword)(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct current password rotates credentials", func(t *testing.T) {
		body := `{"current_password":"supersecret","new_password":"brand-new-password"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-password", strings.NewReader(body))
		req = req.WithContext(shared.WithPrincipal(req.Context(), stored))
		rec := httptest.NewRecorder()

		fx.wrap(fx.handler.UpdatePassword)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, authCookie(t, rec))

		after, err := fx.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, fakeHash("brand-new-password"), after.HashedPassword)
	})
}
