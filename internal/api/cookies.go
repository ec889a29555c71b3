package api

import (
	"net/http"
	"time"

	"github.com/skydeals/skydeals-api/internal/config"
)

// AuthCookieName is the http-only cookie carrying the session token.
const AuthCookieName = "jwt"

// CookieIssuer writes and clears the auth cookie. Production cookies are
// Secure with SameSite=None so the browser sends them from the separately
// hosted frontend; development keeps Lax over plain HTTP.
type CookieIssuer struct {
	domain   string
	lifetime time.Duration
	secure   bool
}

// NewCookieIssuer creates a CookieIssuer from configuration.
func NewCookieIssuer(server config.ServerConfig, auth config.AuthConfig) *CookieIssuer {
	return &CookieIssuer{
		domain:   auth.CookieDomain,
		lifetime: time.Duration(auth.TokenLifetimeMinutes) * time.Minute,
		secure:   server.IsProduction(),
	}
}

// Issue sets the auth cookie with the signed token.
func (c *CookieIssuer) Issue(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.build(token, c.lifetime))
}

// Clear expires the auth cookie immediately.
func (c *CookieIssuer) Clear(w http.ResponseWriter) {
	cookie := c.build("", -time.Hour)
	http.SetCookie(w, cookie)
}

func (c *CookieIssuer) build(value string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
	}
}
