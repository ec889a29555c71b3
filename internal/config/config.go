package config

// Config holds all application configuration.
// It is constructed once at startup by Load and passed by reference into
// every component that needs it; no component reads ambient env state.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Media    MediaConfig    `mapstructure:"media"`
	Mail     MailConfig     `mapstructure:"mail"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Env      string `mapstructure:"env" validate:"required,oneof=development production"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// FrontendURL is where OAuth callbacks and password-reset links send
	// the browser back to.
	FrontendURL string `mapstructure:"frontend_url" validate:"omitempty,url"`

	// RateLimitPerMinute bounds requests per client IP on /api routes.
	// Zero disables rate limiting (useful in development and tests).
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	CookieDomain         string `mapstructure:"cookie_domain"`
}

// MediaConfig configures the S3-compatible media host.
type MediaConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"use_ssl"`

	// PublicBaseURL is prepended to object keys to build the durable URL
	// returned to clients. Defaults to the endpoint.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// MailConfig configures the SMTP relay for transactional email.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"omitempty,email"`
}

// OAuthConfig configures the Google consent flow.
type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url" validate:"omitempty,url"`
}

// IsProduction reports whether the server runs with production error
// rendering (terse mode).
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}
