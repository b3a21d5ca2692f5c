// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration (ports, TLS, log level).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: ecahub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; matches the token TTL by default

	// Bearer token configuration
	TokenSecret string        // HS256 signing secret
	TokenTTL    time.Duration // Token lifetime

	// CSRF protection for HTML forms
	CSRFKey string // exactly 32 bytes

	// Allowed origins for cross-site /api calls (comma-separated; blank disables CORS)
	CORSAllowedOrigins []string

	// Super-admin bootstrap: created on startup when absent.
	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string

	// Sign-in audit trail destination: all | db | log | off
	AuditAuth string

	// Background jobs
	EventCompletionSchedule string // cron expression, UTC

	// Database deadlines (zero keeps the timeouts package defaults)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
