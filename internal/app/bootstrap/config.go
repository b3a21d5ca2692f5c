// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/ecahub/internal/app/system/auditlog"
	"github.com/dalemusser/ecahub/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	devSessionKey  = "dev-only-change-me-please-0123456789ABCDEF"
	devTokenSecret = "dev-only-token-secret-change-me-0123456789"
	devCSRFKey     = "dev-only-csrf-key-32-bytes-long!"
)

// appConfigKeys defines the configuration keys for ECAHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ECAHUB_MONGO_URI, ECAHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ecahub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ecahub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	{Name: "token_secret", Default: devTokenSecret, Desc: "Bearer token signing secret (32+ chars in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime"},

	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF authentication key (exactly 32 bytes)"},
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call /api (blank disables CORS)"},

	{Name: "superadmin_email", Default: "", Desc: "Email of the super-admin created on startup when absent"},
	{Name: "superadmin_password", Default: "", Desc: "Initial password for that super-admin"},
	{Name: "superadmin_name", Default: "Super Admin", Desc: "Display name for that super-admin"},

	{Name: "audit_auth", Default: auditlog.ModeAll, Desc: "Sign-in audit destination: all, db, log or off"},
	{Name: "event_completion_schedule", Default: tasks.DefaultEventCompletionSchedule, Desc: "Cron schedule (UTC) for completing past events"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document database work"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for background sweeps"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (ECAHUB_* for app keys) and command-line flags
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ECAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	tokenTTL := appValues.Duration("token_ttl", 24*time.Hour)
	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", tokenTTL),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    tokenTTL,

		CSRFKey:            appValues.String("csrf_key"),
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),
		SuperAdminName:     appValues.String("superadmin_name"),

		AuditAuth:               appValues.String("audit_auth"),
		EventCompletionSchedule: appValues.String("event_completion_schedule"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// It checks the MongoDB URI format, key lengths and the job schedule so
// misconfiguration fails at startup rather than on the first request. In
// prod the development defaults for secrets are refused.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env == "prod", appCfg)
}

func validateApp(prod bool, appCfg AppConfig) error {
	var errs []error
	if len(appCfg.TokenSecret) < 32 {
		errs = append(errs, errors.New("token_secret must be at least 32 characters"))
	}
	if len(appCfg.CSRFKey) != 32 {
		errs = append(errs, fmt.Errorf("csrf_key must be exactly 32 bytes (got %d)", len(appCfg.CSRFKey)))
	}
	if appCfg.SessionKey == "" {
		errs = append(errs, errors.New("session_key is required"))
	}
	if prod {
		if appCfg.SessionKey == devSessionKey || appCfg.TokenSecret == devTokenSecret || appCfg.CSRFKey == devCSRFKey {
			errs = append(errs, errors.New("development secrets are not allowed in prod"))
		}
	}
	if (appCfg.SuperAdminEmail == "") != (appCfg.SuperAdminPassword == "") {
		errs = append(errs, errors.New("superadmin_email and superadmin_password must be set together"))
	}
	if !auditlog.ValidMode(appCfg.AuditAuth) {
		errs = append(errs, fmt.Errorf("audit_auth must be all, db, log or off (got %q)", appCfg.AuditAuth))
	}
	if _, err := cron.ParseStandard(appCfg.EventCompletionSchedule); err != nil {
		errs = append(errs, fmt.Errorf("event_completion_schedule: %w", err))
	}
	return errors.Join(errs...)
}
