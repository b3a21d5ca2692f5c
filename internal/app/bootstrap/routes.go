// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/ecahub/internal/app/features/auditlog"
	clubsfeature "github.com/dalemusser/ecahub/internal/app/features/clubs"
	dashboardfeature "github.com/dalemusser/ecahub/internal/app/features/dashboard"
	documentsfeature "github.com/dalemusser/ecahub/internal/app/features/documents"
	errorsfeature "github.com/dalemusser/ecahub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/ecahub/internal/app/features/events"
	healthfeature "github.com/dalemusser/ecahub/internal/app/features/health"
	isoclausesfeature "github.com/dalemusser/ecahub/internal/app/features/isoclauses"
	loginfeature "github.com/dalemusser/ecahub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/ecahub/internal/app/features/logout"
	messagesfeature "github.com/dalemusser/ecahub/internal/app/features/messages"
	notificationsfeature "github.com/dalemusser/ecahub/internal/app/features/notifications"
	schoolsfeature "github.com/dalemusser/ecahub/internal/app/features/schools"
	trainingsfeature "github.com/dalemusser/ecahub/internal/app/features/trainings"
	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	clubstore "github.com/dalemusser/ecahub/internal/app/store/clubs"
	documentstore "github.com/dalemusser/ecahub/internal/app/store/documents"
	eventstore "github.com/dalemusser/ecahub/internal/app/store/events"
	isoclausestore "github.com/dalemusser/ecahub/internal/app/store/isoclauses"
	messagestore "github.com/dalemusser/ecahub/internal/app/store/messages"
	notificationstore "github.com/dalemusser/ecahub/internal/app/store/notifications"
	schoolstore "github.com/dalemusser/ecahub/internal/app/store/schools"
	trainingstore "github.com/dalemusser/ecahub/internal/app/store/trainings"
	userstore "github.com/dalemusser/ecahub/internal/app/store/users"
	"github.com/dalemusser/ecahub/internal/app/system/auditlog"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/app/system/token"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The router has two halves. /api serves JSON to bearer-token or cookie
// callers and may be opened to other origins through CORS. Everything else
// is server-rendered HTML behind CSRF protection.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	tokens := token.NewManager(appCfg.TokenSecret, appCfg.TokenTTL)
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, tokens, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	schools := schoolstore.New(db)
	themes := theme.NewResolver(schools)

	audits := auditstore.New(db)
	authAudit := auditlog.New(audits, logger, appCfg.AuditAuth)

	loginHandler := loginfeature.NewHandler(userstore.New(db), themes, tokens, sessionMgr, logger)
	loginHandler.Audit = authAudit
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutHandler.Audit = authAudit

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token or session cookie
	// into a RoleContext available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Route("/api", func(api chi.Router) {
		if len(appCfg.CORSAllowedOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins:   appCfg.CORSAllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		api.Post("/auth/login", loginHandler.HandleAPILogin)
		api.Post("/auth/logout", logoutHandler.HandleAPILogout)

		api.Mount("/schools", schoolsfeature.Routes(schoolsfeature.NewHandler(schools, themes, logger), sessionMgr))
		api.Mount("/clubs", clubsfeature.Routes(clubsfeature.NewHandler(clubstore.New(db), schools, logger), sessionMgr))
		api.Mount("/events", eventsfeature.Routes(eventsfeature.NewHandler(eventstore.New(db), schools, logger), sessionMgr))
		api.Mount("/trainings", trainingsfeature.Routes(trainingsfeature.NewHandler(trainingstore.New(db), logger), sessionMgr))
		api.Mount("/documents", documentsfeature.Routes(documentsfeature.NewHandler(documentstore.New(db), logger), sessionMgr))
		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(notificationstore.New(db), logger), sessionMgr))
		api.Mount("/iso-clauses", isoclausesfeature.Routes(isoclausesfeature.NewHandler(isoclausestore.New(db), logger), sessionMgr))
		api.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(audits, logger), sessionMgr))
		api.Mount("/messages", messagesfeature.Routes(messagesfeature.NewHandler(messagestore.New(db), logger), sessionMgr))
	})

	r.Group(func(pages chi.Router) {
		pages.Use(csrfProtect(appCfg.CSRFKey, secure))

		pages.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})

		pages.Mount("/login", loginfeature.Routes(loginHandler))
		pages.Mount("/logout", logoutfeature.Routes(logoutHandler))

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		pages.Get("/forbidden", errorsHandler.Forbidden)
		pages.Get("/unauthorized", errorsHandler.Unauthorized)

		// Role-based dashboards
		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		pages.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
	})

	return r, nil
}

// csrfProtect guards HTML form posts. Outside prod the site is served over
// plain http, so requests are marked plaintext or every POST would fail the
// Referer check.
func csrfProtect(key string, secure bool) func(http.Handler) http.Handler {
	protect := csrf.Protect([]byte(key),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			errorsfeature.RenderForbidden(w, r, "Your form expired. Please go back and try again.", "/login")
		})),
	)
	if secure {
		return protect
	}
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
