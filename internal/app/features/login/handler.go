// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	userstore "github.com/dalemusser/ecahub/internal/app/store/users"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/auditlog"
	"github.com/dalemusser/ecahub/internal/app/system/auth"
	"github.com/dalemusser/ecahub/internal/app/system/ratelimit"
	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/ecahub/internal/app/system/token"
	"github.com/dalemusser/ecahub/internal/app/system/validate"
	"github.com/dalemusser/ecahub/internal/app/system/viewdata"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	errBadCredentials = errors.New("invalid email or password")
	errDisabled       = errors.New("account disabled")
)

// UserFinder is satisfied by *userstore.Store.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// ThemeResolver is satisfied by *theme.Resolver.
type ThemeResolver interface {
	Resolve(ctx context.Context, schoolID string) (models.Theme, error)
}

// TokenIssuer is satisfied by *token.Manager.
type TokenIssuer interface {
	Issue(id token.Identity) (string, error)
}

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Users      UserFinder
	Themes     ThemeResolver
	Tokens     TokenIssuer
	Limiter    *ratelimit.LoginLimiter

	// Audit is optional; nil skips audit records.
	Audit *auditlog.Logger
}

func NewHandler(users UserFinder, themes ThemeResolver, tokens TokenIssuer, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Users:      users,
		Themes:     themes,
		Tokens:     tokens,
		Limiter:    ratelimit.NewLoginLimiter(),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| credential check + session start                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.User{}, errBadCredentials
		}
		return models.User{}, err
	}
	if u.Status == models.UserStatusDisabled {
		return models.User{}, errDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, errBadCredentials
	}
	return u, nil
}

// startSession issues the token and initializes the session with the
// theme the user's role should see.
func (h *Handler) startSession(ctx context.Context, w http.ResponseWriter, r *http.Request, u models.User) (string, error) {
	id := token.Identity{
		UserID: u.ID.Hex(),
		Name:   u.FullName,
		Role:   u.Role,
	}
	if u.SchoolID != nil {
		id.SchoolID = u.SchoolID.Hex()
	}
	tok, err := h.Tokens.Issue(id)
	if err != nil {
		return "", err
	}

	applied := models.DefaultTheme()
	if u.Role != models.RoleSuperAdmin && id.SchoolID != "" {
		t, err := h.Themes.Resolve(ctx, id.SchoolID)
		switch {
		case err == nil:
			applied = t
		case errors.Is(err, theme.ErrNotFound):
			h.Log.Warn("user's school not found; using default theme",
				zap.String("user_id", id.UserID), zap.String("school_id", id.SchoolID))
		default:
			return "", err
		}
	}

	if err := h.SessionMgr.SignIn(w, r, tok, u.Role, applied); err != nil {
		return "", err
	}
	return tok, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Role    models.Role `json:"role,omitempty"`
	Name    string      `json:"name,omitempty"`
	Token   string      `json:"token,omitempty"`
}

func fail(w http.ResponseWriter, status int, msg string) {
	apiresp.WriteJSON(w, status, loginResponse{Success: false, Message: msg})
}

// HandleAPILogin authenticates a JSON body and starts a session. The token
// is also returned for clients that prefer a bearer header.
func (h *Handler) HandleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apiresp.DecodeJSON(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if ok, reason := h.Limiter.Check(r, req.Email); !ok {
		h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
		h.Audit.LoginFailed(r, req.Email, auditstore.EventLoginFailedRateLimit, reason)
		fail(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, errBadCredentials):
		h.Audit.LoginFailed(r, req.Email, auditstore.EventLoginFailedBadCredential, err.Error())
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	case errors.Is(err, errDisabled):
		h.Audit.LoginFailed(r, req.Email, auditstore.EventLoginFailedUserDisabled, err.Error())
		fail(w, http.StatusUnauthorized, "This account is disabled")
		return
	case err != nil:
		h.Log.Error("login lookup failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	tok, err := h.startSession(ctx, w, r, u)
	if err != nil {
		h.Log.Error("login: start session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		fail(w, http.StatusInternalServerError, "Unable to create session")
		return
	}
	h.Limiter.ResetEmail(req.Email)
	h.Audit.LoginSuccess(r, u)

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role.String()))
	apiresp.OK(w, loginResponse{Success: true, Role: u.Role, Name: u.FullName, Token: tok})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, nil, "Sign in"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, http.StatusBadRequest, "Invalid form data.", "")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderFormWithError(w, r, http.StatusOK, "Please enter your email and password.", email)
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Audit.LoginFailed(r, email, auditstore.EventLoginFailedRateLimit, reason)
		h.renderFormWithError(w, r, http.StatusTooManyRequests, reason, email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.authenticate(ctx, email, password)
	switch {
	case errors.Is(err, errBadCredentials):
		h.Audit.LoginFailed(r, email, auditstore.EventLoginFailedBadCredential, err.Error())
		h.renderFormWithError(w, r, http.StatusOK, "Invalid email or password.", email)
		return
	case errors.Is(err, errDisabled):
		h.Audit.LoginFailed(r, email, auditstore.EventLoginFailedUserDisabled, err.Error())
		h.renderFormWithError(w, r, http.StatusOK, "This account is disabled. Please contact an administrator.", email)
		return
	case err != nil:
		h.Log.Error("login lookup failed", zap.Error(err))
		h.renderFormWithError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.", email)
		return
	}

	if _, err := h.startSession(ctx, w, r, u); err != nil {
		h.Log.Error("login: start session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, http.StatusInternalServerError, "Unable to create session. Please try again.", email)
		return
	}
	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(r, u)

	dest := urlutil.SafeReturn(r.FormValue("return"), "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, email string) {
	ret := r.FormValue("return")
	if ret == "" {
		ret = query.Get(r, "return")
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, nil, "Sign in"),
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
	})
}
