package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/ecahub/internal/app/system/theme"
	"github.com/dalemusser/ecahub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session markers. Both are cleared on logout.
const (
	authTokenKey = "auth_token"
	isAuthKey    = "is_authenticated"
)

// SessionManager owns the cookie store and turns session tokens into a
// RoleContext on every request.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	verifier Verifier
	log      *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, verifier Verifier, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if verifier == nil {
		return nil, errors.New("session manager requires a token verifier")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "ecahub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, verifier: verifier, log: logger}, nil
}

// Store exposes the cookie store (its Options are reused for deletion cookies).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name is the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. A cookie that fails to decode
// (rotated key, tampering) yields a fresh session and the decode error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.Error(err))
		}
		if sess == nil {
			sess = sessions.NewSession(sm.store, sm.name)
		}
	}
	return sess, err
}

// SignIn stores the token in the session and writes the cookie. A
// super-admin session starts from the default theme; other roles get
// schoolTheme applied.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, tokenString string, role models.Role, schoolTheme models.Theme) error {
	sess, _ := sm.GetSession(r)
	sess.Values[authTokenKey] = tokenString
	sess.Values[isAuthKey] = true
	if role == models.RoleSuperAdmin {
		theme.Reset(sess)
	} else {
		theme.Apply(sess, schoolTheme)
	}
	sess.Options = sm.cookieOptions()
	return sess.Save(r, w)
}

// SignOut clears both session markers and the applied theme, then expires
// the cookie. Absent markers are not an error.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	delete(sess.Values, authTokenKey)
	delete(sess.Values, isAuthKey)
	theme.Clear(sess)

	opts := sm.cookieOptions()
	opts.MaxAge = -1
	sess.Options = opts
	return sess.Save(r, w)
}

func (sm *SessionManager) cookieOptions() *sessions.Options {
	o := *sm.store.Options
	return &o
}

// tokenFrom prefers an Authorization bearer token, then the session marker pair.
func (sm *SessionManager) tokenFrom(r *http.Request) (string, *sessions.Session) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), nil
	}
	sess, _ := sm.GetSession(r)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return "", sess
	}
	tok, _ := sess.Values[authTokenKey].(string)
	return tok, sess
}

// LoadSessionUser verifies the request's token and injects the RoleContext.
// Missing, invalid and expired tokens leave the request anonymous.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, sess := sm.tokenFrom(r)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := sm.verifier.Verify(tok)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				sm.log.Debug("session token expired", zap.String("path", r.URL.Path))
			} else {
				sm.log.Warn("session token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		rc := FromClaims(claims)
		if sess != nil {
			rc.Theme = theme.Applied(sess)
		}
		next.ServeHTTP(w, r.WithContext(WithRoleContext(r.Context(), &rc)))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyAnonymous(w, r)
	})
}

// RequireRole ensures the signed-in user has one of the allowed roles.
// Wrong role is 403 semantics: HTML callers go to /forbidden, API callers
// get a plain 403.
func (sm *SessionManager) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := CurrentUser(r)
			if !ok {
				denyAnonymous(w, r)
				return
			}

			if !models.ContainsRole(allowed, rc.UserRole) {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAnonymous(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
