// Package auth gates the HTTP and WebSocket surface behind a one-shot
// bootstrap token exchanged for a session cookie, mirroring a local dev
// tool's auth model rather than a multi-user identity system: there is at
// most one valid session at a time.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kandev/luban/internal/common/config"
)

// SessionCookieName is the cookie this package mints and checks. It matches
// config.AuthConfig's default so a deployment can override it consistently
// with the rest of the auth surface.
const SessionCookieName = "luban_session"

// State tracks whether auth is enabled and holds the one-shot bootstrap
// token plus the session token it is traded for.
type State struct {
	enabled    bool
	cookieName string

	mu        sync.Mutex
	bootstrap string
	session   string
}

// NewState returns a State configured from cfg. bootstrapToken is the
// one-shot token a deployment generates out of band (an env var or a CLI
// flag) and prints for the operator to open; an empty token disables auth
// entirely, matching original_source's AuthMode::Disabled.
func NewState(cfg config.AuthConfig, bootstrapToken string) *State {
	cookieName := strings.TrimSpace(cfg.SessionCookieName)
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &State{
		enabled:    strings.TrimSpace(bootstrapToken) != "",
		cookieName: cookieName,
		bootstrap:  strings.TrimSpace(bootstrapToken),
	}
}

// Enabled reports whether this deployment requires a session at all.
func (s *State) Enabled() bool {
	return s.enabled
}

// CookieName returns the cookie this State mints and checks.
func (s *State) CookieName() string {
	return s.cookieName
}

// isAuthorized reports whether r carries a session cookie matching the
// current session token. Always true when auth is disabled.
func (s *State) isAuthorized(r *http.Request) bool {
	if !s.enabled {
		return true
	}
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != "" && subtle.ConstantTimeCompare([]byte(s.session), []byte(cookie.Value)) == 1
}

// ConsumeBootstrapToken validates token against the outstanding bootstrap
// token and, on success, promotes it to the session token, clearing the
// bootstrap token so it cannot be replayed. A token matching the already-
// active session succeeds without touching the bootstrap token, so a
// refreshed browser tab that still has the bootstrap URL in its history
// does not get locked out.
func (s *State) ConsumeBootstrapToken(token string) bool {
	if !s.enabled {
		return false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != "" && subtle.ConstantTimeCompare([]byte(s.session), []byte(token)) == 1 {
		return true
	}
	if s.bootstrap == "" || subtle.ConstantTimeCompare([]byte(s.bootstrap), []byte(token)) != 1 {
		return false
	}

	s.session = token
	s.bootstrap = ""
	return true
}

// RequireSession is gin middleware that aborts with 401 when the request
// does not carry a valid session cookie.
func (s *State) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.isAuthorized(c.Request) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
