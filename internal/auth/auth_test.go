package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kandev/luban/internal/common/config"
)

func newTestState(bootstrap string) *State {
	return NewState(config.AuthConfig{SessionCookieName: SessionCookieName}, bootstrap)
}

func TestNewStateDisabledWithoutBootstrapToken(t *testing.T) {
	s := newTestState("")
	if s.Enabled() {
		t.Fatal("expected auth disabled when no bootstrap token is configured")
	}
	if s.ConsumeBootstrapToken("anything") {
		t.Fatal("disabled auth must never consume a token")
	}
}

func TestIsAuthorizedAlwaysTrueWhenDisabled(t *testing.T) {
	s := newTestState("")
	req := httptest.NewRequest(http.MethodGet, "/api/app", nil)
	if !s.isAuthorized(req) {
		t.Fatal("disabled auth must authorize every request")
	}
}

func TestConsumeBootstrapTokenOnce(t *testing.T) {
	s := newTestState("secret")

	if !s.ConsumeBootstrapToken("secret") {
		t.Fatal("expected first consumption to succeed")
	}
	if s.bootstrap != "" {
		t.Fatal("bootstrap token must be cleared after first use")
	}

	// A session cookie matching the now-active session re-validates
	// without needing the (already consumed) bootstrap token again.
	if !s.ConsumeBootstrapToken("secret") {
		t.Fatal("expected re-validation against the active session to succeed")
	}

	if s.ConsumeBootstrapToken("different") {
		t.Fatal("a second, different token must not be accepted")
	}
}

func TestIsAuthorizedRequiresMatchingCookie(t *testing.T) {
	s := newTestState("secret")
	s.ConsumeBootstrapToken("secret")

	req := httptest.NewRequest(http.MethodGet, "/api/app", nil)
	if s.isAuthorized(req) {
		t.Fatal("request without a cookie must not be authorized")
	}

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "wrong"})
	if s.isAuthorized(req) {
		t.Fatal("request with a mismatched cookie must not be authorized")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/app", nil)
	req2.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "secret"})
	if !s.isAuthorized(req2) {
		t.Fatal("request with the matching session cookie must be authorized")
	}
}
