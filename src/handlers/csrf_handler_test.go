package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradepulse/backend/src/config"
	"github.com/username/tradepulse/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		CSRFAuthKey: []byte("test-csrf-auth-key-32-bytes-long!"),
	}
	m.Run()
}

func issueCSRFToken(t *testing.T) (token string, cookie *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	GetCSRFToken(rec, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token = rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	return token, cookie
}

func TestCSRFMiddlewareAcceptsMatchingToken(t *testing.T) {
	token, cookie := issueCSRFToken(t)

	called := false
	handler := CSRFMiddleware(config.Cfg.CSRFAuthKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/trades", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareRejectsMissingHeader(t *testing.T) {
	_, cookie := issueCSRFToken(t)

	handler := CSRFMiddleware(config.Cfg.CSRFAuthKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/trades", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareRejectsForgedCookie(t *testing.T) {
	token, _ := issueCSRFToken(t)

	handler := CSRFMiddleware(config.Cfg.CSRFAuthKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	// A cookie the attacker fabricated without knowing the auth key.
	req := httptest.NewRequest(http.MethodPost, "/api/trades", nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token + ".forged-signature"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	handler := CSRFMiddleware(config.Cfg.CSRFAuthKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/trades", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
