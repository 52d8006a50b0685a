package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/username/tradepulse/backend/src/config"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/utils"
)

const csrfCookieName = "tp_csrf"

// GetCSRFToken issues a signed double-submit token. The cookie carries the
// token plus its HMAC; the client echoes the bare token in X-CSRF-Token.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateRandomToken()
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token + "." + signToken(token, config.Cfg.CSRFAuthKey),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		MaxAge:   3600,
	})

	w.Header().Set("X-CSRF-Token", token)
	utils.SendJSON(w, map[string]string{"csrfToken": token}, http.StatusOK)
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func signToken(token string, authKey []byte) string {
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CSRFMiddleware validates the double-submit token on every state-changing
// request. OPTIONS preflights and the token endpoint itself are exempt.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if headerToken == "" || err != nil {
				logger.L.Warn("CSRF validation failed: token missing", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			parts := strings.SplitN(cookie.Value, ".", 2)
			if len(parts) != 2 {
				logger.L.Warn("CSRF validation failed: malformed cookie", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}
			cookieToken, cookieSig := parts[0], parts[1]

			if !hmac.Equal([]byte(cookieSig), []byte(signToken(cookieToken, authKey))) ||
				subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) != 1 {
				logger.L.Warn("CSRF validation failed: token mismatch", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
