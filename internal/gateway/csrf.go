package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const csrfTokenTTL = 4 * time.Hour

func (s *Server) handleCSRF(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.issueCSRFToken(w, r)
	case http.MethodPost:
		s.checkCSRFToken(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// issueCSRFToken returns a fresh token bound to the caller's session id
// when one is present. The token travels both in the body and as a
// hardened cookie; cryptographic verification is the middleware's job.
func (s *Server) issueCSRFToken(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		s.log.Error("csrf token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	token := hex.EncodeToString(buf)

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		if cookie, err := r.Cookie("session_id"); err == nil {
			sessionID = cookie.Value
		}
	}

	expires := time.Now().Add(csrfTokenTTL)
	http.SetCookie(w, &http.Cookie{
		Name:     "csrf_token",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(csrfTokenTTL.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	body := map[string]any{
		"csrfToken": token,
		"expiresAt": expires.UTC().Format(time.RFC3339),
	}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	writeJSON(w, http.StatusOK, body)
}

// checkCSRFToken validates token presence only.
func (s *Server) checkCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		if cookie, err := r.Cookie("csrf_token"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		writeError(w, http.StatusForbidden, "csrf token missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
