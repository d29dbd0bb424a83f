package httpapi

import (
	"net/http"

	"demohub/internal/session"

	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "demohub_session"

	maxSessionIDLen = 64
)

// sessionID picks the session from the header or the cookie, minting a new
// one when neither is present. The id is echoed in the response header.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if id == "" || len(id) > maxSessionIDLen {
		id = session.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// stateFor returns the caller's state in reg, creating it on first use.
func stateFor[T session.State](reg *session.Registry[T], w http.ResponseWriter, r *http.Request) T {
	_, s := reg.GetOrCreate(sessionID(w, r))
	return s
}

// deleteSession tears down the caller's state in reg.
func deleteSession[T session.State](reg *session.Registry[T], logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allow(w, r, http.MethodDelete) {
			return
		}
		id := sessionID(w, r)
		if err := reg.Delete(id); err != nil {
			logger.Debug("session delete failed", zap.String("session_id", id), zap.Error(err))
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Notify("info", "session closed", map[string]any{"session_id": id}))
	}
}
