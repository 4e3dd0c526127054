package http

import (
	"net/http"
	"time"

	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/util/encoding"
)

// SessionConfig configures the browser session cookie.
type SessionConfig struct {
	// CookieName is the name of the cookie carrying the session ID
	CookieName string `env:"COOKIE" default:"skillsphere_session"`
	// Secure marks the cookie as HTTPS-only
	Secure bool `env:"COOKIE_SECURE" default:"false"`
	// MaxAge is the cookie lifetime
	MaxAge time.Duration `env:"COOKIE_MAX_AGE" default:"720h"`
}

// SessionMiddleware creates middleware that assigns every browser a session ID.
// An existing cookie is reused when it holds a well-formed ID; otherwise a new
// ID is issued. The ID is added to the request context.
func SessionMiddleware(next http.Handler, cfg SessionConfig, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""

		if cookie, err := r.Cookie(cfg.CookieName); err == nil && validSessionID(cookie.Value) {
			sessionID = cookie.Value
		}

		if sessionID == "" {
			sessionID = NewID()
			if sessionID == "" {
				log.ErrorContext(r.Context(), "generate session id failed")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

				return
			}

			//nolint:exhaustruct
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			log.DebugContext(r.Context(), "session issued", "session", sessionID)
		}

		next.ServeHTTP(w, r.WithContext(context_.WithSessionID(r.Context(), sessionID)))
	})
}

// validSessionID accepts only IDs produced by NewID: a 16 byte UUID encoded
// as 26 Crockford characters.
func validSessionID(value string) bool {
	if len(value) != 26 {
		return false
	}

	b, err := encoding.DecodeCrockfordB32(value)

	return err == nil && len(b) == 16
}
