package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/session"
)

const (
	sessionContextKey = "session"
	csrfKeyContextKey = "csrf_key"
	// CSRFField is the form field carrying the CSRF token
	CSRFField = "csrf_token"
	// CSRFHeader may carry the token for non-form requests
	CSRFHeader = "X-CSRF-Token"
)

// sessionWriter persists the session right before the response header goes out,
// so the cookie is part of it
type sessionWriter struct {
	gin.ResponseWriter
	commit func()
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

// flash-only anonymous sessions need to survive a redirect, not a day
const anonymousTTL = 5 * time.Minute

// Sessions loads the session named by the cookie, or starts a new one,
// and saves it back when the response is written. Anonymous sessions
// without flashes are never stored.
func Sessions(store session.Store, cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL.Seconds())
	key := csrfKey(cfg.Secret)
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			sess   *session.Session
			stored bool
		)
		id, err := c.Cookie(cfg.CookieName)
		if err == nil && id != "" {
			loaded, err := store.Load(ctx, id)
			switch {
			case err == nil:
				sess, stored = loaded, true
			case errors.Is(err, session.ErrNotFound):
			default:
				log.Warn().Err(err).Msg("session: load failed")
			}
		}
		if sess == nil {
			if _, err := uuid.Parse(id); err == nil {
				sess = session.WithID(id)
			} else {
				sess = session.New()
			}
		}
		c.Set(sessionContextKey, sess)
		c.Set(csrfKeyContextKey, key)

		save := func() {
			if old := sess.PreviousID(); old != "" {
				if err := store.Delete(ctx, old); err != nil {
					log.Warn().Err(err).Msg("session: delete rotated session failed")
				}
			}
			if sess.Empty() {
				if stored {
					if err := store.Delete(ctx, sess.ID); err != nil {
						log.Warn().Err(err).Msg("session: delete empty session failed")
					}
					stored = false
				}
				sess.Saved()
				return
			}

			var ttl time.Duration
			if !sess.Authenticated() {
				ttl = anonymousTTL
			}
			if err := store.Save(ctx, sess, ttl); err != nil {
				log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("session: save failed")
				return
			}
			stored = true
			sess.Saved()
		}

		var once sync.Once
		commit := func() {
			once.Do(func() {
				save()
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   maxAge,
					Secure:   cfg.Secure,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			})
		}

		original := c.Writer
		c.Writer = &sessionWriter{ResponseWriter: original, commit: commit}
		c.Next()
		c.Writer = original

		commit()
		if sess.Dirty() {
			save()
		}
	}
}

// CurrentSession returns the session set up by Sessions
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return session.New()
}

// CSRFToken returns the token forms must echo back for the current session.
// It is empty outside of Sessions.
func CSRFToken(c *gin.Context) string {
	key, ok := c.Get(csrfKeyContextKey)
	if !ok {
		return ""
	}
	return csrfToken(key.([]byte), CurrentSession(c).ID)
}

func csrfToken(key []byte, id string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

func csrfKey(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("csrf key: %v", err))
	}
	log.Warn().Msg("SESSION_SECRET is not set, CSRF tokens will not survive a restart")
	return key
}

// RequireLogin sends anonymous visitors to the login page
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.Authenticated() {
			sess.AddFlash(domain.FlashError, "Please login first")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRF rejects state changing requests without the session token
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		token := c.GetHeader(CSRFHeader)
		if token == "" {
			token = c.PostForm(CSRFField)
		}
		expected := CSRFToken(c)
		if token == "" || expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			log.Warn().Str("path", c.Request.URL.Path).Str("ip", c.ClientIP()).Msg("csrf token mismatch")
			c.HTML(http.StatusForbidden, "error.html", gin.H{"Message": "Invalid or missing CSRF token. Reload the page and try again."})
			c.Abort()
			return
		}
		c.Next()
	}
}
