package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

// LoginForm shows the login page. Visiting it ends any current session.
func (h *BrowserHandler) LoginForm(c *gin.Context) {
	middleware.CurrentSession(c).Logout()
	h.render(c, http.StatusOK, "login.html", nil)
}

// Login authenticates against Swift and stores the token in a fresh session
func (h *BrowserHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.Logout()

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" || len(username) > 100 {
		sess.AddFlash(domain.FlashError, "Please enter a username and password.")
		h.render(c, http.StatusBadRequest, "login.html", gin.H{"FormUsername": username})
		return
	}

	creds, err := h.service.Login(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, swift.ErrInvalidCredentials) {
			log.Error().Err(err).Str("user", username).Msg("swift authentication failed")
		}
		sess.AddFlash(domain.FlashError, "Login failed: "+err.Error())
		h.render(c, http.StatusOK, "login.html", gin.H{"FormUsername": username})
		return
	}

	sess.Login(creds)
	h.redirect(c, "/")
}

// Logout ends the session
func (h *BrowserHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	h.service.Logout(c.Request.Context(), sess.Credentials())
	sess.Logout()
	sess.AddFlash(domain.FlashInfo, "You have been logged out.")
	h.redirect(c, "/login")
}
