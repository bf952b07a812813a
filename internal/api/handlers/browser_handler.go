package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/service"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/internal/web"
)

const msgAccessDenied = "Access denied."

// BrowserHandler serves the HTML pages of the browser
type BrowserHandler struct {
	service    *service.StorageService
	baseURL    string
	storageURL string
}

// NewBrowserHandler creates the handler. baseURL overrides the scheme and
// host detected from requests; storageURL is the public Swift endpoint
// without the account, used for links in public listings.
func NewBrowserHandler(service *service.StorageService, baseURL, storageURL string) *BrowserHandler {
	return &BrowserHandler{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		storageURL: storageURL,
	}
}

// render adds the session fields every page uses and renders name
func (h *BrowserHandler) render(c *gin.Context, status int, name string, data gin.H) {
	sess := middleware.CurrentSession(c)
	if data == nil {
		data = gin.H{}
	}
	data["Username"] = sess.Username
	data["CSRFToken"] = middleware.CSRFToken(c)
	data["Flashes"] = sess.PopFlashes()
	c.HTML(status, name, data)
}

func (h *BrowserHandler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func (h *BrowserHandler) flash(c *gin.Context, level domain.FlashLevel, message string) {
	middleware.CurrentSession(c).AddFlash(level, message)
}

// fail reports a failed Swift call. An expired token ends the session,
// anything else flashes message and redirects to fallback.
func (h *BrowserHandler) fail(c *gin.Context, err error, message, fallback string) {
	_ = c.Error(err)
	if swift.IsUnauthorized(err) {
		sess := middleware.CurrentSession(c)
		sess.Logout()
		sess.AddFlash(domain.FlashError, "Your session has expired. Please login again.")
		h.redirect(c, "/login")
		return
	}
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Int("swift_status", swift.StatusCode(err)).Msg(message)
	h.flash(c, domain.FlashError, message)
	h.redirect(c, fallback)
}

// requestBaseURL returns scheme://host the browser used to reach us
func (h *BrowserHandler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// pathParam returns a catch-all parameter without its leading slash
func pathParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}

// folderPrefix makes a non-empty listing prefix end in a slash
func folderPrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func objectsURL(container, prefix string) string {
	return "/objects/" + web.PathEscape(container) + "/" + web.PathEscape(prefix)
}

func aclsURL(container string) string {
	return "/acls/" + web.PathEscape(container) + "/"
}

// Health reports liveness
func (h *BrowserHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
