package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
	"github.com/andresuchdata/swiftbrowser/internal/web"
)

// ObjectView lists one pseudo folder level of a container
func (h *BrowserHandler) ObjectView(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	prefix := folderPrefix(pathParam(c, "prefix"))

	// Swift formpost redirects back here with the upload result
	if status := c.Query("status"); status != "" {
		h.service.ForgetListings(c.Request.Context(), sess.Credentials(), container)
		if strings.HasPrefix(status, "2") {
			sess.AddFlash(domain.FlashSuccess, "Upload finished.")
		} else {
			sess.AddFlash(domain.FlashError, "Upload failed: "+c.Query("message"))
		}
	}

	view, err := h.service.ObjectView(c.Request.Context(), sess.Credentials(), container, prefix)
	if err != nil {
		h.fail(c, err, msgAccessDenied, "/")
		return
	}

	h.render(c, http.StatusOK, "objectview.html", gin.H{"View": view})
}

// PublicView lists a public container. It runs without a session, so
// failures render an error page instead of flashing.
func (h *BrowserHandler) PublicView(c *gin.Context) {
	account := c.Param("account")
	container := c.Param("container")
	prefix := folderPrefix(pathParam(c, "prefix"))

	view, err := h.service.PublicView(c.Request.Context(), account, container, prefix)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusForbidden
		if swift.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.HTML(status, "error.html", gin.H{"Message": msgAccessDenied})
		return
	}

	h.render(c, http.StatusOK, "publicview.html", gin.H{
		"View":       view,
		"Root":       "/public/" + web.PathEscape(account) + "/",
		"StorageURL": strings.TrimRight(h.storageURL, "/") + "/" + web.PathEscape(account),
	})
}

// CreatePseudoFolderForm shows the new folder page
func (h *BrowserHandler) CreatePseudoFolderForm(c *gin.Context) {
	container := c.Param("container")
	prefix := folderPrefix(pathParam(c, "prefix"))
	h.render(c, http.StatusOK, "create_pseudofolder.html", folderPage(container, prefix))
}

// CreatePseudoFolder stores a directory marker below the current prefix
func (h *BrowserHandler) CreatePseudoFolder(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	prefix := folderPrefix(pathParam(c, "prefix"))

	_, err := h.service.CreatePseudoFolder(c.Request.Context(), sess.Credentials(), container, prefix, c.PostForm("foldername"))
	switch {
	case errors.Is(err, domain.ErrInvalidFolderName):
		h.flash(c, domain.FlashError, "Please enter a valid folder name.")
		h.render(c, http.StatusBadRequest, "create_pseudofolder.html", folderPage(container, prefix))
		return
	case err != nil:
		h.fail(c, err, msgAccessDenied, objectsURL(container, prefix))
		return
	}

	h.flash(c, domain.FlashInfo, "Pseudofolder created.")
	h.redirect(c, objectsURL(container, prefix))
}

func folderPage(container, prefix string) gin.H {
	return gin.H{
		"Container": container,
		"Prefix":    prefix,
		"Prefixes":  domain.PrefixList(prefix),
	}
}

// UploadForm renders a formpost form that uploads straight to Swift
func (h *BrowserHandler) UploadForm(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	prefix := folderPrefix(pathParam(c, "prefix"))

	form, err := h.service.UploadForm(c.Request.Context(), sess.Credentials(), container, prefix, h.requestBaseURL(c))
	if err != nil {
		h.fail(c, err, "Access denied or container not found.", "/")
		return
	}

	h.render(c, http.StatusOK, "upload_form.html", gin.H{
		"Form":      form,
		"Container": container,
		"Prefix":    prefix,
		"Prefixes":  domain.PrefixList(prefix),
	})
}

// Download redirects to a short lived temp URL of the object
func (h *BrowserHandler) Download(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	objectName := pathParam(c, "object")

	url, err := h.service.DownloadURL(c.Request.Context(), sess.Credentials(), container, objectName)
	if err != nil {
		h.fail(c, err, msgAccessDenied, objectsURL(container, domain.ParentPrefix(objectName)))
		return
	}
	h.redirect(c, url)
}

// TempURL shows a shareable temp URL of the object
func (h *BrowserHandler) TempURL(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	objectName := pathParam(c, "object")
	prefix := domain.ParentPrefix(objectName)

	url, err := h.service.ShareURL(c.Request.Context(), sess.Credentials(), container, objectName)
	if err != nil {
		h.fail(c, err, msgAccessDenied, objectsURL(container, prefix))
		return
	}

	h.render(c, http.StatusOK, "tempurl.html", gin.H{
		"URL":        url,
		"Container":  container,
		"ObjectName": objectName,
		"Prefix":     prefix,
		"Prefixes":   domain.PrefixList(prefix),
		"Expires":    h.service.ShareExpiry().Format(time.RFC1123),
	})
}

// DeleteObject deletes an object and returns to its folder
func (h *BrowserHandler) DeleteObject(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")
	objectName := pathParam(c, "object")

	parent, err := h.service.DeleteObject(c.Request.Context(), sess.Credentials(), container, objectName)
	if err != nil {
		h.fail(c, err, msgAccessDenied, objectsURL(container, parent))
		return
	}

	h.flash(c, domain.FlashInfo, "Object deleted.")
	h.redirect(c, objectsURL(container, parent))
}
