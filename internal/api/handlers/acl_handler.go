package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

// ACLs shows the read and write grants of a container
func (h *BrowserHandler) ACLs(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")

	acls, err := h.service.ACLs(c.Request.Context(), sess.Credentials(), container)
	if err != nil {
		h.fail(c, err, msgAccessDenied, "/")
		return
	}

	h.render(c, http.StatusOK, "edit_acl.html", gin.H{
		"Container": container,
		"ACLs":      acls,
	})
}

// GrantACL adds the grant from the form
func (h *BrowserHandler) GrantACL(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")

	req := domain.GrantRequest{
		Username:      strings.TrimSpace(c.PostForm("username")),
		Read:          c.PostForm("read") != "",
		Write:         c.PostForm("write") != "",
		ProjectAccess: c.PostForm("project_access") != "",
	}
	if req.Username == "" || len(req.Username) > 100 {
		h.flash(c, domain.FlashError, "Please enter a user.")
		h.redirect(c, aclsURL(container))
		return
	}

	if err := h.service.GrantACL(c.Request.Context(), sess.Credentials(), container, req); err != nil {
		h.fail(c, err, "ACL update failed.", aclsURL(container))
		return
	}

	h.flash(c, domain.FlashSuccess, "ACLs updated.")
	h.redirect(c, aclsURL(container))
}

// RevokeACL removes a grant from both ACLs
func (h *BrowserHandler) RevokeACL(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")

	if err := h.service.RevokeACL(c.Request.Context(), sess.Credentials(), container, c.PostForm("grant")); err != nil {
		h.fail(c, err, "ACL update failed.", aclsURL(container))
		return
	}

	h.flash(c, domain.FlashSuccess, "ACL removed.")
	h.redirect(c, aclsURL(container))
}
