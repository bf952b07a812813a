package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/service"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

// ContainerView lists the containers of the account
func (h *BrowserHandler) ContainerView(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	stat, containers, err := h.service.Overview(c.Request.Context(), sess.Credentials())
	switch {
	case err == nil:
	case swift.IsForbidden(err):
		// Users limited to some containers may not list the account
		example := h.requestBaseURL(c) + "/objects/containername"
		sess.AddFlashLink(domain.FlashError,
			"Container listing failed. You can manually choose a known container by appending the name to the URL, for example:",
			example)
		stat, containers = domain.AccountStat{}, []domain.Container{}
	default:
		h.fail(c, err, "Could not list containers.", "/login")
		return
	}

	h.render(c, http.StatusOK, "containerview.html", gin.H{
		"AccountStat": stat,
		"Containers":  containers,
	})
}

// CreateContainerForm shows the create container page
func (h *BrowserHandler) CreateContainerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create_container.html", nil)
}

// CreateContainer creates the container named in the form
func (h *BrowserHandler) CreateContainer(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.PostForm("containername")
	if len(name) > 100 {
		name = ""
	}

	err := h.service.CreateContainer(c.Request.Context(), sess.Credentials(), name)
	switch {
	case errors.Is(err, service.ErrInvalidContainerName) || name == "":
		h.flash(c, domain.FlashError, "Please enter a valid container name.")
		h.render(c, http.StatusBadRequest, "create_container.html", nil)
		return
	case err != nil:
		h.fail(c, err, msgAccessDenied, "/")
		return
	}

	h.flash(c, domain.FlashInfo, "Container created.")
	h.redirect(c, "/")
}

// DeleteContainer deletes a container with all its objects
func (h *BrowserHandler) DeleteContainer(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")

	if err := h.service.DeleteContainer(c.Request.Context(), sess.Credentials(), container); err != nil {
		h.fail(c, err, msgAccessDenied, "/")
		return
	}

	h.flash(c, domain.FlashInfo, "Container deleted.")
	h.redirect(c, "/")
}

// TogglePublic makes a container world readable, or private again
func (h *BrowserHandler) TogglePublic(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	container := c.Param("container")

	public, err := h.service.TogglePublic(c.Request.Context(), sess.Credentials(), container)
	if err != nil {
		h.fail(c, err, msgAccessDenied, objectsURL(container, ""))
		return
	}

	if public {
		h.flash(c, domain.FlashInfo, "Container is now public.")
	} else {
		h.flash(c, domain.FlashInfo, "Container is now private.")
	}
	h.redirect(c, objectsURL(container, ""))
}
