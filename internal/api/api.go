// Package api wires the HTTP routes of the browser.
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/swiftbrowser/internal/api/handlers"
	"github.com/andresuchdata/swiftbrowser/internal/api/middleware"
	"github.com/andresuchdata/swiftbrowser/internal/config"
	"github.com/andresuchdata/swiftbrowser/internal/metrics"
	"github.com/andresuchdata/swiftbrowser/internal/service"
	"github.com/andresuchdata/swiftbrowser/internal/session"
	"github.com/andresuchdata/swiftbrowser/internal/web"
)

type Services struct {
	Storage  *service.StorageService
	Sessions session.Store
	// Metrics is optional
	Metrics *metrics.Metrics
}

func NewRouter(services *Services, cfg *config.Config) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.HTMLRender = renderer
	// object names may contain escaped slashes
	router.UseRawPath = true

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services.Metrics != nil {
		router.Use(services.Metrics.Middleware())
	}
	if corsCfg, ok := corsConfig(cfg.Server.AllowedOrigins); ok {
		router.Use(cors.New(corsCfg))
	}

	h := handlers.NewBrowserHandler(services.Storage, cfg.Server.BaseURL, cfg.Swift.StorageURL)

	router.GET("/health", h.Health)
	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}
	// shared links are opened by anyone, keep them out of the session store
	router.GET("/public/:account/:container/*prefix", h.PublicView)

	pages := router.Group("/", middleware.Sessions(services.Sessions, cfg.Session), middleware.CSRF())
	{
		pages.GET("/login", h.LoginForm)
		pages.POST("/login", h.Login)
		pages.POST("/logout", h.Logout)
	}

	browser := pages.Group("/", middleware.RequireLogin())
	{
		browser.GET("/", h.ContainerView)
		browser.GET("/create_container/", h.CreateContainerForm)
		browser.POST("/create_container/", h.CreateContainer)
		browser.POST("/delete_container/:container/", h.DeleteContainer)
		browser.POST("/toggle_public/:container/", h.TogglePublic)

		browser.GET("/objects/:container/*prefix", h.ObjectView)
		browser.GET("/upload/:container/*prefix", h.UploadForm)
		browser.GET("/create_pseudofolder/:container/*prefix", h.CreatePseudoFolderForm)
		browser.POST("/create_pseudofolder/:container/*prefix", h.CreatePseudoFolder)
		browser.GET("/download/:container/*object", h.Download)
		browser.GET("/tempurl/:container/*object", h.TempURL)
		browser.POST("/delete/:container/*object", h.DeleteObject)

		browser.GET("/acls/:container/", h.ACLs)
		browser.POST("/acls/:container/", h.GrantACL)
		browser.POST("/acls/:container/revoke", h.RevokeACL)
	}

	return router, nil
}

// corsConfig reports false when no origin is allowed
func corsConfig(allowedOrigins []string) (cors.Config, bool) {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	switch {
	case allowAll:
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	case len(normalizedOrigins) > 0:
		corsConfig.AllowOrigins = normalizedOrigins
	default:
		return corsConfig, false
	}
	return corsConfig, true
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
