package v1

import (
	"porkbun_console/api/v1/audit"
	"porkbun_console/api/v1/auth"
	"porkbun_console/api/v1/bulkjobs"
	"porkbun_console/api/v1/domains"
	"porkbun_console/api/v1/middleware"
	"porkbun_console/api/v1/nameservers"
	"porkbun_console/api/v1/profiles"
	"porkbun_console/api/v1/records"
	"porkbun_console/api/v1/templates"
	"porkbun_console/internal/bulk"
	"porkbun_console/internal/config"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/nsaudit"
	"porkbun_console/internal/profile"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the long-lived components the handlers need
type Deps struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Profiles    *profile.Store
	BulkManager *bulk.Manager
	AuditWorker *nsaudit.Worker
	AuditStore  *nsaudit.Store
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps *Deps) {
	baseURL := deps.Cfg.Porkbun.BaseURL

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(deps.DB, deps.Cfg))
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", meHandler)

			// Credential profiles
			profilesHandler := profiles.NewHandler(deps.Profiles, baseURL)
			profilesGroup := protected.Group("/profiles")
			{
				profilesGroup.GET("", profilesHandler.List)
				profilesGroup.POST("/create", profilesHandler.Create)
				profilesGroup.POST("/activate", profilesHandler.Activate)
				profilesGroup.POST("/update", profilesHandler.Update)
				profilesGroup.POST("/delete", profilesHandler.Delete)
			}

			// Domains
			domainsHandler := domains.NewHandler(deps.Profiles, baseURL, deps.Cfg.Porkbun.DomainCacheTTLSec)
			domainsGroup := protected.Group("/domains")
			{
				domainsGroup.GET("", domainsHandler.List)
				domainsGroup.GET("/inventory", domainsHandler.Inventory)
				domainsGroup.POST("/sync", domainsHandler.Sync)
			}

			// Nameservers
			nsHandler := nameservers.NewHandler(deps.Profiles, baseURL)
			nsGroup := protected.Group("/nameservers")
			{
				nsGroup.GET("/defaults", nsHandler.Defaults)
				nsGroup.GET("/:domain", nsHandler.Get)
				nsGroup.POST("/update", middleware.MutationAllowed(), nsHandler.Update)
				nsGroup.POST("/reset", middleware.MutationAllowed(), nsHandler.Reset)
			}

			// DNS records
			recordsHandler := records.NewHandler(deps.Profiles, baseURL)
			recordsGroup := protected.Group("/records")
			{
				recordsGroup.GET("/:domain", recordsHandler.List)
				recordsGroup.POST("/create", middleware.MutationAllowed(), recordsHandler.Create)
				recordsGroup.POST("/update", middleware.MutationAllowed(), recordsHandler.Update)
				recordsGroup.POST("/delete", middleware.MutationAllowed(), recordsHandler.Delete)
			}

			// Templates
			templatesHandler := templates.NewHandler()
			templatesGroup := protected.Group("/templates")
			{
				templatesGroup.GET("", templatesHandler.List)
				templatesGroup.POST("/preview", templatesHandler.Preview)
			}

			// Bulk jobs
			bulkHandler := bulkjobs.NewHandler(deps.BulkManager, deps.Profiles, baseURL)
			bulkGroup := protected.Group("/bulk")
			{
				bulkGroup.POST("/apply", middleware.MutationAllowed(), bulkHandler.Apply)
				bulkGroup.GET("/jobs", bulkHandler.List)
				bulkGroup.GET("/jobs/:id", bulkHandler.Get)
				bulkGroup.POST("/jobs/:id/cancel", middleware.MutationAllowed(), bulkHandler.Cancel)
			}

			// Nameserver audit
			auditHandler := audit.NewHandler(deps.AuditWorker, deps.AuditStore, deps.Profiles, baseURL)
			auditGroup := protected.Group("/audit")
			{
				auditGroup.POST("/start", auditHandler.Start)
				auditGroup.GET("/status", auditHandler.Status)
				auditGroup.GET("/external", auditHandler.External)
				auditGroup.POST("/invalidate-cache", auditHandler.InvalidateCache)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	role, _ := c.Get("role")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"role":     role,
	})
}
