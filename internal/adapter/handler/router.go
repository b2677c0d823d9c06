package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	auth            *middleware.AuthMiddleware
	webhookHandler  *Webhook
	callbackHandler *Callback
	crmHandler      *Crm
	meetingHandler  *Meeting
	adminHandler    *Admin
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	auth *middleware.AuthMiddleware,
	webhookHandler *Webhook,
	callbackHandler *Callback,
	crmHandler *Crm,
	meetingHandler *Meeting,
	adminHandler *Admin,
) *Router {
	return &Router{
		cfg:             cfg,
		auth:            auth,
		webhookHandler:  webhookHandler,
		callbackHandler: callbackHandler,
		crmHandler:      crmHandler,
		meetingHandler:  meetingHandler,
		adminHandler:    adminHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	rt.setupWebhookRoutes(e)
	rt.setupCrmRoutes(e)
	rt.setupMeetingRoutes(e)
	rt.setupAdminRoutes(e)
}

// setupWebhookRoutes configures token-addressed inbound routes. These carry
// no bearer auth, the opaque path token is the credential. CORS preflights
// are answered by the global CORS middleware.
func (rt *Router) setupWebhookRoutes(e *echo.Echo) {
	g := e.Group("/webhooks")

	for _, scope := range []string{"user", "org", "global"} {
		g.POST("/"+scope+"/:token", rt.webhookHandler.Receive)
	}

	g.POST("/n8n/callback", rt.callbackHandler.Receive)
}

// setupCrmRoutes configures the authenticated CRM facade
func (rt *Router) setupCrmRoutes(e *echo.Echo) {
	g := e.Group("/crm", rt.auth.EchoAuth())

	g.POST("/call", rt.crmHandler.Call)
	g.POST("/test-connection", rt.crmHandler.TestConnection)
	g.POST("/credentials", rt.crmHandler.StoreCredentials)
}

// setupMeetingRoutes configures authenticated meeting operations
func (rt *Router) setupMeetingRoutes(e *echo.Echo) {
	g := e.Group("/meetings", rt.auth.EchoAuth())

	g.POST("/match-type", rt.meetingHandler.MatchType)
	g.POST("/:id/prepare-payload", rt.meetingHandler.PreparePayload)
}

// setupAdminRoutes configures platform-administrator routes
func (rt *Router) setupAdminRoutes(e *echo.Echo) {
	g := e.Group("/admin",
		rt.auth.EchoAuth(),
		rt.auth.RequireRole(entities.UserRoleSuperAdmin),
	)

	g.POST("/meetings/:id/retry-forward", rt.adminHandler.RetryForward)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
