// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/passgage/passgage-go/config"
	"github.com/passgage/passgage-go/internal/delivery/api/middleware"
	"github.com/passgage/passgage-go/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AccessHandler  *handler.AccessHandler
	BranchHandler  *handler.BranchHandler
	WorkLogHandler *handler.WorkLogHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	accessHandler  *handler.AccessHandler
	branchHandler  *handler.BranchHandler
	workLogHandler *handler.WorkLogHandler
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		accessHandler:  params.AccessHandler,
		branchHandler:  params.BranchHandler,
		workLogHandler: params.WorkLogHandler,
		authMiddleware: params.AuthMiddleware,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint, the only route without the API key check
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth", r.authMiddleware.RequireAPIKey)
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Auth routes that require an authenticated session
	sessionGroup := e.Group("/auth", r.authMiddleware.RequireAPIKey)
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.GET("/profile", r.authHandler.GetProfile)
		sessionGroup.POST("/logout/all", r.authHandler.LogoutAll)
	}

	// API v1 routes
	apiV1 := e.Group("/api/v1", r.authMiddleware.RequireAPIKey)
	apiV1.Use(r.authMiddleware.Authenticate) // All API v1 routes require authentication

	// Access validation routes
	accessGroup := apiV1.Group("/access")
	{
		accessGroup.POST("/qr", r.accessHandler.ValidateQR)
		accessGroup.POST("/nfc", r.accessHandler.ValidateNFC)
		accessGroup.GET("/history", r.accessHandler.GetHistory)
	}

	// Branch routes
	branchesGroup := apiV1.Group("/branches")
	{
		branchesGroup.GET("/nearby", r.branchHandler.GetNearbyBranches)
		branchesGroup.GET("/:id/qr", r.branchHandler.GetEntranceQR)
		branchesGroup.POST("/:id/entry", r.branchHandler.CheckInEntry)
		branchesGroup.POST("/:id/exit", r.branchHandler.CheckInExit)
	}

	// Remote-work logging routes
	workLogGroup := apiV1.Group("/worklog")
	{
		workLogGroup.POST("/entry", r.workLogHandler.LogEntry)
		workLogGroup.POST("/exit", r.workLogHandler.LogExit)
		workLogGroup.GET("/history", r.workLogHandler.GetHistory)
	}
}
