package http

import (
	"github.com/gin-gonic/gin"

	"github.com/creda-technologies/hitch/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, wellKnown *WellKnownHandler) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	// SEP-10 web authentication
	router.GET("/auth", handlers.Challenge)
	router.POST("/auth", handlers.Token)

	// SEP-1 metadata document
	router.GET("/.well-known/stellar.toml", wellKnown.Document)

	// Routes requiring a session token
	protected := router.Group("/")
	protected.Use(AuthMiddleware(authService))
	{
		protected.GET("/session", handlers.Session)
	}

	return router
}
