package routes

import (
	"rdfs_terminal/internal/controllers"

	"github.com/gin-gonic/gin"
)

// PublicRoutes are the unauthenticated rider-facing feeds.
func PublicRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/queue", controllers.PublicQueueAPI)
		api.GET("/tv-display", controllers.TVDisplayAPI)
		api.GET("/settings", controllers.PublicSettingsAPI)
	}
}
