package routes

import (
	"rdfs_terminal/internal/controllers"
	"rdfs_terminal/internal/middleware"
	"rdfs_terminal/internal/models"

	"github.com/gin-gonic/gin"
)

// AccountsRoutes covers user administration. Listing and managing users
// is open to both admin roles; deleting accounts is admin only.
func AccountsRoutes(r *gin.Engine) {
	accounts := r.Group("/accounts")
	accounts.Use(middleware.RequireAuthWithRole(models.RoleAdmin, models.RoleStaffAdmin))
	{
		accounts.GET("/users", controllers.ListUsers)
		accounts.POST("/users", controllers.CreateUser)
		accounts.PATCH("/users/:id", controllers.UpdateUser)
	}

	admin := r.Group("/accounts")
	admin.Use(middleware.RequireAuthWithRole(models.RoleAdmin))
	{
		admin.DELETE("/users/:id", controllers.DeleteUser)
	}
}
