package routes

import (
	"rdfs_terminal/internal/controllers"
	"rdfs_terminal/internal/middleware"
	"rdfs_terminal/internal/models"

	"github.com/gin-gonic/gin"
)

func DashboardRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", controllers.AdminDashboard)
		admin.GET("/dashboard/data", controllers.AdminDashboardData)
		admin.GET("/settings", controllers.GetSystemSettings)
		admin.PATCH("/settings", controllers.UpdateSystemSettings)
	}

	staff := r.Group("/staff")
	staff.Use(middleware.RequireAuthWithRole(models.RoleStaffAdmin))
	{
		staff.GET("/dashboard", controllers.StaffDashboard)
	}
}
