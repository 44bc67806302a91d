package routes

import (
	"rdfs_terminal/internal/controllers"
	"rdfs_terminal/internal/middleware"
	"rdfs_terminal/internal/models"

	"github.com/gin-gonic/gin"
)

func ReportsRoutes(r *gin.Engine) {
	reports := r.Group("/reports")
	reports.Use(middleware.RequireAuthWithRole(models.RoleAdmin))
	{
		reports.GET("", controllers.ReportsHome)
		reports.GET("/deposit-analytics", controllers.DepositAnalytics)
		reports.GET("/deposits-vs-fees", controllers.DepositsVsEntryFees)
		reports.GET("/deposits-vs-fees/export", controllers.ExportDepositsVsFeesCSV)
		reports.GET("/profit", controllers.ProfitReport)
		reports.GET("/profit/export", controllers.ExportProfitReportCSV)
	}
}
