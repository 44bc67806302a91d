package routes

import (
	"rdfs_terminal/internal/controllers"
	"rdfs_terminal/internal/middleware"
	"rdfs_terminal/internal/models"

	"github.com/gin-gonic/gin"
)

// TerminalRoutes covers the day-to-day terminal surface: the fleet
// registry, deposits, the approval queue and the live vehicle queue.
func TerminalRoutes(r *gin.Engine) {
	staff := r.Group("/terminal")
	staff.Use(middleware.RequireAuthWithRole(models.RoleAdmin, models.RoleStaffAdmin))
	{
		staff.POST("/drivers", controllers.RegisterDriver)
		staff.GET("/drivers", controllers.ListDrivers)
		staff.GET("/drivers/:id", controllers.GetDriver)
		staff.PATCH("/drivers/:id", controllers.UpdateDriver)
		staff.DELETE("/drivers/:id", controllers.DeleteDriver)

		staff.POST("/vehicles", controllers.RegisterVehicle)
		staff.GET("/vehicles", controllers.ListVehicles)
		staff.GET("/vehicles/:id", controllers.GetVehicle)
		staff.PATCH("/vehicles/:id", controllers.UpdateVehicle)
		staff.DELETE("/vehicles/:id", controllers.DeleteVehicle)
		staff.POST("/vehicles/regenerate-qr", controllers.RegenerateQRCodes)

		staff.POST("/routes", controllers.CreateRoute)
		staff.GET("/routes", controllers.ListRoutes)
		staff.GET("/routes/:id", controllers.GetRoute)
		staff.PATCH("/routes/:id", controllers.UpdateRoute)
		staff.DELETE("/routes/:id", controllers.DeleteRoute)

		staff.GET("/deposits", controllers.DepositsPage)
		staff.POST("/deposits", controllers.CreateDeposit)
		staff.GET("/deposits/export", controllers.ExportDepositsCSV)
		staff.GET("/deposit-receipt/:id", controllers.DepositReceipt)

		staff.GET("/pending-deposits", controllers.PendingDeposits)
		staff.POST("/pending-deposits/:id/decide", controllers.DecideDeposit)

		staff.POST("/queue/entry", controllers.QRScanEntry)
		staff.POST("/queue/exit", controllers.QRScanExit)
		staff.GET("/queue", controllers.QueueData)
		staff.GET("/queue/history", controllers.QueueHistory)
		staff.POST("/queue/:id/start-boarding", controllers.StartBoarding)
		staff.POST("/queue/:id/mark-departed", controllers.MarkDeparted)
		staff.PATCH("/queue/:id/departure", controllers.UpdateDeparture)
	}

	treasurer := r.Group("/treasurer")
	treasurer.Use(middleware.RequireAuthWithRole(models.RoleTreasurer))
	{
		treasurer.GET("/dashboard", controllers.TreasurerDashboard)
		treasurer.POST("/deposits", controllers.RequestDeposit)
		treasurer.GET("/deposits", controllers.TreasurerDeposits)
		treasurer.GET("/deposits/:id", controllers.TreasurerDepositDetails)
		treasurer.GET("/deposits/:id/receipt", controllers.TreasurerDepositReceipt)
	}

	// Form helpers shared by staff deposit entry and treasurer requests.
	ajax := r.Group("/ajax")
	ajax.Use(middleware.RequireAuthWithRole(models.RoleAdmin, models.RoleStaffAdmin, models.RoleTreasurer))
	{
		ajax.GET("/search-drivers", controllers.AjaxSearchDrivers)
		ajax.GET("/validate-or-code", controllers.AjaxValidateORCode)
		ajax.GET("/wallet-balance", controllers.AjaxWalletBalance)
		ajax.GET("/system-settings", controllers.PublicSettingsAPI)
	}
}
