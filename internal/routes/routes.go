package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter registers every route group on a fresh engine. Callers
// attach their own middleware and run the server.
func SetupRouter() *gin.Engine {
	r := gin.New()

	AuthRoutes(r)
	AccountsRoutes(r)
	DashboardRoutes(r)
	TerminalRoutes(r)
	ReportsRoutes(r)
	PublicRoutes(r)

	return r
}
