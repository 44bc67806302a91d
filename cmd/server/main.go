package main

import (
	"log"
	"net/http"
	"os"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/logger"
	"rdfs_terminal/internal/middleware"
	"rdfs_terminal/internal/routes"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router
	r := routes.SetupRouter()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(ginlog.SetLogger())

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	log.Printf("Terminal server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
