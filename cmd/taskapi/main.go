package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager/internal/config"
	"github.com/yukikurage/taskmanager/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("Server initialization failed: %v", err)
	}

	s.Run()
}
