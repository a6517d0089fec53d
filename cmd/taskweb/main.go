package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager/internal/config"
	"github.com/yukikurage/taskmanager/internal/server"
	"github.com/yukikurage/taskmanager/internal/web"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	app, err := web.New(web.Options{APIBaseURL: cfg.APIBaseURL, Logger: logger})
	if err != nil {
		log.Fatalf("Web client initialization failed: %v", err)
	}

	store, err := web.NewSessionStore(cfg)
	if err != nil {
		log.Fatalf("Session store initialization failed: %v", err)
	}

	server.Serve(":"+cfg.WebPort, app.Router(store), "Web client")
}
