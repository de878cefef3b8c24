// Package handler is the serverless entry point. Every request under /api is
// rewritten to this function, which serves it with the same router as the
// standalone server.
package handler

import (
	"log"
	"net/http"
	"os"
	"sync"

	appLogger "github.com/FACorreiaa/notion-city-proxy/app/logger"
	"github.com/FACorreiaa/notion-city-proxy/config"
	"github.com/FACorreiaa/notion-city-proxy/internal/container"
)

var (
	router http.Handler
	once   sync.Once
)

// setup runs on cold start. A configuration error kills the function
// instance before it serves anything.
func setup() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(cfg.Mode, os.Stdout)
	c, err := container.NewContainer(&cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Error building container: %v", err)
	}
	router = c.Router()
}

// Handler is the entry point for Vercel's Go runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	router.ServeHTTP(w, r)
}
