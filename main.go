package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tessera-ai/eventgate/internal/broker"
	"github.com/tessera-ai/eventgate/internal/config"
	"github.com/tessera-ai/eventgate/internal/hub"
	"github.com/tessera-ai/eventgate/internal/resolver"
	"github.com/tessera-ai/eventgate/internal/service"
	"github.com/tessera-ai/eventgate/internal/store"
	v1 "github.com/tessera-ai/eventgate/internal/transport/http/v1"
	"github.com/tessera-ai/eventgate/internal/transport/ws"
	"github.com/tessera-ai/eventgate/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting eventgate...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("WebSocket Port: %d", cfg.WSPort)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize broker and service
	eventBroker := broker.New()
	svc := service.New(db, eventBroker, policyEngine, cfg)

	// Initialize resolver registry with the service as data source
	registry := resolver.NewRegistry(svc)

	// Initialize hub
	connectionHub := hub.NewHub()
	go connectionHub.Run()

	// Initialize WebSocket server and start draining events into the hub
	wsServer := ws.NewServer(cfg, connectionHub, registry, eventBroker)
	go wsServer.Run()

	// Initialize HTTP handler
	h := v1.NewHandler(svc, registry, connectionHub)

	// Create API Echo server
	apiServer := echo.New()
	apiServer.HideBanner = true

	// Middleware
	apiServer.Use(middleware.Logger())
	apiServer.Use(middleware.Recover())
	apiServer.Use(middleware.CORS())

	// Register API routes
	h.RegisterRoutes(apiServer)

	// Create WebSocket Echo server
	wsEcho := echo.New()
	wsEcho.HideBanner = true
	wsEcho.HidePort = true
	wsEcho.Use(middleware.Logger())
	wsEcho.Use(middleware.Recover())
	wsEcho.GET("/ws", wsServer.HandleWebSocket)

	// Start API server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := apiServer.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	// Start WebSocket server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.WSPort)
		if err := wsEcho.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start WebSocket server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)
	log.Printf("WebSocket server started on port %d", cfg.WSPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down eventgate...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown both servers
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown API server gracefully: %v", err)
	}
	if err := wsEcho.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown WebSocket server gracefully: %v", err)
	}

	log.Println("Eventgate stopped")
}
