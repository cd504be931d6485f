// Package server provides the HTTP control surface for the campaign composer.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/config"
	"github.com/jonathan/campaign-composer/internal/db"
	"github.com/jonathan/campaign-composer/internal/delivery"
	"github.com/jonathan/campaign-composer/internal/dispatch"
	"github.com/jonathan/campaign-composer/internal/essence"
	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/pitching"
	"github.com/jonathan/campaign-composer/internal/prospects"
	"github.com/jonathan/campaign-composer/internal/research"
	"github.com/jonathan/campaign-composer/internal/segmenting"
	"github.com/jonathan/campaign-composer/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	db            *db.DB
	sessions      *sessionRegistry
	newController func() *campaign.Controller
	jwtService    *JWTService
	userService   *UserService
	authHandler   *AuthHandler
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
	DeliveryURL string
	UseBrowser  bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	// Connect to database
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	s := &Server{
		db:       database,
		sessions: newSessionRegistry(),
	}

	// Each run gets its own controller and store; the executors are shared.
	executors := []campaign.Executor{
		&essence.Executor{Client: client},
		&prospects.Executor{Provider: database},
		&research.Executor{Client: client, Provider: database, Opts: research.Options{UseBrowser: cfg.UseBrowser}},
		&segmenting.Executor{Client: client},
		&pitching.Executor{Client: client},
		dispatch.NewExecutor(delivery.NewHTTPEngine(cfg.DeliveryURL)),
	}
	s.newController = func() *campaign.Controller {
		return campaign.New(campaign.NewStore(), executors)
	}

	// Initialize authentication services
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stages", s.handleListStages)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	// Run routes require a bearer token.
	runs := http.NewServeMux()
	runs.HandleFunc("POST /runs", s.handleCreateRun)
	runs.HandleFunc("GET /runs/{run_id}", s.handleGetRun)
	runs.HandleFunc("DELETE /runs/{run_id}", s.handleAbandonRun)
	runs.HandleFunc("POST /runs/{run_id}/stages/{stage}", s.handleRunStage)
	runs.HandleFunc("POST /runs/{run_id}/stages/{stage}/stream", s.handleRunStageStream)
	runs.HandleFunc("GET /runs/{run_id}/stages/{stage}/artifact", s.handleGetArtifact)
	runs.HandleFunc("POST /runs/{run_id}/advance", s.handleAdvance)
	runs.HandleFunc("POST /runs/{run_id}/retreat", s.handleRetreat)
	runs.HandleFunc("POST /runs/{run_id}/goto/{stage}", s.handleGoTo)
	runs.HandleFunc("PATCH /runs/{run_id}/segments/{index}", s.handleEditSegment)
	runs.HandleFunc("POST /runs/{run_id}/reset", s.handleResetRun)
	mux.Handle("/runs", middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(runs))
	mux.Handle("/runs/", middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(runs))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for stage executions
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListStages returns the ordered stage catalog.
func (s *Server) handleListStages(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"stages": campaign.Stages()})
}

// handleRegister handles user registration requests.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Register(w, r)
}

// handleLogin handles user login requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Login(w, r)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
