// Package server exposes the personalization pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/parsing"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Pipeline pipeline.Config
}

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	runner     *pipeline.Runner
	client     llm.Client
	extractor  parsing.TextExtractor
	validate   *validator.Validate
	log        *zap.Logger
}

// New builds the server. The model client is mandatory: every route except
// health and export calls the model.
func New(cfg Config, client llm.Client, log *zap.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("model client is required")
	}

	runner, err := pipeline.NewRunner(client, cfg.Pipeline, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		runner:    runner,
		client:    client,
		extractor: parsing.PlainTextExtractor{},
		validate:  validator.New(),
		log:       log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/enhance", s.handleEnhance)
	mux.HandleFunc("POST /v1/enhance/stream", s.handleEnhanceStream)
	mux.HandleFunc("POST /v1/parse/resume", s.handleParseResume)
	mux.HandleFunc("POST /v1/parse/job", s.handleParseJob)
	mux.HandleFunc("POST /v1/export/html", s.handleExportHTML)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // streaming runs hold the response open
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Start listens until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := s.client.Close(); err != nil {
		s.log.Warn("model client close failed", zap.Error(err))
	}
	s.log.Info("server stopped")
	return nil
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
