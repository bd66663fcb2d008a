package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"shopify-insights/competitors"
	"shopify-insights/insights"
	"shopify-insights/internal/types"
	"shopify-insights/storage"
	"shopify-insights/utils"
)

// APIRequest represents the request body for the insights endpoints
type APIRequest struct {
	WebsiteURL string `json:"website_url"`
}

// APIError represents an error response
type APIError struct {
	Detail string `json:"detail"`
}

// Server holds the API server configuration
type Server struct {
	logger *logrus.Logger
	config *types.Config
	repo   *storage.Repository
	probe  *utils.HTTPClient
}

// NewServer creates a new API server
func NewServer() (*Server, error) {
	// Load .env file if present
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.DefaultConfig()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "insights.db"
	}
	repo, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open insights database: %w", err)
	}

	return &Server{
		logger: logger,
		config: config,
		repo:   repo,
		probe:  utils.NewHTTPClient(config, logger),
	}, nil
}

// handleInsights extracts and persists insights for one storefront.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	storeURL, ok := s.validateStore(ctx, w, req.WebsiteURL)
	if !ok {
		return
	}

	service := insights.NewService(storeURL, s.config, s.logger)
	defer service.Close()

	result, err := service.Insights(ctx)
	if err != nil {
		s.logger.Errorf("Extraction failed for %s: %v", storeURL, err)
		s.sendError(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.repo.Save(ctx, result); err != nil {
		s.logger.Errorf("Failed to persist insights for %s: %v", storeURL, err)
		s.sendError(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, http.StatusOK, result)
}

// handleCompetitors discovers competitor storefronts and extracts insights
// for each.
func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 5 {
			s.sendError(w, "limit must be between 1 and 5", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	storeURL, ok := s.validateStore(ctx, w, req.WebsiteURL)
	if !ok {
		return
	}

	discovery := competitors.NewService(storeURL, s.config, s.logger)
	defer discovery.Close()

	results := discovery.CompetitorInsights(ctx, limit)
	if results == nil {
		results = []*types.StoreInsights{}
	}
	for _, result := range results {
		if err := s.repo.Save(ctx, result); err != nil {
			s.logger.Errorf("Failed to persist insights for %s: %v", result.StoreURL, err)
			s.sendError(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	s.sendJSON(w, http.StatusOK, results)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*APIRequest, bool) {
	// Set CORS headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return nil, false
	}
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if req.WebsiteURL == "" {
		s.sendError(w, "website_url is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) validateStore(ctx context.Context, w http.ResponseWriter, websiteURL string) (string, bool) {
	storeURL, err := insights.ValidateStore(ctx, s.probe, websiteURL)
	switch {
	case errors.Is(err, insights.ErrUnreachable):
		s.sendError(w, "Website not found or not accessible", http.StatusNotFound)
		return "", false
	case errors.Is(err, insights.ErrNotShopify):
		s.sendError(w, "The provided URL is not a Shopify store", http.StatusBadRequest)
		return "", false
	case err != nil:
		s.sendError(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return "", false
	}
	return storeURL, true
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(APIError{Detail: message}); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// Start starts the API server
func (s *Server) Start(port string) error {
	http.HandleFunc("/api/v1/insights", s.handleInsights)
	http.HandleFunc("/api/v1/insights/competitors", s.handleCompetitors)
	http.HandleFunc("/health", s.handleHealth)

	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /api/v1/insights             - Extract insights for a Shopify store")
	s.logger.Info("  POST /api/v1/insights/competitors - Extract insights for competitor stores")
	s.logger.Info("  GET  /health                      - Health check")

	return http.ListenAndServe(":"+port, nil)
}

// Close closes the server and cleanup resources
func (s *Server) Close() {
	if s.probe != nil {
		s.probe.Close()
	}
	if s.repo != nil {
		s.repo.Close()
	}
}

func main() {
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
	}

	server, err := NewServer()
	if err != nil {
		log.Fatal(err)
	}
	defer server.Close()

	log.Fatal(server.Start(serverPort))
}
