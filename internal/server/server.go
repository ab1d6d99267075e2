package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/pipeline"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
)

// Store is the persistence surface the API needs: job bookkeeping plus
// everything the pipeline requires. *db.DB satisfies it.
type Store interface {
	pipeline.Store
	CreateJob(ctx context.Context, job *db.Job) (*db.Job, error)
	LoadJob(ctx context.Context, companyID int64, jobID uuid.UUID) (*db.Job, error)
	SetJobRequirements(ctx context.Context, jobID uuid.UUID, requirements []string) error
}

// Extractor is the AI surface the API needs. *llm.Extractor satisfies it.
type Extractor interface {
	pipeline.FactExtractor
	ExtractJDRequirements(ctx context.Context, jdText string) []string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	extractor   Extractor
	runner      *pipeline.Runner
	validate    *validator.Validate
	rateLimiter *ratelimit.Limiter
	closeFn     func()
}

// New creates a server wired to PostgreSQL and the Gemini extractor. A
// missing API key is not fatal: the server starts and reports the extraction
// service as unavailable.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}

	var client llm.Client
	reason := ""
	if cfg.GeminiAPIKey == "" {
		reason = "GEMINI_API_KEY is not set"
	} else {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			reason = fmt.Sprintf("failed to initialize Gemini client: %v", err)
			log.Printf("starting with extraction unavailable: %s", reason)
		} else {
			client = gemini
		}
	}
	extractor := llm.NewExtractor(client, cfg.CallsPerMinute, reason)

	s := newServer(database, extractor)
	if cfg.Workers > 0 {
		s.runner.Workers = cfg.Workers
	}
	s.closeFn = func() {
		if client != nil {
			_ = client.Close()
		}
		database.Close()
	}
	s.httpServer.Addr = fmt.Sprintf(":%d", cfg.Port)
	return s, nil
}

// newServer wires routes and middleware around the given dependencies.
// Tests call this directly with in-memory fakes.
func newServer(store Store, extractor Extractor) *Server {
	s := &Server{
		store:       store,
		extractor:   extractor,
		runner:      pipeline.NewRunner(store, extractor),
		validate:    validator.New(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultRules(), 600, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/screen", s.handleScreen)
	mux.HandleFunc("GET /api/screen/{id}", s.handleScreenStatus)
	mux.HandleFunc("POST /api/apply", s.handleApply)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
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

	s.rateLimiter.Stop()
	if s.closeFn != nil {
		s.closeFn()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientIP(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
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

// handleHealth returns server health status, including whether AI extraction
// is currently possible.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":               "ok",
		"extraction_available": s.extractor.Available(),
	}
	if reason := s.extractor.UnavailableReason(); reason != "" {
		resp["extraction_unavailable_reason"] = reason
	}
	s.jsonResponse(w, http.StatusOK, resp)
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

// clientIP extracts the client identifier from the request.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
