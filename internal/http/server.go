package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"boutique/internal/backup"
	"boutique/internal/cache"
	"boutique/internal/core"
	"boutique/internal/services"
	"boutique/internal/storage"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	repo        *storage.Repository
	snapshots   *backup.Manager
	taxonomy    core.Taxonomy
	rateLimiter *rateLimiter

	// Serialized report responses, flushed on every ledger write.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. The snapshot manager may be nil when the worker owns
// snapshots exclusively.
func NewServer(addr string, ledger *services.LedgerService, repo *storage.Repository, snapshots *backup.Manager, taxonomy core.Taxonomy) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:       ledger,
		repo:         repo,
		snapshots:    snapshots,
		taxonomy:     taxonomy,
		rateLimiter:  newRateLimiter(),
		reportCache:  cache.NewLRUCache[[]byte](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("POST /api/purchases", s.withSecurityHeaders(s.handleCreatePurchase))
	mux.HandleFunc("GET /api/purchases", s.withSecurityHeaders(s.handleListPurchases))
	mux.HandleFunc("GET /api/purchases/{id}", s.withSecurityHeaders(s.handleGetPurchase))
	mux.HandleFunc("PUT /api/purchases/{id}", s.withSecurityHeaders(s.handleUpdatePurchase))
	mux.HandleFunc("DELETE /api/purchases/{id}", s.withSecurityHeaders(s.handleDeletePurchase))

	mux.HandleFunc("POST /api/cash-entries", s.withSecurityHeaders(s.handleCreateCashEntry))
	mux.HandleFunc("GET /api/cash-entries", s.withSecurityHeaders(s.handleListCashEntries))
	mux.HandleFunc("POST /api/credits", s.withSecurityHeaders(s.handleCreateCredit))
	mux.HandleFunc("GET /api/credits", s.withSecurityHeaders(s.handleListCredits))
	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("POST /api/movements", s.withSecurityHeaders(s.handleCreateMovement))
	mux.HandleFunc("GET /api/inventory", s.withSecurityHeaders(s.handleInventory))

	mux.HandleFunc("GET /api/reports/totals", s.withSecurityHeaders(s.handleReportTotals))
	mux.HandleFunc("GET /api/reports/group-by", s.withSecurityHeaders(s.handleReportGroupBy))
	mux.HandleFunc("GET /api/reports/daily-series", s.withSecurityHeaders(s.handleReportDailySeries))
	mux.HandleFunc("GET /api/reports/monthly", s.withSecurityHeaders(s.handleReportMonthly))

	mux.HandleFunc("GET /api/export/csv", s.withSecurityHeaders(s.handleExportCSV))
	mux.HandleFunc("GET /api/export/pdf", s.withSecurityHeaders(s.handleExportPDF))
	mux.HandleFunc("GET /api/export/cash-csv", s.withSecurityHeaders(s.handleExportCashCSV))
	mux.HandleFunc("GET /api/export/cash-pdf", s.withSecurityHeaders(s.handleExportCashPDF))

	mux.HandleFunc("GET /api/snapshots", s.withSecurityHeaders(s.handleListSnapshots))
	mux.HandleFunc("POST /api/snapshots", s.withSecurityHeaders(s.handleCreateSnapshot))
	mux.HandleFunc("POST /api/snapshots/{id}/restore", s.withSecurityHeaders(s.handleRestoreSnapshot))

	mux.HandleFunc("GET /api/taxonomy", s.withSecurityHeaders(s.handleTaxonomy))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Mutations are rate limited per client, reads are not.
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.CountPurchases(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
