// Package server exposes analysis results over HTTP: JSON series and signal
// endpoints plus rendered chart pages.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tadawul-lab/tasi-analyzer/internal/analysis"
	"github.com/tadawul-lab/tasi-analyzer/internal/chart"
	"github.com/tadawul-lab/tasi-analyzer/internal/logger"
	"github.com/tadawul-lab/tasi-analyzer/internal/symbols"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"go.uber.org/zap"
)

const defaultRangeYears = 1

// Server serves analysis reports for symbols held in the backing datasource.
type Server struct {
	analyzer   *analysis.Analyzer
	logger     *logger.Logger
	httpServer *http.Server
}

// NewServer creates a server bound to addr.
func NewServer(addr string, analyzer *analysis.Analyzer, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		analyzer: analyzer,
		logger:   log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/symbols", s.handleSymbols).Methods(http.MethodGet)
	router.HandleFunc("/api/{symbol}/series", s.handleSeries).Methods(http.MethodGet)
	router.HandleFunc("/api/{symbol}/signals", s.handleSignals).Methods(http.MethodGet)
	router.HandleFunc("/api/{symbol}/latest", s.handleLatest).Methods(http.MethodGet)
	router.HandleFunc("/charts/{symbol}", s.handleChart).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the underlying HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, symbols.All())
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	report, ok := s.analyze(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  report.Symbol,
		"series":  report.Series,
		"summary": report.Summary,
	})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	report, ok := s.analyze(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  report.Symbol,
		"signals": report.Signals,
		"summary": report.Summary,
	})
}

// handleLatest evaluates every registered indicator against the symbol's
// most recent bar.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["symbol"]

	symbol, err := symbols.Resolve(key)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)

		return
	}

	snapshot, err := s.analyzer.Latest(symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			status = http.StatusNotFound
		}

		s.writeError(w, status, err)

		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	report, ok := s.analyze(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := chart.NewBuilder(report).Render(w); err != nil {
		s.logger.Error("failed to render chart",
			zap.String("symbol", report.Symbol),
			zap.Error(err),
		)
	}
}

// analyze resolves the symbol and date range from the request and runs the
// analyzer. On failure it writes the error response and returns false.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	key := mux.Vars(r)["symbol"]

	symbol, err := symbols.Resolve(key)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)

		return nil, false
	}

	start, end, err := parseRange(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)

		return nil, false
	}

	report, err := s.analyzer.Analyze(symbol, start, end)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			status = http.StatusNotFound
		}

		s.writeError(w, status, err)

		return nil, false
	}

	return report, true
}

// parseRange reads optional start and end query parameters in 2006-01-02
// format. The default range is the trailing year.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(-defaultRangeYears, 0, 0)
	end := now

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDateRange, err, "invalid start date %q", v)
		}

		start = parsed
	}

	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDateRange, err, "invalid end date %q", v)
		}

		end = parsed
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s is not after start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	return start, end, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
