// internal/mockbackend/server.go
package mockbackend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

// PlatformName is reported by the health endpoint.
const PlatformName = "SOKO AERIAL OSINT"

const shutdownTimeout = 5 * time.Second

// Server is a local stand-in for the investigation backend.
type Server struct {
	store   *Store
	scanner Scanner
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
	engine  *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithScanner replaces the fixture scanner.
func WithScanner(scanner Scanner) Option {
	return func(s *Server) { s.scanner = scanner }
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.Named("mockbackend")
		}
	}
}

// WithClock sets the time source used for analysis timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer wires the routes over store.
func NewServer(store *Store, opts ...Option) *Server {
	s := &Server{
		store:   store,
		metrics: NewMetrics(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scanner == nil {
		s.scanner = NewFixtureScanner(s.now)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.Middleware(), corsMiddleware())

	r.GET("/api/health", s.health)
	r.GET("/api/investigations", s.listInvestigations)
	r.POST("/api/investigations", s.createInvestigation)
	r.POST("/api/investigate/:id", s.runInvestigation)
	r.GET("/api/investigations/:id", s.getInvestigation)
	r.DELETE("/api/investigations/:id", s.deleteInvestigation)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	s.engine = r
	return s
}

// Handler returns the HTTP handler, for httptest or a custom listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	s.logger.Info("Mock backend listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down mock backend")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader(api.RequestIDHeader)),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+api.RequestIDHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// investigationID parses the :id route parameter. Non-integer ids do not match
// the route, as with an int converter.
func investigationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online", "platform": PlatformName})
}

func (s *Server) listInvestigations(c *gin.Context) {
	invs, err := s.store.ListInvestigations(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

type createRequest struct {
	Username string `json:"username"`
}

func (s *Server) createInvestigation(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	inv, err := s.store.CreateInvestigation(c.Request.Context(), username)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (s *Server) runInvestigation(c *gin.Context) {
	id, ok := investigationID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	inv, err := s.store.GetInvestigation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Investigation not found"})
		return
	} else if err != nil {
		s.internalError(c, err)
		return
	}

	if err := s.store.SetStatus(ctx, id, api.StatusRunning); err != nil {
		s.internalError(c, err)
		return
	}

	start := time.Now()
	result, err := s.investigate(ctx, inv)
	if err != nil {
		s.metrics.ObserveRun(time.Since(start), OutcomeError)
		// The request context may be gone; record the failure regardless.
		if setErr := s.store.SetStatus(context.WithoutCancel(ctx), id, api.StatusFailed); setErr != nil {
			s.logger.Error("Failed to mark investigation failed", zap.Int64("investigation_id", id), zap.Error(setErr))
		}
		s.internalError(c, err)
		return
	}
	s.metrics.ObserveRun(time.Since(start), OutcomeSuccess)
	c.JSON(http.StatusOK, result)
}

// runResult is the body of a successful run.
type runResult struct {
	InvestigationID int64                  `json:"investigation_id"`
	Username        string                 `json:"username"`
	Status          api.Status             `json:"status"`
	PlatformResults report.PlatformResults `json:"platform_results"`
	DetailedData    detailedData           `json:"detailed_data"`
	Analysis        report.Analysis        `json:"analysis"`
}

type detailedData struct {
	Reddit report.Reddit `json:"reddit"`
	GitHub report.GitHub `json:"github"`
}

// investigate scans, stores one finding per platform plus the analysis
// finding, and marks the investigation completed.
func (s *Server) investigate(ctx context.Context, inv api.Investigation) (*runResult, error) {
	results, err := s.scanner.SearchUsername(ctx, inv.Username)
	if err != nil {
		return nil, fmt.Errorf("platform search failed: %w", err)
	}
	reddit, err := s.scanner.Reddit(ctx, inv.Username)
	if err != nil {
		return nil, fmt.Errorf("reddit lookup failed: %w", err)
	}
	github, err := s.scanner.GitHub(ctx, inv.Username)
	if err != nil {
		return nil, fmt.Errorf("github lookup failed: %w", err)
	}

	findings := make([]api.Finding, 0, len(results.Platforms)+1)
	for _, p := range results.Platforms {
		data, err := json.MarshalToString(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s result: %w", p.Platform, err)
		}
		findings = append(findings, api.Finding{
			InvestigationID: inv.ID,
			Platform:        p.Platform,
			Username:        inv.Username,
			ProfileURL:      p.URL,
			Data:            data,
			Found:           p.Found,
		})
	}

	analysis := Analyze(inv.Username, results, &reddit, &github, s.now())
	body, err := report.Marshal(report.Body{
		Analysis:        analysis,
		PlatformResults: results,
		Reddit:          &reddit,
		GitHub:          &github,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}
	findings = append(findings, api.Finding{
		InvestigationID: inv.ID,
		Platform:        report.AnalysisPlatform,
		Username:        inv.Username,
		Data:            body,
		Found:           true,
	})

	if err := s.store.AddFindings(ctx, findings); err != nil {
		return nil, err
	}
	if err := s.store.SetStatus(ctx, inv.ID, api.StatusCompleted); err != nil {
		return nil, err
	}

	s.logger.Info("Investigation completed",
		zap.Int64("investigation_id", inv.ID),
		zap.String("risk_level", analysis.RiskLevel),
	)
	return &runResult{
		InvestigationID: inv.ID,
		Username:        inv.Username,
		Status:          api.StatusCompleted,
		PlatformResults: results,
		DetailedData:    detailedData{Reddit: reddit, GitHub: github},
		Analysis:        analysis,
	}, nil
}

type detailResponse struct {
	Investigation api.Investigation `json:"investigation"`
	Findings      []api.Finding     `json:"findings"`
	Network       GraphPayload      `json:"network"`
	Stats         api.GraphStats    `json:"stats"`
}

func (s *Server) getInvestigation(c *gin.Context) {
	id, ok := investigationID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	inv, err := s.store.GetInvestigation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	} else if err != nil {
		s.internalError(c, err)
		return
	}

	findings, err := s.store.Findings(ctx, id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	network, stats := BuildNetwork(inv, findings)
	c.JSON(http.StatusOK, detailResponse{
		Investigation: inv,
		Findings:      findings,
		Network:       network,
		Stats:         stats,
	})
}

func (s *Server) deleteInvestigation(c *gin.Context) {
	id, ok := investigationID(c)
	if !ok {
		return
	}
	err := s.store.DeleteInvestigation(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Investigation not found"})
		return
	} else if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Investigation deleted successfully"})
}
