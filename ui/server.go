package ui

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"datadigest/adapters/datareadiness/coercer"
	"datadigest/adapters/excel"
	"datadigest/internal"
	"datadigest/internal/analysis"
	"datadigest/internal/config"
	processor "datadigest/internal/dataset"
	"datadigest/internal/widgets"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the dataset analysis API
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *internal.Logger

	store      *processor.Store
	coercer    *coercer.TypeCoercer
	reader     *excel.DataReader
	summarizer *analysis.Summarizer
	registry   *widgets.Registry
	planner    *widgets.Planner
	opts       analysis.Options

	maxUploadBytes int64
	gatherer       prometheus.Gatherer
}

// NewServer wires the analysis pipeline behind a gin router. A nil gatherer
// serves the default Prometheus registry on /metrics.
func NewServer(cfg *config.Config, gatherer prometheus.Gatherer, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	gin.SetMode(cfg.Server.GinMode)

	opts := cfg.AnalysisOptions()
	typeCoercer := coercer.NewTypeCoercer(cfg.CoercerConfig())
	registry := widgets.DefaultRegistry()

	s := &Server{
		router:         gin.New(),
		logger:         logger.With("Server"),
		store:          processor.NewStore(),
		coercer:        typeCoercer,
		reader:         excel.NewDataReader(cfg.ReaderConfig(), typeCoercer, logger),
		summarizer:     analysis.NewSummarizer(opts, logger),
		registry:       registry,
		planner:        widgets.NewPlanner(registry, opts, logger),
		opts:           opts,
		maxUploadBytes: cfg.MaxUploadBytes(),
		gatherer:       gatherer,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	api.GET("/widgets", s.handleWidgets)

	datasets := api.Group("/datasets")
	datasets.POST("", s.handleUpload)
	datasets.GET("/current", s.handleCurrent)
	datasets.DELETE("/current", s.handleClear)
	datasets.GET("/:id/summary", s.handleSummary)
	datasets.GET("/:id/summary/text", s.handleSummaryText)
	datasets.GET("/:id/report", s.handleReport)
	datasets.GET("/:id/aggregations/relevant", s.handleRelevantAggregation)
	datasets.GET("/:id/context", s.handleContext)
	datasets.POST("/:id/dashboard", s.handleDashboard)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
