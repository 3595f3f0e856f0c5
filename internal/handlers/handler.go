package handlers

import (
	"net/http"
	"time"

	"furnace_trends/internal/logger"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options holds the request defaults the HTTP layer fills in when a query
// parameter is omitted.
type Options struct {
	Hour               int
	TrendLookbackDays  int
	TrendStart         time.Time // zero: derived from TrendLookbackDays
	TrendEnd           time.Time // zero: today
	TrendParams        []string
	KPILookbackDays    int
	ReportLookbackDays int
	WSDefaultInterval  time.Duration
	WSMaxInterval      time.Duration
	Metrics            http.Handler     // served on /metrics when set
	Now                func() time.Time // defaults to time.Now
}

const (
	defaultTrendParam = "Set V"
	defaultWSInterval = 30 * time.Second
	defaultWSMax      = 10 * time.Minute
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.TrendParams) == 0 {
		opts.TrendParams = []string{defaultTrendParam}
	}
	if opts.WSDefaultInterval <= 0 {
		opts.WSDefaultInterval = defaultWSInterval
	}
	if opts.WSMaxInterval < opts.WSDefaultInterval {
		opts.WSMaxInterval = defaultWSMax
		if opts.WSMaxInterval < opts.WSDefaultInterval {
			opts.WSMaxInterval = opts.WSDefaultInterval
		}
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware, h.accessLogMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}

	h.registerAPIRoutes(router)

	router.GET("/ws/kpi", h.wsKPI)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/parameters", h.listParameters)
		api.GET("/trend", h.getTrend)
		api.GET("/kpi", h.getKPI)
		api.GET("/readings", h.getReadings)
	}
}

// today is the current calendar date in UTC.
func (h *Handler) today() time.Time {
	now := h.opts.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
