package handlers

import (
	"net/http"

	"ohms_lab/internal/logger"
	"ohms_lab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetricsHandler serves /metrics from h instead of the default Prometheus registry.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) { hd.metrics = h }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, metrics: promhttp.Handler()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(h.metrics))

	router.GET("/health", h.health)
	router.GET("/lesson", h.getLesson)
	router.POST("/sessions", h.createSession)

	h.registerAPIRoutes(router)

	// Browsers cannot set headers on a WebSocket handshake, so the token rides in the query.
	router.GET("/ws", h.sessionMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Stateless; no session needed.
		api.GET("/ohm", h.calculateCurrent)
	}

	authed := api.Group("", h.sessionMiddleware)
	{
		h.registerSessionRoutes(authed)
		h.registerLabRoutes(authed)
		h.registerLogRoutes(authed)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	sess := api.Group("/session")
	{
		sess.GET("", h.getSession)
		sess.DELETE("", h.endSession)
		// Body example: {"section":"Protection"}
		sess.PUT("/section", h.selectSection)
	}
}

func (h *Handler) registerLabRoutes(api *gin.RouterGroup) {
	circuit := api.Group("/circuit")
	{
		// Body example: {"voltage":12,"resistance":100}
		circuit.PUT("", h.setCircuit)
		circuit.GET("/chart.svg", h.circuitChart)
	}

	short := api.Group("/short-circuit")
	{
		short.POST("/trigger", h.triggerShort)
		short.POST("/reset", h.resetShort)
	}

	api.POST("/quiz/:id/toggle", h.toggleQuiz)
	// Body example: {"script":"protection"} or {"text":"..."}
	api.POST("/narration", h.narrate)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
