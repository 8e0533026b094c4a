package handler

import (
	"net/http"

	"class-booking/internal/handler/api"
	"class-booking/internal/handler/middleware"
	"class-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Slots    *api.SlotHandler
	Bookings *api.BookingHandler
	Sessions *api.SessionHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger.GetSlogLogger()))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger.GetSlogLogger()))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler(logger.GetSlogLogger()))
}

func setupRoutes(engine *gin.Engine, h Handlers) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup.Group("/slots"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Slots.List},
			{Method: http.MethodPost, Path: "", Handler: h.Slots.Create},
			{Method: http.MethodPost, Path: "/refresh", Handler: h.Slots.Refresh},
			{Method: http.MethodPost, Path: "/import", Handler: h.Slots.Import},
			{Method: http.MethodGet, Path: "/export", Handler: h.Slots.Export},
			{Method: http.MethodGet, Path: "/stream", Handler: h.Slots.Stream},
		})

		addRoutes(apiGroup.Group("/bookings"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Bookings.List},
			{Method: http.MethodGet, Path: "/export", Handler: h.Bookings.Export},
		})

		addRoutes(apiGroup.Group("/sessions"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Sessions.Open},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Sessions.Get},
			{Method: http.MethodDelete, Path: "/:id", Handler: h.Sessions.Close},
			{Method: http.MethodPost, Path: "/:id/select", Handler: h.Sessions.Select},
			{Method: http.MethodPut, Path: "/:id/name", Handler: h.Sessions.SetName},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Sessions.Cancel},
			{Method: http.MethodPost, Path: "/:id/submit", Handler: h.Sessions.Submit},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
