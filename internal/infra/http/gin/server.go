package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayquote/internal/infra/config"
	"stayquote/internal/infra/obs"
)

type Handlers struct {
	Public    PublicHTTP
	Admin     AdminHTTP
	AdminAuth gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Public != nil {
		api.GET("/availability", h.Public.Availability)
		api.GET("/quote", h.Public.Quote)
		api.POST("/quote-requests", h.Public.SubmitQuoteRequest)
		api.GET("/content", h.Public.SiteContent)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		if h.AdminAuth != nil {
			admin.Use(h.AdminAuth)
		}
		admin.GET("/blocked-dates", h.Admin.ListBlockedDates)
		admin.POST("/blocked-dates", h.Admin.AddBlockedDates)
		admin.DELETE("/blocked-dates/:id", h.Admin.DeleteBlockedDates)
		admin.GET("/stay-rules", h.Admin.ListStayRules)
		admin.POST("/stay-rules", h.Admin.AddStayRule)
		admin.DELETE("/stay-rules/:id", h.Admin.DeleteStayRule)
		admin.GET("/pricing-seasons", h.Admin.ListPricingSeasons)
		admin.POST("/pricing-seasons", h.Admin.AddPricingSeason)
		admin.DELETE("/pricing-seasons/:id", h.Admin.DeletePricingSeason)
		admin.GET("/quote-requests", h.Admin.ListQuoteRequests)
		admin.PATCH("/quote-requests/:id/status", h.Admin.UpdateQuoteRequestStatus)
		admin.GET("/content", h.Admin.ListContent)
		admin.PUT("/content/:key", h.Admin.PutContent)
	}
	return router
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
