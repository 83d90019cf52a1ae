package v1

import (
	"context"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Config      *config.Config
	Log         *zap.Logger
	Metrics     *metrics.Collector
	MetricsHTTP http.Handler
	JWT         *auth.JWTManager
	Health      func(ctx context.Context) error

	Auth     *service.AuthService
	Identity *service.IdentityService
	Records  *service.RecordService
	Lookup   *service.LookupService
	Reports  *service.ReportService
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Log),
		middleware.Logger(d.Log, d.Metrics),
		cors.New(corsConfig(d.Config.CORS)),
	)

	rl := d.Config.RateLimit
	if rl.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize)))
	}

	r.GET("/healthz", Health(d.Health))
	if d.MetricsHTTP != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHTTP))
	}

	api := r.Group("/api/v1")

	authHandler := NewAuthHandler(d.Auth)
	authGroup := api.Group("/auth")
	if rl.AuthRequestsPerMinute > 0 {
		perMinute := rate.Limit(float64(rl.AuthRequestsPerMinute) / 60)
		authGroup.Use(middleware.RateLimit(middleware.NewIPRateLimiter(perMinute, rl.AuthRequestsPerMinute)))
	}
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	authed := api.Group("", middleware.Authenticate(d.JWT))

	hospitalHandler := NewHospitalHandler(d.Lookup, d.Identity, d.Records)
	hospital := authed.Group("/hospital", middleware.RequireRole(domain.RoleHospital))
	{
		hospital.GET("/patients/:nid", hospitalHandler.GetPatient)
		hospital.GET("/patients/:nid/records", hospitalHandler.ListPatientRecords)
		hospital.POST("/records", hospitalHandler.AddRecord)
	}

	citizenHandler := NewCitizenHandler(d.Identity, d.Records)
	citizenGroup := authed.Group("/citizen", middleware.RequireRole(domain.RoleCitizen))
	{
		citizenGroup.GET("/me", citizenHandler.Me)
		citizenGroup.GET("/records", citizenHandler.Records)
	}

	govHandler := NewGovHandler(d.Reports)
	gov := authed.Group("/gov", middleware.RequireRole(domain.RoleGovernment))
	{
		gov.GET("/reports/overview", govHandler.Overview)
		gov.GET("/reports/demographics", govHandler.Demographics)
		gov.GET("/reports/network", govHandler.Network)
		gov.GET("/reports/insights", govHandler.Insights)
		gov.GET("/institutes", govHandler.Institutes)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found")
	})

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        cfg.MaxAge,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cc
}
