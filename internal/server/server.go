package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	activationdomain "github.com/odontix/odontix/internal/activation/domain"
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/internal/config"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	obsmetrics "github.com/odontix/odontix/internal/observability/metrics"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	activationSvc   activationdomain.Service
	catalogSvc      catalogdomain.Service
	graphSvc        graphdomain.Service
	subscriptionSvc subscriptiondomain.Service
	auditSvc        auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	ActivationSvc   activationdomain.Service
	CatalogSvc      catalogdomain.Service
	GraphSvc        graphdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	AuditSvc        auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		activationSvc:   p.ActivationSvc,
		catalogSvc:      p.CatalogSvc,
		graphSvc:        p.GraphSvc,
		subscriptionSvc: p.SubscriptionSvc,
		auditSvc:        p.AuditSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func RegisterRoutes(s *Server) {
	s.registerTenantRoutes()
	s.registerAdminRoutes()
}

// registerTenantRoutes wires the tenant-facing surface. Tenant identity and
// admin privilege are established upstream; the gateway forwards them as
// headers the TenantRequired middleware validates.
func (s *Server) registerTenantRoutes() {
	api := s.engine.Group("/api", s.TenantRequired())

	api.GET("/modules", s.ListTenantModules)
	api.POST("/modules/:key/toggle", s.ToggleModule)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	// -------- Catalog --------
	admin.GET("/modules", s.ListCatalogModules)
	admin.POST("/modules", s.CreateCatalogModule)
	admin.PATCH("/modules/:key", s.UpdateCatalogModule)
	admin.POST("/modules/:key/disable", s.DisableCatalogModule)

	// -------- Dependency graph --------
	admin.GET("/dependencies", s.ListDependencies)
	admin.POST("/dependencies", s.AddDependency)
	admin.DELETE("/dependencies/:key/:dependsOn", s.RemoveDependency)

	// -------- Subscriptions --------
	admin.GET("/tenants/:tenantId/modules", s.ListTenantSubscriptions)
	admin.POST("/tenants/:tenantId/modules", s.GrantModule)
	admin.DELETE("/tenants/:tenantId/modules/:key", s.RevokeModule)

	// -------- Audit --------
	admin.GET("/tenants/:tenantId/audit-logs", s.ListAuditLogs)
}

func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server started", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
