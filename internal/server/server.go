package server

import (
	"context"
	"net/http"
	"time"

	"github.com/atelierlabs/fotura/internal/config"
	"github.com/atelierlabs/fotura/internal/recalc"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *recalc.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, metrics *recalc.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	settingsSvc settingsdomain.Service
	tableSvc    tabledomain.Service
	categorySvc categorydomain.Service
	sessionSvc  sessiondomain.Service
	recalc      *recalc.Recalculator
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	SettingsSvc settingsdomain.Service
	TableSvc    tabledomain.Service
	CategorySvc categorydomain.Service
	SessionSvc  sessiondomain.Service
	Recalc      *recalc.Recalculator
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		settingsSvc: p.SettingsSvc,
		tableSvc:    p.TableSvc,
		categorySvc: p.CategorySvc,
		sessionSvc:  p.SessionSvc,
		recalc:      p.Recalc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	settings := api.Group("/pricing/settings")
	{
		settings.GET("", s.GetPricingSettings)
		settings.PUT("", s.UpdatePricingSettings)
	}

	tables := api.Group("/pricing/tables")
	{
		tables.GET("", s.ListPricingTables)
		tables.POST("", s.CreatePricingTable)
		tables.POST("/example", s.CreateExamplePricingTable)
		tables.GET("/:id", s.GetPricingTableByID)
		tables.PUT("/:id", s.UpdatePricingTable)
		tables.DELETE("/:id", s.DeletePricingTable)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", s.ListCategories)
		categories.POST("", s.CreateCategory)
		categories.GET("/:id", s.GetCategoryByID)
		categories.PUT("/:id", s.UpdateCategory)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("", s.ListSessions)
		sessions.POST("", s.CreateSession)
		sessions.POST("/migrate", s.MigrateLegacySessions)
		sessions.GET("/:id", s.GetSessionByID)
		sessions.PATCH("/:id/quantity", s.SetSessionQuantity)
		sessions.PUT("/:id/price", s.SetSessionManualPrice)
		sessions.POST("/:id/recalculate", s.RecalculateSession)
		// Migration for one session is a recompute: the write path captures
		// the snapshot when the session is still legacy.
		sessions.POST("/:id/migrate", s.RecalculateSession)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
