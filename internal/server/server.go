package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/megaprint/megaprint/internal/catalog"
	catalogdomain "github.com/megaprint/megaprint/internal/catalog/domain"
	"github.com/megaprint/megaprint/internal/config"
	"github.com/megaprint/megaprint/internal/debt"
	debtdomain "github.com/megaprint/megaprint/internal/debt/domain"
	"github.com/megaprint/megaprint/internal/observability"
	obsmiddleware "github.com/megaprint/megaprint/internal/observability/logger"
	obsmetrics "github.com/megaprint/megaprint/internal/observability/metrics"
	obstracing "github.com/megaprint/megaprint/internal/observability/tracing"
	"github.com/megaprint/megaprint/internal/printing"
	printingdomain "github.com/megaprint/megaprint/internal/printing/domain"
	"github.com/megaprint/megaprint/internal/quota"
	quotadomain "github.com/megaprint/megaprint/internal/quota/domain"
	"github.com/megaprint/megaprint/internal/quotaconfig"
	quotaconfigdomain "github.com/megaprint/megaprint/internal/quotaconfig/domain"
	"github.com/megaprint/megaprint/internal/seller"
	sellerdomain "github.com/megaprint/megaprint/internal/seller/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	seller.Module,
	catalog.Module,
	quotaconfig.Module,
	quota.Module,
	debt.Module,
	printing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sellerSvc      sellerdomain.Service
	catalogSvc     catalogdomain.Service
	quotaSvc       quotadomain.Service
	quotaConfigSvc quotaconfigdomain.Service
	debtSvc        debtdomain.Service
	printingSvc    printingdomain.Service
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	SellerSvc      sellerdomain.Service
	CatalogSvc     catalogdomain.Service
	QuotaSvc       quotadomain.Service
	QuotaConfigSvc quotaconfigdomain.Service
	DebtSvc        debtdomain.Service
	PrintingSvc    printingdomain.Service
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sellerSvc:      p.SellerSvc,
		catalogSvc:     p.CatalogSvc,
		quotaSvc:       p.QuotaSvc,
		quotaConfigSvc: p.QuotaConfigSvc,
		debtSvc:        p.DebtSvc,
		printingSvc:    p.PrintingSvc,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Sellers --------
	api.GET("/sellers", s.ListSellers)
	api.POST("/sellers", s.CreateSeller)
	api.GET("/sellers/:id", s.GetSellerByID)

	// -------- Catalog --------
	api.GET("/catalog-items", s.ListCatalogItems)
	api.GET("/catalog-items/:id", s.GetCatalogItemByID)

	// -------- Prints --------
	api.POST("/prints/provisional", s.RecordProvisionalPrint)
	api.GET("/prints/counts/:seller_id", s.GetPrintCounts)
	api.POST("/prints/confirm", s.ConfirmPrintBatch)
	api.GET("/prints/batches/:seller_id", s.ListPrintBatches)

	// -------- Debts --------
	api.GET("/debts/:seller_id", s.ListSellerDebts)
	api.POST("/debts/:id/payment-proof", s.AttachDebtPaymentProof)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	// -------- Sellers --------
	admin.POST("/sellers/:id/approve", s.ApproveSeller)
	admin.POST("/sellers/:id/reject", s.RejectSeller)

	// -------- Catalog --------
	admin.POST("/catalog-items", s.CreateCatalogItem)
	admin.POST("/catalog-items/:id/assign", s.AssignCatalogItem)
	admin.POST("/catalog-items/:id/active", s.SetCatalogItemActive)

	// -------- Debts --------
	admin.GET("/debts", s.ListDebts)
	admin.POST("/debts/:id/approve", s.ApproveDebt)
	admin.POST("/debts/:id/reject", s.RejectDebt)

	// -------- Quota Config --------
	admin.GET("/quota-config", s.GetQuotaConfig)
	admin.PUT("/quota-config", s.UpdateQuotaConfig)
	admin.GET("/quota-config/history", s.GetQuotaConfigHistory)
}
