package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/talentsift/talentsift/internal/analytics"
	"github.com/talentsift/talentsift/internal/auth"
	authdomain "github.com/talentsift/talentsift/internal/auth/domain"
	"github.com/talentsift/talentsift/internal/auth/session"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/credit"
	creditdomain "github.com/talentsift/talentsift/internal/credit/domain"
	"github.com/talentsift/talentsift/internal/liveevents"
	"github.com/talentsift/talentsift/internal/llm/gemini"
	"github.com/talentsift/talentsift/internal/metrics"
	"github.com/talentsift/talentsift/internal/organization"
	orgdomain "github.com/talentsift/talentsift/internal/organization/domain"
	"github.com/talentsift/talentsift/internal/queryparse"
	"github.com/talentsift/talentsift/internal/ratelimit"
	"github.com/talentsift/talentsift/internal/scoring"
	"github.com/talentsift/talentsift/internal/search"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"github.com/talentsift/talentsift/internal/search/pipeline"
	"github.com/talentsift/talentsift/internal/sharelink"
	sharelinkdomain "github.com/talentsift/talentsift/internal/sharelink/domain"
	"github.com/talentsift/talentsift/internal/sourcing"
	"github.com/talentsift/talentsift/internal/subscription"
	subscriptiondomain "github.com/talentsift/talentsift/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	organization.Module,
	subscription.Module,
	credit.Module,
	analytics.Module,
	gemini.Module,
	queryparse.Module,
	sourcing.Module,
	scoring.Module,
	search.Module,
	sharelink.Module,
	liveevents.Module,
	ratelimit.Module,
	pipeline.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLog(log))
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
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
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authSvc         authdomain.Service
	orgSvc          orgdomain.Service
	subscriptionSvc subscriptiondomain.Service
	creditSvc       creditdomain.Service
	searchSvc       searchdomain.Service
	searchRepo      searchdomain.Repository
	sharelinkSvc    sharelinkdomain.Service
	runner          *pipeline.Runner
	liveSearch      *liveevents.Hub
	searchLimiter   *ratelimit.SearchLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	OrgSvc          orgdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	CreditSvc       creditdomain.Service
	SearchSvc       searchdomain.Service
	SearchRepo      searchdomain.Repository
	SharelinkSvc    sharelinkdomain.Service
	Runner          *pipeline.Runner
	LiveSearch      *liveevents.Hub
	SearchLimiter   *ratelimit.SearchLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http"),
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		orgSvc:          p.OrgSvc,
		subscriptionSvc: p.SubscriptionSvc,
		creditSvc:       p.CreditSvc,
		searchSvc:       p.SearchSvc,
		searchRepo:      p.SearchRepo,
		sharelinkSvc:    p.SharelinkSvc,
		runner:          p.Runner,
		liveSearch:      p.LiveSearch,
		searchLimiter:   p.SearchLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/v1/auth")

	authGroup.POST("/signup", s.Signup)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1", s.AuthRequired())

	api.GET("/organizations", s.ListUserOrganizations)

	org := api.Group("", s.OrgContext())
	{
		org.POST("/searches", s.CreateSearch)
		org.GET("/searches", s.ListSearches)
		org.GET("/searches/:id", s.GetSearch)
		org.GET("/searches/:id/query", s.GetSearchQuery)
		org.GET("/searches/:id/progress", s.GetSearchProgress)
		org.GET("/searches/:id/events", s.StreamSearchEvents)
		org.POST("/searches/:id/candidates/:candidateID/reveal", s.RevealCandidate)
		org.POST("/searches/:id/share", s.CreateShareLink)

		org.GET("/credits/balance", s.GetCreditBalance)
		org.GET("/credits/transactions", s.ListCreditTransactions)
	}
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/v1/shared/:token", s.GetSharedSearch)
}
