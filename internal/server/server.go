package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"moviegen/internal/config"
	"moviegen/internal/handler"
	jobrepo "moviegen/internal/repository/job"
	"moviegen/internal/server/middleware"
	moviesvc "moviegen/internal/service/movie"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	svc    moviesvc.Service
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 任务状态存储，由 jobs.store 决定 memory/redis/mongo
	jobs, err := jobrepo.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("store", cfg.Jobs.Store).Msg("job store initialized")

	if cfg.Auth.APIToken == "" {
		log.Warn().Msg("auth.api_token not configured, generation endpoints will reject all requests")
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		svc:    moviesvc.NewService(cfg, jobs),
	}

	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	movieHandler := handler.NewMovieHandler(s.svc)

	// API v1，静态 Bearer Token 鉴权
	v1 := s.engine.Group("/api/v1")
	v1.Use(middleware.BearerAuth(s.cfg.Auth.APIToken))
	{
		v1.POST("/jobs", movieHandler.Generate)
		v1.GET("/jobs/:job_id", movieHandler.Status)
		v1.DELETE("/jobs/:job_id", movieHandler.Delete)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
