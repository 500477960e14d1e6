package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/cache"
	"department-graphql/internal/core/config"
	"department-graphql/internal/core/database"
	"department-graphql/internal/core/logger"
	"department-graphql/internal/core/server"
	"department-graphql/internal/domain"
	"department-graphql/internal/repo"
	"department-graphql/internal/service"
	gql "department-graphql/internal/transport/graphql"
	"department-graphql/internal/transport/http/handler"
	"department-graphql/internal/transport/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

// run 出错即返回，退出码由 main 决定
func run() error {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, cleanup := logger.New(cfg.Log, cfg.App.Development())
	defer cleanup()

	if !cfg.App.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewGorm(database.OptsFrom(cfg.DB), log)
	if err != nil {
		log.Error("db open", zap.Error(err))
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, domain.Models()...); err != nil {
			log.Error("automigrate failed", zap.Error(err))
			return err
		}
		log.Info("automigrate done")
	}

	// Redis 可选；未配置时缓存直接回源
	rc := cache.New(cfg.Redis)
	if rc.Enabled() {
		if err := rc.Ping(context.Background()); err != nil {
			log.Warn("redis ping failed, reads fall back to the database", zap.Error(err))
		}
		defer func() { _ = rc.Close() }()
	}

	// JWT（签名密钥启动时加载一次）
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: cfg.JWT.Leeway(),
	}

	// 仓储 → 服务 → 解析器
	userRepo := repo.NewUserRepo(db)
	deptRepo := repo.NewDepartmentRepo(db)
	subRepo := repo.NewSubDepartmentRepo(db)
	authz := service.NewAuthorizer(deptRepo, subRepo)
	authSvc := service.NewAuthService(userRepo, jwter, rc, service.AuthOptions{
		BcryptCost: cfg.Auth.BcryptCost,
		UserTTL:    time.Duration(cfg.Redis.UserTTLSec) * time.Second,
	}, log)
	resolver := gql.NewResolver(
		authSvc,
		service.NewDepartmentService(deptRepo, authz, log),
		service.NewSubDepartmentService(subRepo, authz, log),
	)
	schema, err := gql.NewSchema(resolver, gql.SchemaOptions{
		Introspection: cfg.GraphQL.Introspection,
		MaxDepth:      cfg.GraphQL.MaxDepth,
	}, log)
	if err != nil {
		log.Error("graphql schema", zap.Error(err))
		return err
	}

	deps := map[string]handler.Pinger{
		"database": handler.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
	}
	if rc.Enabled() {
		deps["redis"] = rc
	}
	health := handler.NewHealthHandler(deps, log)
	r := router.NewAPIEngine(log, cfg.App.HTTP, jwter,
		health,
		gql.NewHandler(schema, cfg.App.Development(), log),
	)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("graphql api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("graphql", baseURL+gql.Path),
		zap.String("health", baseURL+"/health/ready"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info("graphql api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		log.Error("graphql api start FAILED", zap.Error(err))
		return err
	case <-quit:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown incomplete", zap.Error(err))
	}
	log.Info("graphql api stopped gracefully")
	return nil
}
