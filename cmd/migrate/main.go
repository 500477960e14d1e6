package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"department-graphql/internal/core/config"
	"department-graphql/internal/core/database"
	"department-graphql/internal/core/logger"
	"department-graphql/internal/domain"
)

// 一次性建表：users / departments / sub_departments（唯一索引 + 级联外键）
func main() {
	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

// run 出错即返回，退出码由 main 决定
func run(cfgPath string) error {
	_ = godotenv.Load()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, cleanup := logger.New(cfg.Log, cfg.App.Development())
	defer cleanup()

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

	models := domain.Models()
	if err := database.Migrate(db, models...); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	log.Info("migration done", zap.String("driver", cfg.DB.Driver), zap.Int("models", len(models)))
	return nil
}
