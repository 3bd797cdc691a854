package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mentorchat/internal/config"
	"mentorchat/internal/model"
	"mentorchat/internal/pkg/filestore"
	"mentorchat/internal/platform/database"
	"mentorchat/internal/platform/logger"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.SugaredLogger
	Files  *filestore.Store

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	db, err := database.New(ctx, cfg.Storage, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.Profile{},
		&model.Conversation{},
		&model.Message{},
		&model.Attachment{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	files, err := filestore.New(cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		DB:        db,
		Logger:    log,
		Files:     files,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
