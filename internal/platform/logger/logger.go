package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the application logger: human-readable in dev, JSON in prod.
func New(env string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return zapLogger.Sugar(), nil
}
