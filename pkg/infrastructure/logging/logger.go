// Package logging builds the zap loggers used across the engine
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration
type Config struct {
	Level       string `mapstructure:"level" json:"level"`
	Format      string `mapstructure:"format" json:"format"` // "json" or "console"
	OutputPath  string `mapstructure:"output_path" json:"output_path"`
	Development bool   `mapstructure:"development" json:"development"`
}

// NewLogger creates a structured logger tagged with the service name
func NewLogger(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "jobshop")), nil
}

// NewDefaultLogger creates an info level json logger, falling back to zap's production logger
func NewDefaultLogger() *zap.Logger {
	logger, err := NewLogger(Config{Level: "info", Format: "json"})
	if err != nil {
		fallback, _ := zap.NewProduction()
		return fallback
	}
	return logger
}
