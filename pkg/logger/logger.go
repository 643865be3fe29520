package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init 初始化全局 zap logger
// format: json (生产) / console (开发)
func Init(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// L 全局 logger (未初始化时为 zap 的 no-op logger)
func L() *zap.Logger {
	return zap.L()
}

// Named 带模块名的子 logger，例如 logger.Named("CatalogSyncTask")
func Named(name string) *zap.Logger {
	return zap.L().Named(name)
}
