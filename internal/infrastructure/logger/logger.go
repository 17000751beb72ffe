package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создаёт логгер: "release" пишет JSON уровня info, остальные режимы цветной консольный вывод.
func New(mode string) (*zap.Logger, error) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// Sync сбрасывает буферы логгера, ошибки синхронизации stderr игнорируются.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}
