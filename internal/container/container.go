package container

import (
	"go.uber.org/zap"

	app "leaf-counter/internal/application"
	"leaf-counter/internal/domain/port"
)

type Container struct {
	SettingsService *app.SettingsService
	AnalysisService *app.AnalysisService
}

func New(settingsRepo port.SettingsRepository, segmenter port.Segmenter, compositor port.MaskCompositor, codec port.ImageCodec, cfg app.AnalysisConfig, logger *zap.Logger) *Container {
	settingsService := app.NewSettingsService(settingsRepo)
	analysisService := app.NewAnalysisService(segmenter, compositor, codec, cfg, logger)

	return &Container{
		SettingsService: settingsService,
		AnalysisService: analysisService,
	}
}
