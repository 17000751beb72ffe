package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"leaf-counter/config"
	"leaf-counter/internal/api/rest"
	"leaf-counter/internal/api/telegram"
	app "leaf-counter/internal/application"
	"leaf-counter/internal/container"
	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
	"leaf-counter/internal/infrastructure/imageio"
	"leaf-counter/internal/infrastructure/logger"
	"leaf-counter/internal/infrastructure/masks"
	"leaf-counter/internal/infrastructure/storage"
	"leaf-counter/internal/infrastructure/vision"
)

const (
	flagImage  = "image"
	flagOut    = "out"
	flagMasks  = "masks"
	flagModel  = "model"
	flagConf   = "conf"
	flagEnv    = "env"
	flagFormat = "format"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "leafcount",
		Usage:           "count leaves on plant photos and highlight them",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagEnv,
				Usage: "load environment from `FILE`",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "count",
				Usage:     "analyze a single image",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagImage, Aliases: []string{"i"}, Required: true, Usage: "input image"},
					&cli.PathFlag{Name: flagOut, Aliases: []string{"o"}, Usage: "write the composite to `FILE` (.png or .jpg)"},
					&cli.PathFlag{Name: flagMasks, Usage: "read precomputed masks from `DIR` instead of running the model"},
					&cli.PathFlag{Name: flagModel, Usage: "ONNX segmentation model (needs the gocv build)"},
					&cli.Float64Flag{Name: flagConf, Value: -1, Usage: "segmenter confidence threshold (default from config)"},
				},
				Action: countAction,
			},
			{
				Name:   "bot",
				Usage:  "run the Telegram bot",
				Action: botAction,
			},
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagFormat, Usage: "default output format (png|jpeg)"},
				},
				Action: serveAction,
			},
		},
	}
}

// runtimeDeps собранные зависимости и функция их освобождения.
type runtimeDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *container.Container
	close     func()
}

func setup(c *cli.Context) (*runtimeDeps, error) {
	cfg, err := config.Load(c.String(flagEnv))
	if err != nil {
		return nil, err
	}
	if v := c.String(flagMasks); v != "" {
		cfg.MasksDir = v
	}
	if v := c.String(flagModel); v != "" {
		cfg.ModelPath = v
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	compositor, err := newCompositor(cfg, log)
	if err != nil {
		logger.Sync(log)
		return nil, err
	}

	segmenter, closeSegmenter, err := newSegmenter(cfg, log)
	if err != nil {
		logger.Sync(log)
		return nil, err
	}

	format, err := entity.ParseOutputFormat(cfg.OutputFormat)
	if err != nil {
		format = entity.FormatJPEG
	}

	ctr := container.New(
		storage.NewMemorySettingsRepository(cfg.Confidence, format),
		segmenter,
		compositor,
		imageio.Codec{},
		app.AnalysisConfig{MaxConcurrent: cfg.MaxConcurrent, QueueTimeout: cfg.QueueTimeout},
		log,
	)

	return &runtimeDeps{
		cfg:       cfg,
		logger:    log,
		container: ctr,
		close: func() {
			if err := closeSegmenter(); err != nil {
				log.Warn("close segmenter", zap.Error(err))
			}
			logger.Sync(log)
		},
	}, nil
}

func newCompositor(cfg *config.Config, log *zap.Logger) (port.MaskCompositor, error) {
	opts := vision.DefaultOptions()
	opts.MaskThreshold = cfg.MaskThreshold
	opts.BlendWeight = cfg.BlendWeight
	opts.Noun = cfg.ObjectNoun
	opts.Workers = cfg.Workers

	if cfg.Backend == config.BackendOpenCV {
		return vision.NewOpenCVCompositor(opts, log)
	}
	return vision.NewCompositor(opts, log), nil
}

// newSegmenter выбирает каталог масок, если он задан, иначе ONNX-модель.
func newSegmenter(cfg *config.Config, log *zap.Logger) (port.Segmenter, func() error, error) {
	if cfg.MasksDir != "" {
		log.Info("using precomputed masks", zap.String("dir", cfg.MasksDir))
		return masks.NewDirSegmenter(cfg.MasksDir, log), func() error { return nil }, nil
	}

	seg, err := vision.NewONNXSegmenter(vision.ONNXConfig{
		ModelPath:    cfg.ModelPath,
		InputSize:    cfg.ModelInput,
		NMSThreshold: cfg.NMSThreshold,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return seg, seg.Close, nil
}

func countAction(c *cli.Context) error {
	deps, err := setup(c)
	if err != nil {
		return err
	}
	defer deps.close()

	confidence := c.Float64(flagConf)
	if confidence < 0 {
		confidence = deps.cfg.Confidence
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := deps.container.AnalysisService.AnalyzeFile(ctx, c.Path(flagImage), confidence)
	if err != nil {
		return err
	}

	printSummary(c.App.Writer, deps.cfg.ObjectNoun, result)

	if out := c.Path(flagOut); out != "" {
		if err := imageio.Save(out, result.Composite); err != nil {
			return err
		}
		deps.logger.Info("composite saved", zap.String("path", out))
	}
	return nil
}

func printSummary(w io.Writer, noun string, r *entity.AggregateResult) {
	fmt.Fprintf(w, "%s Count: %d\n", noun, r.Count)
	fmt.Fprintf(w, "%s Pixels: %d\n", noun, r.TotalPixels)
	fmt.Fprintf(w, "Covered Pixels: %d (%.1f%%)\n", r.UnionPixels, 100*r.CoverageRatio())
	fmt.Fprintf(w, "Image Size: %s\n", r.Size())
}

func botAction(c *cli.Context) error {
	deps, err := setup(c)
	if err != nil {
		return err
	}
	defer deps.close()

	if deps.cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	bot, err := telegram.NewBot(
		deps.cfg.TelegramToken,
		deps.container.SettingsService,
		deps.container.AnalysisService,
		deps.cfg.MaxUploadSize,
		deps.logger,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.logger.Info("bot is running")
	return bot.Run(ctx)
}

func serveAction(c *cli.Context) error {
	deps, err := setup(c)
	if err != nil {
		return err
	}
	defer deps.close()

	raw := deps.cfg.OutputFormat
	if v := c.String(flagFormat); v != "" {
		raw = v
	}
	format, err := entity.ParseOutputFormat(raw)
	if err != nil {
		return err
	}

	mode := "debug"
	if deps.cfg.LogMode == "release" {
		mode = "release"
	}
	handler := rest.NewHandler(deps.container.AnalysisService, deps.cfg.Confidence, format, deps.cfg.MaxUploadSize, deps.logger)
	srv := &http.Server{
		Addr:              deps.cfg.HTTPAddr,
		Handler:           rest.NewRouter(handler, mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		deps.logger.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
