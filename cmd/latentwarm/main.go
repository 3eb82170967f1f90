// Command latentwarm precomputes the latent cache of a text-to-video dataset.
//
// It is configured entirely through the environment (see internal/config):
//
//	DATA_ROOT=/data LATENT_ENCODER_CMD="vae-encode --fp16" WARM_WORKERS=4 latentwarm
//
// The encoder command receives the [1, C, F, H, W] batch as a float32 latent
// blob on stdin and must write the encoded latent blob to stdout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/hupe1980/latentset"
	"github.com/hupe1980/latentset/ffmpeg"
	"github.com/hupe1980/latentset/internal/config"
	promcollector "github.com/hupe1980/latentset/metrics/prometheus"
	"github.com/hupe1980/latentset/preprocess"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "latentwarm:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl, err := newZapLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	runID := uuid.NewString()
	logger := latentset.NewLogger(zapslog.NewHandler(zl.Core())).WithRunID(runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, key, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, logger.Logger)
	if err != nil {
		return err
	}

	opts := []latentset.Option{
		latentset.WithCache(cache),
		latentset.WithKeyFunc(key),
		latentset.WithLogger(logger),
	}
	if len(cfg.EncoderCmd) > 0 {
		opts = append(opts, latentset.WithEncoder(newProcessEncoder(cfg.EncoderCmd).Encode))
	} else {
		logger.WarnContext(ctx, "LATENT_ENCODER_CMD is not set, only existing cache entries will be reported")
	}

	if cfg.MetricsPort > 0 {
		collector, err := promcollector.NewCollector(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, latentset.WithMetricsCollector(collector))

		srv := startMetricsServer(cfg.MetricsPort, zl)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ds, err := latentset.New(cfg.DataRoot, cfg.CaptionsFile, cfg.VideosFile, pipeline, opts...)
	if err != nil {
		return err
	}

	warmOpts := []latentset.WarmOption{
		latentset.WithWorkers(cfg.Workers),
		latentset.WithEncodeRate(cfg.EncodeRate, 0),
	}
	if cfg.FailFast {
		warmOpts = append(warmOpts, latentset.WithFailFast())
	}

	report, warmErr := ds.Warm(ctx, warmOpts...)
	if err := writeReport(cfg.ReportPath, newSummary(runID, ds, report)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if warmErr != nil {
		return warmErr
	}
	if n := report.Failed.GetCardinality(); n > 0 {
		return fmt.Errorf("%d of %d samples failed", n, ds.Len())
	}
	return nil
}

func newZapLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (preprocess.Pipeline, error) {
	dec := ffmpeg.New(
		ffmpeg.WithBinaries(cfg.FFmpegPath, cfg.FFprobePath),
		ffmpeg.WithLogger(logger),
	)

	switch cfg.Mode {
	case config.ModeBucket:
		buckets, err := cfg.ResolutionBuckets()
		if err != nil {
			return nil, err
		}
		ratios, err := cfg.CompressionRatios()
		if err != nil {
			return nil, err
		}
		return preprocess.NewBucketPipeline(preprocess.BucketConfig{Buckets: buckets, Ratios: ratios}, dec)
	default:
		return preprocess.NewResizePipeline(preprocess.ResizeConfig{
			MaxFrames: cfg.MaxFrames,
			Height:    cfg.Height,
			Width:     cfg.Width,
		}, dec)
	}
}
