package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrogers/photofolio/internal/config"
	"github.com/mrogers/photofolio/internal/watermark"
)

// Standalone batch mode: watermark every image in WM_INPUT_DIR into
// WM_OUTPUT_DIR, keeping filenames.
func main() {
	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	wmCfg := watermark.DefaultConfig()
	wmCfg.Text = cfg.WatermarkText
	wmCfg.FontB64 = cfg.WatermarkFontB64
	wmCfg.FontIndex = cfg.WatermarkFontIndex
	wmCfg.FallbackFontPath = cfg.WatermarkFallbackFont
	wm, err := watermark.New(wmCfg)
	if err != nil {
		slog.Error("init watermarker", "error", err)
		os.Exit(1)
	}
	src := wm.FontSource()
	slog.Info("watermarker ready", "font_tier", src.Tier, "font_path", src.Path)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := wm.Batch(ctx, cfg.WMInputDir, cfg.WMOutputDir, cfg.WMWorkers)
	if err != nil {
		slog.Error("batch watermark", "done", n, "error", err)
		os.Exit(1)
	}
	slog.Info("batch watermark complete", "count", n, "output", cfg.WMOutputDir)
}
