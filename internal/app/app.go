package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	photofolio "github.com/mrogers/photofolio"
	"github.com/mrogers/photofolio/internal/blob"
	"github.com/mrogers/photofolio/internal/cleanup"
	"github.com/mrogers/photofolio/internal/config"
	"github.com/mrogers/photofolio/internal/diskstat"
	"github.com/mrogers/photofolio/internal/handler"
	"github.com/mrogers/photofolio/internal/store"
	"github.com/mrogers/photofolio/internal/watermark"
)

func Run(ctx context.Context, cfg *config.Config) error {
	// Ensure data directories exist
	scratchOriginals := filepath.Join(cfg.DataDir, "originals")
	scratchWatermarked := filepath.Join(cfg.DataDir, "watermarked")
	for _, dir := range []string{cfg.DataDir, scratchOriginals, scratchWatermarked} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	// Open the metadata store
	storePath := cfg.DocumentDir
	if cfg.StoreKind == store.KindRelational {
		storePath = cfg.DatabaseDSN
	}
	st, err := store.Open(cfg.StoreKind, storePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	slog.Info("store ready", "kind", cfg.StoreKind)

	// Open the blob store holding the watermarked renditions
	bs, err := blob.Open(cfg)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	slog.Info("blob store ready", "kind", cfg.StorageKind)

	// Build the watermarker; a usable font is a startup requirement
	wmCfg := watermark.DefaultConfig()
	wmCfg.Text = cfg.WatermarkText
	wmCfg.FontB64 = cfg.WatermarkFontB64
	wmCfg.FontIndex = cfg.WatermarkFontIndex
	wmCfg.FallbackFontPath = cfg.WatermarkFallbackFont
	wm, err := watermark.New(wmCfg)
	if err != nil {
		return fmt.Errorf("init watermarker: %w", err)
	}
	src := wm.FontSource()
	slog.Info("watermarker ready", "font_tier", src.Tier, "font_path", src.Path, "face_index", src.FaceIndex)

	// Sweep stale scratch files left behind by failed uploads
	sweeper := &cleanup.Sweeper{
		Dirs:     []string{scratchOriginals, scratchWatermarked},
		TTL:      time.Duration(cfg.ScratchTTLMinutes) * time.Minute,
		Interval: 10 * time.Minute,
	}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Start disk stats cache
	diskCache := diskstat.New(cfg.DataDir, 60*time.Second)
	diskCache.Start()
	defer diskCache.Stop()

	// Get template FS (sub-directory)
	templateFS, err := fs.Sub(photofolio.TemplateFS, "templates")
	if err != nil {
		return err
	}

	// Get static FS (sub-directory)
	staticFS, err := fs.Sub(photofolio.StaticFS, "static")
	if err != nil {
		return err
	}

	// Rate limiter for the login form: 5 requests/minute, burst of 5
	loginRL := handler.NewRateLimiter(5.0/60.0, 5)
	defer loginRL.Stop()

	// Build handler and routes
	h, err := handler.New(cfg, st, bs, wm, diskCache, templateFS)
	if err != nil {
		return err
	}
	router := h.Routes(staticFS, loginRL)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
