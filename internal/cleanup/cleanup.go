package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper removes stale files from the scratch directories. An upload
// writes the original and the watermarked rendition there and removes both
// on success; anything left behind by a crashed request ages out here.
type Sweeper struct {
	Dirs     []string
	TTL      time.Duration
	Interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
	slog.Info("scratch sweeper started", "interval", s.Interval, "ttl", s.TTL)
}

func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	slog.Info("scratch sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.runOnce()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Sweeper) runOnce() {
	cutoff := time.Now().Add(-s.TTL)
	for _, dir := range s.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("sweep: read dir", "dir", dir, "error", err)
			}
			continue
		}
		removed := 0
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				p := filepath.Join(dir, e.Name())
				if err := os.Remove(p); err != nil {
					slog.Warn("sweep: remove", "file", p, "error", err)
					continue
				}
				removed++
			}
		}
		if removed > 0 {
			slog.Info("sweep: removed stale scratch files", "dir", dir, "count", removed)
		}
	}
}
