package watermark

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Batch watermarks every photo directly inside inDir, writing each result
// under the same name in outDir. Up to workers files are processed at once.
// It returns the number of files watermarked and the first error seen; one
// bad file does not stop the rest, but a canceled context stops feeding
// new ones.
func (wm *Watermarker) Batch(ctx context.Context, inDir, outDir string, workers int) (int, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		done     int
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if err := wm.ApplyWatermark(filepath.Join(inDir, name), filepath.Join(outDir, name)); err != nil {
					slog.Error("watermark failed", "file", name, "error", err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				slog.Info("watermarked", "file", name)
				mu.Lock()
				done++
				mu.Unlock()
			}
		}()
	}

feed:
	for _, e := range entries {
		if e.IsDir() || !batchImage(e.Name()) {
			continue
		}
		select {
		case jobs <- e.Name():
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return done, firstErr
}

// batchImage reports whether name looks like a source photo the batch tool
// picks up.
func batchImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
