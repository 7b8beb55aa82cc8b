package diskstat

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Stats is a point-in-time snapshot of disk usage under the data dir.
type Stats struct {
	TotalBytes       uint64
	FreeBytes        uint64
	AppBytes         uint64 // everything under the data dir
	OriginalsBytes   uint64 // scratch originals awaiting watermark
	WatermarkedBytes uint64 // scratch watermarked renditions
	UploadsBytes     uint64 // local blob storage
	CapturedAt       time.Time
}

// PctFree returns the percentage of disk space that is free (0-100).
func (s Stats) PctFree() float64 {
	if s.TotalBytes == 0 {
		return 100
	}
	return float64(s.FreeBytes) / float64(s.TotalBytes) * 100
}

// Cache is a goroutine-safe cached disk stats value, refreshed periodically.
type Cache struct {
	mu      sync.RWMutex
	stats   Stats
	dataDir string
	ttl     time.Duration
	stop    chan struct{}
}

func New(dataDir string, ttl time.Duration) *Cache {
	return &Cache{
		dataDir: dataDir,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

// Start takes one snapshot and begins background polling.
func (c *Cache) Start() {
	c.refresh()
	go func() {
		t := time.NewTicker(c.ttl)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				c.refresh()
			}
		}
	}()
}

// Stop halts background polling. Call it once.
func (c *Cache) Stop() {
	close(c.stop)
}

// Get returns the latest cached stats.
func (c *Cache) Get() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Refresh forces an immediate update.
func (c *Cache) Refresh() {
	c.refresh()
}

func (c *Cache) refresh() {
	total, free, err := statFS(c.dataDir)
	if err != nil {
		// Leave the previous snapshot in place.
		return
	}
	app, originals, wm, uploads := walkDirSizes(c.dataDir)
	s := Stats{
		TotalBytes:       total,
		FreeBytes:        free,
		AppBytes:         app,
		OriginalsBytes:   originals,
		WatermarkedBytes: wm,
		UploadsBytes:     uploads,
		CapturedAt:       time.Now(),
	}
	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

func statFS(path string) (total, free uint64, err error) {
	var stat syscall.Statfs_t
	if err = syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return bsize * stat.Blocks, bsize * stat.Bfree, nil
}

func walkDirSizes(dataDir string) (total, originals, watermarked, uploads uint64) {
	filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size := uint64(info.Size())
		total += size
		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return nil
		}
		switch {
		case strings.HasPrefix(rel, "originals"):
			originals += size
		case strings.HasPrefix(rel, "watermarked"):
			watermarked += size
		case strings.HasPrefix(rel, "uploads"):
			uploads += size
		}
		return nil
	})
	return
}
