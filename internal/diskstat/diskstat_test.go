package diskstat_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrogers/photofolio/internal/diskstat"
)

func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshCategorizesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "originals", "a.jpg"), 3)
	writeBytes(t, filepath.Join(dir, "watermarked", "b.jpg"), 5)
	writeBytes(t, filepath.Join(dir, "uploads", "animals", "c.jpg"), 7)
	writeBytes(t, filepath.Join(dir, "photofolio.db"), 11)

	c := diskstat.New(dir, time.Hour)
	c.Refresh()
	st := c.Get()

	if st.OriginalsBytes != 3 {
		t.Errorf("OriginalsBytes = %d, want 3", st.OriginalsBytes)
	}
	if st.WatermarkedBytes != 5 {
		t.Errorf("WatermarkedBytes = %d, want 5", st.WatermarkedBytes)
	}
	if st.UploadsBytes != 7 {
		t.Errorf("UploadsBytes = %d, want 7", st.UploadsBytes)
	}
	if st.AppBytes != 26 {
		t.Errorf("AppBytes = %d, want 26", st.AppBytes)
	}
	if st.TotalBytes == 0 || st.FreeBytes == 0 {
		t.Errorf("filesystem stats empty: total=%d free=%d", st.TotalBytes, st.FreeBytes)
	}
	if st.CapturedAt.IsZero() {
		t.Error("CapturedAt not set")
	}
	if pct := st.PctFree(); pct <= 0 || pct > 100 {
		t.Errorf("PctFree = %v, want within (0, 100]", pct)
	}
}

func TestPctFreeZeroTotal(t *testing.T) {
	var st diskstat.Stats
	if got := st.PctFree(); got != 100 {
		t.Errorf("PctFree on empty stats = %v, want 100", got)
	}
}
