package watermark

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned by New when every source in the font chain failed.
var ErrNoFont = errors.New("no usable font source")

// Font source tiers, in the order they are tried.
const (
	TierCollection   = "collection"
	TierFallbackFile = "fallback-file"
	TierBuiltin      = "builtin"
)

// FontSource identifies which tier of the fallback chain supplied the font.
type FontSource struct {
	Tier      string
	Path      string // file the font came from, empty for the built-in
	FaceIndex int    // face used within a collection
}

// fitMargin is the horizontal slack required on each side of the text
// during the size search.
const fitMargin = 10

// resolveFont walks the source chain: the decoded collection at the
// configured face index, then a standalone fallback file, then the built-in
// font. A tier counts only if its font parses and a face can be built.
func resolveFont(cfg Config) (*sfnt.Font, FontSource, error) {
	if cfg.FontB64 != "" {
		path, err := ensureFontFile(cfg.FontB64, cfg.FontCachePath)
		if err != nil {
			slog.Warn("watermark font: collection cache unusable", "path", cfg.FontCachePath, "error", err)
		} else {
			fnt, idx, err := loadCollectionFace(path, cfg.FontIndex)
			if err == nil {
				if err = probeFace(fnt); err == nil {
					return fnt, FontSource{Tier: TierCollection, Path: path, FaceIndex: idx}, nil
				}
			}
			slog.Warn("watermark font: collection unusable", "path", path, "error", err)
		}
	}

	if cfg.FallbackFontPath != "" {
		fnt, err := loadFontFile(cfg.FallbackFontPath)
		if err == nil {
			if err = probeFace(fnt); err == nil {
				return fnt, FontSource{Tier: TierFallbackFile, Path: cfg.FallbackFontPath}, nil
			}
		}
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("watermark font: fallback file unusable", "path", cfg.FallbackFontPath, "error", err)
		}
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, FontSource{}, fmt.Errorf("%w: built-in font: %v", ErrNoFont, err)
	}
	if err := probeFace(fnt); err != nil {
		return nil, FontSource{}, fmt.Errorf("%w: built-in font: %v", ErrNoFont, err)
	}
	return fnt, FontSource{Tier: TierBuiltin}, nil
}

// ensureFontFile materializes the base64-encoded font at path, decoding it
// only when the file does not exist yet. The write goes through a temp file
// and rename so concurrent starts never observe a partial font.
func ensureFontFile(b64, path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	// Env transport tends to wrap long values, so strip whitespace first.
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(b64), ""))
	if err != nil {
		return "", fmt.Errorf("decode font data: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, ".font-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// loadCollectionFace parses the font collection at path and picks the face
// at index. An index the collection does not have, or a face that fails to
// load, degrades to face 0. A plain TTF parses as a one-face collection.
func loadCollectionFace(path string, index int) (*sfnt.Font, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	col, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}
	n := col.NumFonts()
	if index < 0 || index >= n {
		slog.Warn("watermark font: face index out of range, using face 0", "index", index, "faces", n)
		index = 0
	}
	fnt, err := col.Font(index)
	if err != nil && index != 0 {
		slog.Warn("watermark font: face unusable, using face 0", "index", index, "error", err)
		index = 0
		fnt, err = col.Font(0)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("collection face %d: %w", index, err)
	}
	return fnt, index, nil
}

func loadFontFile(path string) (*sfnt.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fnt, nil
}

// probeFace builds one face to prove the font is usable beyond parsing.
func probeFace(fnt *sfnt.Font) error {
	_, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: 12, DPI: 72, Hinting: font.HintingFull})
	return err
}

func (wm *Watermarker) newFace(size int) (font.Face, error) {
	return opentype.NewFace(wm.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// FitFontSize reports the largest size in [1, SizeCeiling] whose rendered
// text width leaves fitMargin slack on both sides of an image imageWidth
// wide, or MinSize when not even size 1 fits.
func (wm *Watermarker) FitFontSize(text string, imageWidth int) (int, error) {
	maxW := imageWidth - 2*fitMargin
	for size := wm.cfg.SizeCeiling; size >= 1; size-- {
		w, err := wm.textWidth(text, size)
		if err != nil {
			return 0, err
		}
		if w <= maxW {
			return size, nil
		}
	}
	return wm.cfg.MinSize, nil
}

func (wm *Watermarker) fitFace(text string, imageWidth int) (font.Face, int, error) {
	size, err := wm.FitFontSize(text, imageWidth)
	if err != nil {
		return nil, 0, err
	}
	face, err := wm.newFace(size)
	if err != nil {
		return nil, 0, err
	}
	return face, size, nil
}

// textWidth measures the ink width of text at the given size. Measuring
// shapes the whole string and the fit search may probe a couple hundred
// sizes per image, so results are memoized; the text and font never change
// for a given Watermarker, making entries valid forever.
func (wm *Watermarker) textWidth(text string, size int) (int, error) {
	key := text + "\x00" + strconv.Itoa(size)
	if v, found := wm.widths.Get(key); found {
		return v.(int), nil
	}
	face, err := wm.newFace(size)
	if err != nil {
		return 0, err
	}
	w := measure(face, text).w
	wm.widths.Set(key, w, cache.NoExpiration)
	return w, nil
}

// textExtents describes the ink box of a string: its pixel size and the
// offset from the drawing dot to the box's top-left corner.
type textExtents struct {
	w, h       int
	offX, offY fixed.Int26_6
}

func measure(face font.Face, text string) textExtents {
	b, _ := font.BoundString(face, text)
	return textExtents{
		w:    (b.Max.X - b.Min.X).Ceil(),
		h:    (b.Max.Y - b.Min.Y).Ceil(),
		offX: -b.Min.X,
		offY: -b.Min.Y,
	}
}
