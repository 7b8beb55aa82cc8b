// Package watermark renders the gallery watermark onto uploaded photos: a
// size-fitted text line anchored bottom-right, backed by a blurred drop
// shadow, flattened to an opaque JPEG. The same compositor serves the web
// upload path and the standalone batch tool.
package watermark

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/image/font/sfnt"
)

// Config holds every knob of the compositor. It is immutable once passed
// to New; build it with DefaultConfig and override fields before that.
type Config struct {
	// Text is the watermark line. It is never wrapped.
	Text string

	// FontB64 is an optional base64-encoded font collection (TTC or TTF).
	// When set it is decoded once into FontCachePath and becomes the
	// primary font source.
	FontB64 string
	// FontIndex selects the face inside a multi-face collection. An index
	// the collection does not have falls back to face 0.
	FontIndex int
	// FontCachePath is where the decoded collection is written. Empty
	// means os.TempDir()/snell_roundhand.ttc.
	FontCachePath string
	// FallbackFontPath is a standalone TTF tried when the primary source
	// is absent or unusable. The built-in font is the last resort.
	FallbackFontPath string

	ShadowOpacity  uint8   // alpha of the shadow text, 0-255
	ShadowDistance float64 // shadow offset distance in pixels
	ShadowAngle    float64 // degrees; 0 points along +x, positive rotates toward +y (down)
	ShadowBlur     float64 // Gaussian sigma in pixels

	TextFill    color.NRGBA // translucent fill of the text itself
	StrokeWidth int         // outline width around the text, same fill
	Padding     int         // inset from the bottom-right image edge

	SizeCeiling int // largest candidate font size for the fit search
	MinSize     int // size used when nothing in [1, ceiling] fits
	Quality     int // JPEG quality of the output
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Text:             "Rogers Photography",
		FontIndex:        1,
		FontCachePath:    filepath.Join(os.TempDir(), "snell_roundhand.ttc"),
		FallbackFontPath: filepath.Join("fonts", "GreatVibes-Regular.ttf"),
		ShadowOpacity:    80,
		ShadowDistance:   10,
		ShadowAngle:      -90,
		ShadowBlur:       20,
		TextFill:         color.NRGBA{R: 255, G: 255, B: 255, A: 160},
		StrokeWidth:      1,
		Padding:          20,
		SizeCeiling:      200,
		MinSize:          10,
		Quality:          95,
	}
}

// Watermarker applies one fixed watermark configuration to images. It is
// safe for concurrent use: the font is parsed once at construction and all
// per-call state lives on the stack of the call.
type Watermarker struct {
	cfg    Config
	font   *sfnt.Font
	source FontSource
	widths *cache.Cache
}

// New resolves the font source chain, decoding FontB64 into the cache path
// if needed, and returns a ready Watermarker. It fails only when no source
// in the chain yields a usable font.
func New(cfg Config) (*Watermarker, error) {
	if cfg.SizeCeiling <= 0 {
		cfg.SizeCeiling = 200
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = 10
	}
	if cfg.Quality <= 0 {
		cfg.Quality = 95
	}
	if cfg.StrokeWidth < 0 {
		cfg.StrokeWidth = 0
	}
	if cfg.FontCachePath == "" {
		cfg.FontCachePath = filepath.Join(os.TempDir(), "snell_roundhand.ttc")
	}

	fnt, source, err := resolveFont(cfg)
	if err != nil {
		return nil, err
	}
	return &Watermarker{
		cfg:    cfg,
		font:   fnt,
		source: source,
		widths: cache.New(cache.NoExpiration, 0),
	}, nil
}

// Config returns a copy of the configuration the Watermarker was built with.
func (wm *Watermarker) Config() Config { return wm.cfg }

// FontSource reports which tier of the fallback chain supplied the font.
func (wm *Watermarker) FontSource() FontSource { return wm.source }

// ApplyWatermark reads the image at inputPath (JPEG, PNG or GIF), draws the
// watermark and writes a JPEG to outputPath. The destination is replaced
// atomically: on any error the previous file, if one existed, is untouched.
func (wm *Watermarker) ApplyWatermark(inputPath, outputPath string) error {
	src, err := loadImage(inputPath)
	if err != nil {
		return fmt.Errorf("watermark %s: %w", inputPath, err)
	}
	out, err := wm.Stamp(src)
	if err != nil {
		return fmt.Errorf("watermark %s: %w", inputPath, err)
	}
	if err := writeJPEG(out, outputPath, wm.cfg.Quality); err != nil {
		return fmt.Errorf("watermark %s: %w", inputPath, err)
	}
	return nil
}

// Stamp composites the watermark over src and returns the result. src is
// never mutated; the output has the same dimensions as the input.
func (wm *Watermarker) Stamp(src image.Image) (*image.NRGBA, error) {
	base := imaging.Clone(src)
	bounds := base.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	face, _, err := wm.fitFace(wm.cfg.Text, w)
	if err != nil {
		return nil, err
	}
	ext := measure(face, wm.cfg.Text)

	// Anchor the text box bottom-right, inset by the padding. Negative
	// coordinates just place it partially off-canvas.
	x := w - ext.w - wm.cfg.Padding
	y := h - ext.h - wm.cfg.Padding
	dx, dy := shadowOffset(wm.cfg.ShadowAngle, wm.cfg.ShadowDistance)

	shadowMask := image.NewAlpha(bounds)
	drawTextMask(shadowMask, face, wm.cfg.Text, x+dx, y+dy, ext, 0)
	shadow := fillLayer(bounds, shadowMask, color.NRGBA{A: wm.cfg.ShadowOpacity})
	blurred := imaging.Blur(shadow, wm.cfg.ShadowBlur)
	draw.Draw(base, bounds, blurred, image.Point{}, draw.Over)

	textMask := image.NewAlpha(bounds)
	drawTextMask(textMask, face, wm.cfg.Text, x, y, ext, wm.cfg.StrokeWidth)
	textLayer := fillLayer(bounds, textMask, wm.cfg.TextFill)
	draw.Draw(base, bounds, textLayer, image.Point{}, draw.Over)

	return base, nil
}

// shadowOffset decomposes the configured angle and distance into integer
// pixel offsets. Angle 0 points along +x; the image y axis grows downward,
// so the default -90 degrees puts the shadow above the text.
func shadowOffset(angleDeg, distance float64) (dx, dy int) {
	theta := angleDeg * math.Pi / 180
	dx = int(math.Round(distance * math.Cos(theta)))
	dy = int(math.Round(distance * math.Sin(theta)))
	return dx, dy
}

// loadImage decodes an image file into an NRGBA raster with its origin
// normalized to (0,0).
func loadImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var decoded image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		decoded, err = jpeg.Decode(f)
	case ".png":
		decoded, err = png.Decode(f)
	default:
		// Anything else registered with the image package, GIF included.
		decoded, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := decoded.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), decoded, b.Min, draw.Src)
	return nrgba, nil
}

// writeJPEG encodes img at the given quality into a temp file next to path
// and renames it into place, so a failed write never leaves a truncated
// destination behind.
func writeJPEG(img image.Image, path string, quality int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wm-*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
