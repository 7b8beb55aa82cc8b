package watermark

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// drawTextMask rasterizes text into the alpha mask with the ink box
// anchored at (x, y). A positive stroke re-draws the string at every
// integer offset within that radius, widening coverage like an outline;
// overlapping passes saturate rather than stack, so the mask remains a
// plain coverage map.
func drawTextMask(mask *image.Alpha, face font.Face, text string, x, y int, ext textExtents, stroke int) {
	d := font.Drawer{Dst: mask, Src: image.White, Face: face}
	for ox := -stroke; ox <= stroke; ox++ {
		for oy := -stroke; oy <= stroke; oy++ {
			d.Dot = fixed.Point26_6{
				X: fixed.I(x+ox) + ext.offX,
				Y: fixed.I(y+oy) + ext.offY,
			}
			d.DrawString(text)
		}
	}
}

// fillLayer spreads a uniform fill through the coverage mask, producing a
// transparent layer whose alpha never exceeds the fill's own alpha.
func fillLayer(bounds image.Rectangle, mask *image.Alpha, fill color.NRGBA) *image.NRGBA {
	layer := image.NewNRGBA(bounds)
	draw.DrawMask(layer, bounds, image.NewUniform(fill), image.Point{}, mask, image.Point{}, draw.Src)
	return layer
}
