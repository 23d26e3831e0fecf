package ui

import (
	"fmt"
	"image"
	"strings"
)

// Terminal cells are roughly twice as tall as wide. Drawing the top and
// bottom half of each cell as separate pixels with the upper-half-block
// glyph gives square-ish pixels and doubles the vertical resolution.
const (
	cellPxX = 1
	cellPxY = 2
)

// canvasPixels maps a cell grid to the raster size the renderer should use.
func canvasPixels(cols, rows int) (int, int) {
	return cols * cellPxX, rows * cellPxY
}

// cellToPixel maps a terminal mouse coordinate to raster pixel space,
// targeting the center of the cell.
func cellToPixel(cx, cy int) (float64, float64) {
	return float64(cx*cellPxX) + float64(cellPxX)/2, float64(cy*cellPxY) + float64(cellPxY)/2
}

// rasterToCells converts an image into rows of half-block characters with
// truecolor escapes. Consecutive identical color pairs reuse the previous
// escape, which keeps frames around a tenth of the naive size.
func rasterToCells(img image.Image, cols, rows int) string {
	bounds := img.Bounds()
	var b strings.Builder
	b.Grow(cols * rows * 8)

	for row := 0; row < rows; row++ {
		lastFG, lastBG := uint32(1<<24), uint32(1<<24) // impossible sentinel
		for col := 0; col < cols; col++ {
			x := bounds.Min.X + col*cellPxX
			yTop := bounds.Min.Y + row*cellPxY
			yBot := yTop + 1

			fg := packColor(img.At(x, yTop).RGBA())
			bg := fg
			if yBot < bounds.Max.Y {
				bg = packColor(img.At(x, yBot).RGBA())
			}

			if fg != lastFG || bg != lastBG {
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
					fg>>16&0xff, fg>>8&0xff, fg&0xff,
					bg>>16&0xff, bg>>8&0xff, bg&0xff)
				lastFG, lastBG = fg, bg
			}
			b.WriteRune('▀')
		}
		b.WriteString("\x1b[0m")
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func packColor(r, g, b, _ uint32) uint32 {
	return (r>>8)<<16 | (g>>8)<<8 | b>>8
}
