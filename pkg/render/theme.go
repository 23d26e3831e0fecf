package render

import "image/color"

// Palette. Dark navy ground with cyan hosts and orange external endpoints;
// gold marks hover, selection and search hits.
var (
	colorBg       = color.RGBA{0x0f, 0x0f, 0x1a, 0xff}
	colorGrid     = color.RGBA{0x2a, 0x2a, 0x44, 0xff}
	colorVignette = color.RGBA{0x00, 0x00, 0x00, 0x78}

	colorHost         = color.RGBA{0x22, 0xd3, 0xee, 0xff}
	colorHostCore     = color.RGBA{0xa7, 0xf3, 0xfc, 0xff}
	colorExternal     = color.RGBA{0xf9, 0x73, 0x16, 0xff}
	colorExternalCore = color.RGBA{0xfe, 0xd7, 0xaa, 0xff}

	colorEdge      = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorHighlight = color.RGBA{0xfb, 0xbf, 0x24, 0xff}
	colorPinDot    = color.RGBA{0xf8, 0xf8, 0xff, 0xff}

	colorLabelBG     = color.RGBA{0x1a, 0x1a, 0x2e, 0xe6}
	colorLabelBorder = color.RGBA{0x44, 0x47, 0x5a, 0xff}
	colorLabelText   = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
	colorLabelSubtle = color.RGBA{0x88, 0x88, 0xaa, 0xff}
)

func withAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A) * a)
	return c
}
