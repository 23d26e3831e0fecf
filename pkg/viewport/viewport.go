// Package viewport maps between graph (world) space and screen (pixel)
// space via a pan offset and a zoom scale. It owns no animation state; the
// interaction controller mutates it in response to pointer input.
package viewport

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Default zoom bounds. Repeated zooming must never push Scale outside the
// active range.
const (
	MinZoom = 0.2
	MaxZoom = 5.0
)

// Viewport is the pan/zoom affine transform.
type Viewport struct {
	PanX  float64
	PanY  float64
	Scale float64

	// MinScale and MaxScale bound Scale. Zero values fall back to the
	// package defaults so a zero-constructed Viewport stays usable.
	MinScale float64
	MaxScale float64
}

// New returns the identity viewport with the default zoom bounds.
func New() Viewport {
	return Viewport{Scale: 1, MinScale: MinZoom, MaxScale: MaxZoom}
}

// SetLimits overrides the zoom bounds, typically from configuration, and
// re-clamps the current scale. Invalid bounds are ignored.
func (v *Viewport) SetLimits(lo, hi float64) {
	if lo <= 0 || hi <= lo {
		return
	}
	v.MinScale, v.MaxScale = lo, hi
	v.Scale = clamp(v.Scale, lo, hi)
}

func (v Viewport) limits() (float64, float64) {
	lo, hi := v.MinScale, v.MaxScale
	if lo <= 0 {
		lo = MinZoom
	}
	if hi <= lo {
		hi = MaxZoom
	}
	return lo, hi
}

// Reset restores the identity transform, keeping the zoom bounds. Called
// whenever a new graph is installed.
func (v *Viewport) Reset() {
	v.PanX, v.PanY, v.Scale = 0, 0, 1
}

// WorldToScreen maps a world point to screen pixels.
func (v Viewport) WorldToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*v.Scale + v.PanX, Y: p.Y*v.Scale + v.PanY}
}

// ScreenToWorld maps a screen pixel to world space. Scale is never zero:
// it is clamped to the active zoom bounds by every mutation.
func (v Viewport) ScreenToWorld(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - v.PanX) / v.Scale, Y: (p.Y - v.PanY) / v.Scale}
}

// Pan translates the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomAt applies a multiplicative zoom factor keeping the world point under
// the given screen cursor fixed. Solving cursor = world·s' + pan' for pan'
// with world held constant gives pan' = cursor − (cursor − pan)·(s'/s).
func (v *Viewport) ZoomAt(cursor r2.Vec, factor float64) {
	lo, hi := v.limits()
	newScale := clamp(v.Scale*factor, lo, hi)
	ratio := newScale / v.Scale
	v.PanX = cursor.X - (cursor.X-v.PanX)*ratio
	v.PanY = cursor.Y - (cursor.Y-v.PanY)*ratio
	v.Scale = newScale
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
