package network

import "math"

const (
	// MinScale and MaxScale bound the zoom level.
	MinScale = 0.3
	MaxScale = 3.0
)

// Viewport is the pan/zoom transform applied to the layout:
// screen = content*Scale + Offset.
type Viewport struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// NewViewport returns the identity transform.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// Pan moves the view by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// ZoomAt multiplies the scale by factor while keeping the screen point (px, py) fixed.
// The resulting scale is clamped to [MinScale, MaxScale]; non-positive factors are ignored.
func (v Viewport) ZoomAt(factor, px, py float64) Viewport {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	next := clamp(v.Scale*factor, MinScale, MaxScale)
	if next == v.Scale {
		return v
	}

	// Content point under the cursor before zooming.
	cx, cy := v.Invert(px, py)
	v.Scale = next
	v.OffsetX = px - cx*next
	v.OffsetY = py - cy*next
	return v
}

// Apply maps a content point to screen space.
func (v Viewport) Apply(x, y float64) (float64, float64) {
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

// Invert maps a screen point back to content space.
func (v Viewport) Invert(x, y float64) (float64, float64) {
	return (x - v.OffsetX) / v.Scale, (y - v.OffsetY) / v.Scale
}

// Fit returns the viewport that centers the layout's bounds inside a
// width x height screen with the given padding on every side.
func Fit(l *Layout, width, height, padding float64) Viewport {
	minP, maxP := l.Bounds()
	contentW := maxP.X - minP.X
	contentH := maxP.Y - minP.Y
	availW := width - 2*padding
	availH := height - 2*padding
	if contentW <= 0 || contentH <= 0 || availW <= 0 || availH <= 0 {
		return NewViewport()
	}

	scale := clamp(math.Min(availW/contentW, availH/contentH), MinScale, MaxScale)
	return Viewport{
		Scale:   scale,
		OffsetX: (width-contentW*scale)/2 - minP.X*scale,
		OffsetY: (height-contentH*scale)/2 - minP.Y*scale,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
