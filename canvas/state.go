// pdfcanvas - a 2D vector canvas rendered as PDF content streams
// Copyright (C) 2026  S. Ruffner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package canvas

import (
	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/content"
)

// StrokeSpec describes how paths are stroked.  All lengths are in
// pre-transform units; they are scaled by the uniform scale factor of the
// active transform when the stroke is emitted.
type StrokeSpec struct {
	Width      float64
	Cap        content.LineCapStyle
	Join       content.LineJoinStyle
	MiterLimit float64
	Dash       []float64
	DashPhase  float64
}

// DefaultStroke is the stroke in effect on a fresh canvas.
var DefaultStroke = StrokeSpec{
	Width:      1,
	Cap:        content.LineCapButt,
	Join:       content.LineJoinMiter,
	MiterLimit: 10,
}

// sanitized replaces out-of-range stroke parameters by usable values, so
// that a partially specified spec still strokes.  In particular the zero
// value of MiterLimit stands in for the default limit.
func (s StrokeSpec) sanitized() StrokeSpec {
	out := s
	if !(out.Width >= 0) {
		out.Width = DefaultStroke.Width
	}
	if out.Cap > content.LineCapSquare {
		out.Cap = content.LineCapButt
	}
	if out.Join > content.LineJoinBevel {
		out.Join = content.LineJoinMiter
	}
	if !(out.MiterLimit >= 1) {
		out.MiterLimit = DefaultStroke.MiterLimit
	}
	if !(out.DashPhase >= 0) {
		out.DashPhase = 0
	}
	return out
}

// scaled returns the stroke with all lengths multiplied by s.
func (s StrokeSpec) scaled(scale float64) StrokeSpec {
	out := s
	out.Width = s.Width * scale
	out.DashPhase = s.DashPhase * scale
	if len(s.Dash) > 0 {
		out.Dash = make([]float64, len(s.Dash))
		for i, d := range s.Dash {
			out.Dash[i] = d * scale
		}
	}
	return out
}

func (s StrokeSpec) equal(o StrokeSpec) bool {
	if s.Width != o.Width || s.Cap != o.Cap || s.Join != o.Join ||
		s.MiterLimit != o.MiterLimit || s.DashPhase != o.DashPhase ||
		len(s.Dash) != len(o.Dash) {
		return false
	}
	for i, d := range s.Dash {
		if d != o.Dash[i] {
			return false
		}
	}
	return true
}

// Rect is an axis-aligned rectangle in caller coordinates (y growing
// downward).
type Rect struct {
	X, Y, W, H float64
}

// graphicsState is the mutable drawing state owned by one canvas.  It is
// copied, never shared, when a child canvas is spawned.
type graphicsState struct {
	transform  matrix.Matrix // caller-space transform
	clip       clipRegion    // device-space clip
	paint      Paint
	stroke     StrokeSpec
	font       *Font
	fontSize   float64
	background Paint
	alpha      float64 // composite alpha multiplier, 0..1
	hyperlink  string  // active link target, empty when off
}

func newGraphicsState() graphicsState {
	return graphicsState{
		transform:  matrix.Identity,
		clip:       clipRegion{unbounded: true},
		paint:      Solid{A: 1}, // black
		stroke:     DefaultStroke,
		background: Solid{R: 1, G: 1, B: 1, A: 1},
		alpha:      1,
	}
}

// clone returns a copy with its own dash slice.  Paints are immutable
// values and may be shared.
func (g graphicsState) clone() graphicsState {
	out := g
	out.stroke.Dash = append([]float64(nil), g.stroke.Dash...)
	return out
}

// clipRegion is a device-space area, tracked by its bounding box.  Within
// a clip scope the region may only narrow; a full reset establishes a new
// unconstrained region.
type clipRegion struct {
	unbounded      bool
	x0, y0, x1, y1 float64 // bounding box, x0<=x1, y0<=y1
}

// intersect narrows the region by the given device-space bounding box.
func (c clipRegion) intersect(x0, y0, x1, y1 float64) clipRegion {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if c.unbounded {
		return clipRegion{x0: x0, y0: y0, x1: x1, y1: y1}
	}
	out := clipRegion{
		x0: max(c.x0, x0), y0: max(c.y0, y0),
		x1: min(c.x1, x1), y1: min(c.y1, y1),
	}
	if out.x0 > out.x1 {
		out.x1 = out.x0
	}
	if out.y0 > out.y1 {
		out.y1 = out.y0
	}
	return out
}

// isEmpty reports whether nothing can be painted inside the region.
func (c clipRegion) isEmpty() bool {
	if c.unbounded {
		return false
	}
	return c.x0 >= c.x1 || c.y0 >= c.y1
}

// contains reports whether the device-space box intersects the region.
func (c clipRegion) intersects(x0, y0, x1, y1 float64) bool {
	if c.unbounded {
		return true
	}
	if c.isEmpty() {
		return false
	}
	return x0 < c.x1 && x1 > c.x0 && y0 < c.y1 && y1 > c.y0
}
