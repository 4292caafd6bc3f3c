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
	"math"

	"seehuhn.de/go/geom/matrix"
)

type segOp uint8

const (
	segMove segOp = iota
	segLine
	segQuad
	segCube
	segClose
)

type segment struct {
	op  segOp
	pts [6]float64
}

// Shape is path-iterable geometry: a sequence of move/line/quad/cube/close
// segments in caller coordinates, plus a winding rule.
type Shape struct {
	segs    []segment
	evenOdd bool
}

// NewShape returns an empty shape using the nonzero winding rule.
func NewShape() *Shape {
	return &Shape{}
}

// SetEvenOdd selects the even-odd fill rule instead of the default nonzero
// winding rule.
func (s *Shape) SetEvenOdd(evenOdd bool) *Shape {
	s.evenOdd = evenOdd
	return s
}

// MoveTo starts a new subpath at the given point.
func (s *Shape) MoveTo(x, y float64) *Shape {
	s.segs = append(s.segs, segment{op: segMove, pts: [6]float64{x, y}})
	return s
}

// LineTo appends a straight line segment.
func (s *Shape) LineTo(x, y float64) *Shape {
	s.segs = append(s.segs, segment{op: segLine, pts: [6]float64{x, y}})
	return s
}

// QuadTo appends a quadratic Bezier segment.
func (s *Shape) QuadTo(cx, cy, x, y float64) *Shape {
	s.segs = append(s.segs, segment{op: segQuad, pts: [6]float64{cx, cy, x, y}})
	return s
}

// CubeTo appends a cubic Bezier segment.
func (s *Shape) CubeTo(x1, y1, x2, y2, x3, y3 float64) *Shape {
	s.segs = append(s.segs, segment{op: segCube, pts: [6]float64{x1, y1, x2, y2, x3, y3}})
	return s
}

// Close closes the current subpath.
func (s *Shape) Close() *Shape {
	s.segs = append(s.segs, segment{op: segClose})
	return s
}

// RectShape returns a closed rectangular shape.
func RectShape(x, y, w, h float64) *Shape {
	s := NewShape()
	s.MoveTo(x, y)
	s.LineTo(x+w, y)
	s.LineTo(x+w, y+h)
	s.LineTo(x, y+h)
	s.Close()
	return s
}

// LineShape returns an open shape consisting of a single line segment.
func LineShape(x1, y1, x2, y2 float64) *Shape {
	return NewShape().MoveTo(x1, y1).LineTo(x2, y2)
}

// isEmpty reports whether the shape contains no segments.
func (s *Shape) isEmpty() bool {
	return s == nil || len(s.segs) == 0
}

// isRect reports whether the shape is a single closed axis-aligned
// rectangle, returning its position and size if so.
func (s *Shape) isRect() (x, y, w, h float64, ok bool) {
	if s == nil || len(s.segs) < 5 || len(s.segs) > 6 {
		return 0, 0, 0, 0, false
	}
	n := len(s.segs)
	if s.segs[n-1].op != segClose {
		return 0, 0, 0, 0, false
	}
	pts := make([][2]float64, 0, 5)
	for _, seg := range s.segs[:n-1] {
		if (len(pts) == 0) != (seg.op == segMove) || (len(pts) > 0 && seg.op != segLine) {
			return 0, 0, 0, 0, false
		}
		pts = append(pts, [2]float64{seg.pts[0], seg.pts[1]})
	}
	if len(pts) == 5 {
		if pts[4] != pts[0] {
			return 0, 0, 0, 0, false
		}
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return 0, 0, 0, 0, false
	}
	horizFirst := pts[0][1] == pts[1][1] && pts[1][0] == pts[2][0] &&
		pts[2][1] == pts[3][1] && pts[3][0] == pts[0][0]
	vertFirst := pts[0][0] == pts[1][0] && pts[1][1] == pts[2][1] &&
		pts[2][0] == pts[3][0] && pts[3][1] == pts[0][1]
	if !horizFirst && !vertFirst {
		return 0, 0, 0, 0, false
	}
	x0 := min(pts[0][0], pts[2][0])
	y0 := min(pts[0][1], pts[2][1])
	x1 := max(pts[0][0], pts[2][0])
	y1 := max(pts[0][1], pts[2][1])
	return x0, y0, x1 - x0, y1 - y0, true
}

// transformedBounds returns the bounding box of the shape's control
// points under m.  The box is conservative for curved segments.
func (s *Shape) transformedBounds(m matrix.Matrix) (x0, y0, x1, y1 float64, ok bool) {
	first := true
	add := func(px, py float64) {
		x, y := m.Apply(px, py)
		if first {
			x0, y0, x1, y1 = x, y, x, y
			first = false
			return
		}
		x0, y0 = min(x0, x), min(y0, y)
		x1, y1 = max(x1, x), max(y1, y)
	}
	for _, seg := range s.segs {
		switch seg.op {
		case segMove, segLine:
			add(seg.pts[0], seg.pts[1])
		case segQuad:
			add(seg.pts[0], seg.pts[1])
			add(seg.pts[2], seg.pts[3])
		case segCube:
			add(seg.pts[0], seg.pts[1])
			add(seg.pts[2], seg.pts[3])
			add(seg.pts[4], seg.pts[5])
		}
	}
	return x0, y0, x1, y1, !first
}

// emitPath writes the shape as device-space path-construction operators.
// Quadratic segments are promoted to cubics, since the operator set has no
// quadratic form.
func (c *Canvas) emitPath(s *Shape, m matrix.Matrix) {
	w := c.w
	var curX, curY float64 // caller space, for quad promotion
	for _, seg := range s.segs {
		switch seg.op {
		case segMove:
			x, y := m.Apply(seg.pts[0], seg.pts[1])
			w.MoveTo(x, y)
			curX, curY = seg.pts[0], seg.pts[1]
		case segLine:
			x, y := m.Apply(seg.pts[0], seg.pts[1])
			w.LineTo(x, y)
			curX, curY = seg.pts[0], seg.pts[1]
		case segQuad:
			qx, qy := seg.pts[0], seg.pts[1]
			ex, ey := seg.pts[2], seg.pts[3]
			c1x, c1y := curX+2*(qx-curX)/3, curY+2*(qy-curY)/3
			c2x, c2y := ex+2*(qx-ex)/3, ey+2*(qy-ey)/3
			dx1, dy1 := m.Apply(c1x, c1y)
			dx2, dy2 := m.Apply(c2x, c2y)
			dx3, dy3 := m.Apply(ex, ey)
			w.CurveTo(dx1, dy1, dx2, dy2, dx3, dy3)
			curX, curY = ex, ey
		case segCube:
			dx1, dy1 := m.Apply(seg.pts[0], seg.pts[1])
			dx2, dy2 := m.Apply(seg.pts[2], seg.pts[3])
			dx3, dy3 := m.Apply(seg.pts[4], seg.pts[5])
			w.CurveTo(dx1, dy1, dx2, dy2, dx3, dy3)
			curX, curY = seg.pts[4], seg.pts[5]
		case segClose:
			w.ClosePath()
		}
	}
}

// flattenSteps is the number of subdivision steps per Bezier segment when
// a shape is flattened for stroke-outline conversion.
const flattenSteps = 16

// flatten converts the shape to a sequence of polylines in caller
// coordinates.
func (s *Shape) flatten() [][][2]float64 {
	var out [][][2]float64
	var cur [][2]float64
	var startX, startY, curX, curY float64

	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}

	for _, seg := range s.segs {
		switch seg.op {
		case segMove:
			flush()
			startX, startY = seg.pts[0], seg.pts[1]
			curX, curY = startX, startY
			cur = [][2]float64{{curX, curY}}
		case segLine:
			curX, curY = seg.pts[0], seg.pts[1]
			cur = append(cur, [2]float64{curX, curY})
		case segQuad:
			qx, qy := seg.pts[0], seg.pts[1]
			ex, ey := seg.pts[2], seg.pts[3]
			for i := 1; i <= flattenSteps; i++ {
				t := float64(i) / flattenSteps
				u := 1 - t
				x := u*u*curX + 2*u*t*qx + t*t*ex
				y := u*u*curY + 2*u*t*qy + t*t*ey
				cur = append(cur, [2]float64{x, y})
			}
			curX, curY = ex, ey
		case segCube:
			x1, y1 := seg.pts[0], seg.pts[1]
			x2, y2 := seg.pts[2], seg.pts[3]
			ex, ey := seg.pts[4], seg.pts[5]
			for i := 1; i <= flattenSteps; i++ {
				t := float64(i) / flattenSteps
				u := 1 - t
				x := u*u*u*curX + 3*u*u*t*x1 + 3*u*t*t*x2 + t*t*t*ex
				y := u*u*u*curY + 3*u*u*t*y1 + 3*u*t*t*y2 + t*t*t*ey
				cur = append(cur, [2]float64{x, y})
			}
			curX, curY = ex, ey
		case segClose:
			if len(cur) > 0 {
				cur = append(cur, [2]float64{startX, startY})
				curX, curY = startX, startY
			}
		}
	}
	flush()
	return out
}

// strokeOutline converts the shape's stroke, as specified by spec, into a
// fillable outline shape.  Curves are flattened and each segment becomes a
// quadrilateral of the stroke width; this is the degraded representation
// used when the stroke cannot be expressed natively.  The result always
// fills with the nonzero rule, so the conversion terminates after one
// step.
func (s *Shape) strokeOutline(spec StrokeSpec) *Shape {
	half := spec.Width / 2
	if half <= 0 {
		half = 0.5
	}
	out := NewShape()
	for _, line := range s.flatten() {
		for i := 1; i < len(line); i++ {
			x0, y0 := line[i-1][0], line[i-1][1]
			x1, y1 := line[i][0], line[i][1]
			vx, vy := x1-x0, y1-y0
			l := math.Hypot(vx, vy)
			if l == 0 {
				continue
			}
			nx, ny := -vy/l*half, vx/l*half
			out.MoveTo(x0+nx, y0+ny)
			out.LineTo(x1+nx, y1+ny)
			out.LineTo(x1-nx, y1-ny)
			out.LineTo(x0-nx, y0-ny)
			out.Close()
		}
	}
	return out
}
