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
	"bytes"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/content"
)

// Paint determines the color of filled and stroked geometry.
//
// Paint is a sealed interface; the implementations are [Solid],
// [LinearGradient], [TilePattern] and [PaintFunc].
type Paint interface {
	isPaint()
}

// Solid is a uniform color with opacity.  All components are in the
// range [0, 1].
type Solid struct {
	R, G, B, A float64
}

func (Solid) isPaint() {}

// Gray returns an opaque gray paint.
func Gray(v float64) Solid {
	return Solid{R: v, G: v, B: v, A: 1}
}

// RGB returns an opaque paint with the given color components.
func RGB(r, g, b float64) Solid {
	return Solid{R: r, G: g, B: b, A: 1}
}

// LinearGradient interpolates linearly between two colors along the line
// from (X1, Y1) to (X2, Y2), given in canvas coordinates.  The gradient
// extends beyond both endpoints.
type LinearGradient struct {
	X1, Y1 float64
	C1     Solid
	X2, Y2 float64
	C2     Solid
}

func (LinearGradient) isPaint() {}

// TilePattern tiles the plane with a raster image.  One copy of the
// image covers the anchor rectangle, in canvas coordinates; further
// copies repeat in both directions.
type TilePattern struct {
	Image  image.Image
	Anchor Rect
}

func (TilePattern) isPaint() {}

// PaintFunc is a procedural paint: the function returns the color at a
// point in canvas coordinates.  Such a paint has no operator-level
// representation; the painted region is rasterized when it is used.
type PaintFunc func(x, y float64) color.Color

func (PaintFunc) isPaint() {}

// grayFallback is the paint used when resolving another paint fails.
var grayFallback = Solid{R: 0.5, G: 0.5, B: 0.5, A: 1}

// applyPaint emits the operators selecting p for the given role.  The
// shape being painted is needed for paints which are rasterized against
// their fill region.  Failures never propagate: the paint degrades to a
// flat gray.
func (c *Canvas) applyPaint(p Paint, stroke bool, s *Shape) {
	defer func() {
		if r := recover(); r != nil {
			logger().Warn("paint resolution failed",
				"panic", r, "stroke", stroke)
			c.applySolid(grayFallback, stroke)
		}
	}()

	switch p := p.(type) {
	case Solid:
		c.applySolid(p, stroke)
	case LinearGradient:
		c.applyGradient(p, stroke)
	case TilePattern:
		if !c.applyTilePattern(p, stroke) {
			c.applySolid(grayFallback, stroke)
		}
	case PaintFunc:
		if !c.applyPaintFunc(p, stroke, s) {
			c.applySolid(grayFallback, stroke)
		}
	default:
		c.applySolid(grayFallback, stroke)
	}
}

// resolvedPattern is a one-deep cache entry holding the pattern declared
// the last time a paint was resolved for one of the two color roles.
type resolvedPattern struct {
	paint Paint
	dev   matrix.Matrix
	pat   content.Pattern
}

// cachedPattern returns the pattern declared for the same paint and
// device transform by the previous draw in the given role, or nil.
func (rt *root) cachedPattern(p Paint, dev matrix.Matrix, stroke bool) content.Pattern {
	e := &rt.fillPaint
	if stroke {
		e = &rt.strokePaint
	}
	if e.pat == nil || e.dev != dev || !samePaint(e.paint, p) {
		return nil
	}
	return e.pat
}

func (rt *root) storePattern(p Paint, dev matrix.Matrix, pat content.Pattern, stroke bool) {
	e := &rt.fillPaint
	if stroke {
		e = &rt.strokePaint
	}
	*e = resolvedPattern{paint: p, dev: dev, pat: pat}
}

// samePaint reports whether two paints resolve to the same pattern.
// Procedural paints never compare equal because their rasterization
// depends on the painted region.
func samePaint(a, b Paint) bool {
	switch a := a.(type) {
	case LinearGradient:
		g, ok := b.(LinearGradient)
		return ok && a == g
	case TilePattern:
		tp, ok := b.(TilePattern)
		return ok && a.Anchor == tp.Anchor && a.Image == tp.Image
	}
	return false
}

// selectPattern establishes the pattern and the opacity resource for the
// given role.
func (c *Canvas) selectPattern(pat content.Pattern, alpha float64, stroke bool) {
	if stroke {
		c.w.SetStrokeAlpha(c.root.strokeAlphaState(alpha))
		c.w.SetStrokePattern(pat)
	} else {
		c.w.SetFillAlpha(c.root.fillAlphaState(alpha))
		c.w.SetFillPattern(pat)
	}
}

// applySolid sets a direct color, declaring an opacity resource when the
// effective alpha differs from the one in force.
func (c *Canvas) applySolid(p Solid, stroke bool) {
	alpha := p.A * c.state.alpha
	col := content.DeviceRGB(clamp01(p.R), clamp01(p.G), clamp01(p.B))
	if stroke {
		c.w.SetStrokeAlpha(c.root.strokeAlphaState(alpha))
		c.w.SetStrokeColor(col)
	} else {
		c.w.SetFillAlpha(c.root.fillAlphaState(alpha))
		c.w.SetFillColor(col)
	}
}

// applyGradient declares an axial shading between the gradient's
// endpoints, transformed to page space, and selects it as a pattern.
func (c *Canvas) applyGradient(p LinearGradient, stroke bool) {
	m := c.device()
	pat := c.root.cachedPattern(p, m, stroke)
	if pat == nil {
		x0, y0 := m.Apply(p.X1, p.Y1)
		x1, y1 := m.Apply(p.X2, p.Y2)
		sh := &content.Shading{
			ColorSpace: "DeviceRGB",
			X0:         x0, Y0: y0,
			X1: x1, Y1: y1,
			C0:     [3]float64{clamp01(p.C1.R), clamp01(p.C1.G), clamp01(p.C1.B)},
			C1:     [3]float64{clamp01(p.C2.R), clamp01(p.C2.G), clamp01(p.C2.B)},
			Extend: [2]bool{true, true},
		}
		pat = &content.ShadingPattern{
			Shading: sh,
			Matrix:  matrix.Identity,
		}
		c.root.storePattern(p, m, pat, stroke)
	}

	// The gradient's own opacity is the mean of its endpoint colors.
	alpha := (p.C1.A + p.C2.A) / 2 * c.state.alpha
	c.selectPattern(pat, alpha, stroke)
}

// applyTilePattern declares a tiling pattern whose cell is the source
// raster, anchored at the given rectangle, and selects it.  It returns
// false if the pattern cannot be built.
func (c *Canvas) applyTilePattern(p TilePattern, stroke bool) bool {
	if p.Image == nil || p.Anchor.W <= 0 || p.Anchor.H <= 0 {
		return false
	}
	b := p.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return false
	}

	m := c.device()
	pat := c.root.cachedPattern(p, m, stroke)
	if pat == nil {
		img, err := c.encodeImage(p.Image)
		if err != nil {
			logger().Warn("tile pattern image encoding failed", "err", err)
			return false
		}

		cell, cellRes := tileCell(img, w, h)

		// Pattern space has the cell at the origin with the image's
		// pixel size; the matrix maps one cell onto the anchor rectangle
		// in page space, flipping vertically so the image's first row is
		// at the top of the anchor.
		fit := matrix.Matrix{
			p.Anchor.W / float64(w), 0,
			0, -p.Anchor.H / float64(h),
			p.Anchor.X, p.Anchor.Y + p.Anchor.H,
		}
		pat = &content.TilingPattern{
			BBox:      [4]float64{0, 0, float64(w), float64(h)},
			XStep:     float64(w),
			YStep:     float64(h),
			Matrix:    fit.Mul(m),
			Content:   cell,
			Resources: cellRes,
		}
		c.root.storePattern(p, m, pat, stroke)
	}

	c.selectPattern(pat, c.state.alpha, stroke)
	return true
}

// tileCell builds the content stream of a pattern cell showing the image
// at the given pixel size, together with the cell's own resources.
func tileCell(img *content.ImageXObject, w, h int) ([]byte, *content.Resources) {
	res := content.NewResources()
	var buf bytes.Buffer
	cw := content.NewWriter(&buf, res)
	cw.PushGraphicsState()
	cw.Transform(matrix.Matrix{float64(w), 0, 0, float64(h), 0, 0})
	cw.DrawImage(img)
	cw.PopGraphicsState()
	return buf.Bytes(), res
}

// applyPaintFunc rasterizes the shape's fill region at page resolution,
// sampling the paint function at every covered pixel, and selects the
// result as a page-sized one-shot pattern.  It returns false if the
// raster cannot be produced.
func (c *Canvas) applyPaintFunc(p PaintFunc, stroke bool, s *Shape) bool {
	if p == nil || s == nil {
		return false
	}
	w := int(math.Ceil(c.root.width))
	h := int(math.Ceil(c.root.height))
	if w <= 0 || h <= 0 {
		return false
	}

	inv, ok := invert(c.device())
	if !ok {
		return false
	}

	// Rasterize the shape in raster coordinates: device x unchanged,
	// device y measured from the top.
	m := c.device()
	ras := vector.NewRasterizer(w, h)
	fh := float32(h)
	for _, seg := range s.segs {
		switch seg.op {
		case segMove:
			x, y := m.Apply(seg.pts[0], seg.pts[1])
			ras.MoveTo(float32(x), fh-float32(y))
		case segLine:
			x, y := m.Apply(seg.pts[0], seg.pts[1])
			ras.LineTo(float32(x), fh-float32(y))
		case segQuad:
			x1, y1 := m.Apply(seg.pts[0], seg.pts[1])
			x2, y2 := m.Apply(seg.pts[2], seg.pts[3])
			ras.QuadTo(float32(x1), fh-float32(y1), float32(x2), fh-float32(y2))
		case segCube:
			x1, y1 := m.Apply(seg.pts[0], seg.pts[1])
			x2, y2 := m.Apply(seg.pts[2], seg.pts[3])
			x3, y3 := m.Apply(seg.pts[4], seg.pts[5])
			ras.CubeTo(float32(x1), fh-float32(y1), float32(x2), fh-float32(y2),
				float32(x3), fh-float32(y3))
		case segClose:
			ras.ClosePath()
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := &funcImage{
		paint:  p,
		bounds: dst.Bounds(),
		inv:    inv,
		height: float64(h),
	}
	ras.Draw(dst, dst.Bounds(), src, image.Point{})

	img, err := c.encodeImage(dst)
	if err != nil {
		logger().Warn("procedural paint raster encoding failed", "err", err)
		return false
	}

	cell, cellRes := tileCell(img, w, h)
	pat := &content.TilingPattern{
		BBox:      [4]float64{0, 0, float64(w), float64(h)},
		XStep:     float64(w),
		YStep:     float64(h),
		Matrix:    matrix.Identity,
		Content:   cell,
		Resources: cellRes,
	}

	c.selectPattern(pat, c.state.alpha, stroke)
	return true
}

// funcImage samples a [PaintFunc] on the pixel grid of the page,
// converting each pixel center back to canvas coordinates.
type funcImage struct {
	paint  PaintFunc
	bounds image.Rectangle
	inv    matrix.Matrix
	height float64
}

func (f *funcImage) ColorModel() color.Model { return color.RGBAModel }

func (f *funcImage) Bounds() image.Rectangle { return f.bounds }

func (f *funcImage) At(px, py int) color.Color {
	devX := float64(px) + 0.5
	devY := f.height - (float64(py) + 0.5)
	x, y := f.inv.Apply(devX, devY)
	return f.paint(x, y)
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
