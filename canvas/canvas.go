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
	"io"
	"math"

	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/content"
)

// Surface is the capability interface implemented by [Canvas].  Callers
// which only consume drawing operations can accept a Surface instead of
// the concrete type.
type Surface interface {
	Draw(s *Shape)
	Fill(s *Shape)
	Clip(s *Shape)
	SetClip(s *Shape)
	ClearRect(r Rect)
	DrawText(x, y float64, runs ...TextRun)
	DrawImage(img image.Image, mask image.Image, r Rect) bool
	Spawn() *Canvas
	Dispose()
}

var _ Surface = (*Canvas)(nil)

// root holds the data shared by a canvas and all contexts spawned from
// it.  It is owned by a single context tree and never shared between
// trees; only the font cache may be shared more widely.
type root struct {
	width, height float64

	res   *content.Resources
	fonts *FontCache

	fallbackName string
	fallbackLoad func() (*Font, error)

	recode   bool
	quality  float64
	linksOn  bool
	links    []LinkAnnotation
	disposed bool

	// Opacity resources indexed by the alpha value rounded to 0..255,
	// separately for the fill and stroke roles.
	fillAlphaGS   [256]*content.ExtGState
	strokeAlphaGS [256]*content.ExtGState

	// The last pattern paint resolved per role.  Repeating a fill or
	// stroke with the same paint under the same transform reuses the
	// declared pattern resource instead of declaring a new one.
	fillPaint   resolvedPattern
	strokePaint resolvedPattern
}

// LinkAnnotation records a hyperlink region registered while drawing.
// The rectangle is in page coordinates (origin bottom-left).
type LinkAnnotation struct {
	URI  string
	Rect [4]float64 // llx, lly, urx, ury
}

// Option configures a new canvas.
type Option func(*root)

// WithImageRecoding enables lossy re-encoding of drawn raster images at
// the given quality factor (1 to 100).  Without this option images are
// embedded losslessly.
func WithImageRecoding(quality int) Option {
	return func(rt *root) {
		rt.recode = true
		q := min(max(quality, 1), 100)
		rt.quality = float64(q)
	}
}

// WithHyperlinks enables the recording of hyperlink regions.  Without
// this option [Canvas.SetHyperlink] is ignored.
func WithHyperlinks() Option {
	return func(rt *root) {
		rt.linksOn = true
	}
}

// WithFontCache makes the canvas use the given font cache instead of a
// private one.  Sharing a cache between canvases avoids repeated font
// parsing.
func WithFontCache(cache *FontCache) Option {
	return func(rt *root) {
		rt.fonts = cache
	}
}

// WithFallbackFont sets the font used for text calls which do not select
// a font.  The default is [GoRegular].
func WithFallbackFont(f *Font) Option {
	return func(rt *root) {
		rt.fallbackName = f.Name()
		rt.fallbackLoad = func() (*Font, error) { return f, nil }
	}
}

// Canvas translates drawing operations into a page content stream.  The
// origin is at the top-left corner of the page and y grows downward.
//
// A Canvas must not be used from more than one goroutine; independent
// canvases may be used concurrently.
type Canvas struct {
	root   *root
	parent *Canvas

	buf *bytes.Buffer
	w   *content.Writer

	state     graphicsState
	spawnClip clipRegion // clip in force when this canvas was created
	clipDepth int

	children []childRef
	disposed bool
}

type childRef struct {
	canvas *Canvas
	offset int // length of the parent's raw buffer at spawn time
}

// New creates a canvas for a page of the given size in points.
func New(width, height float64, opts ...Option) *Canvas {
	rt := &root{
		width:        width,
		height:       height,
		res:          content.NewResources(),
		fallbackName: GoRegular.String(),
		fallbackLoad: GoRegular.Load,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.fonts == nil {
		rt.fonts = NewFontCache()
	}

	buf := &bytes.Buffer{}
	return &Canvas{
		root:      rt,
		buf:       buf,
		w:         content.NewWriter(buf, rt.res),
		state:     newGraphicsState(),
		spawnClip: clipRegion{unbounded: true},
	}
}

// invalid reports whether drawing calls must be ignored.
func (c *Canvas) invalid() bool {
	return c.disposed || c.root.disposed || c.w.Err != nil
}

// Err returns the first error encountered while emitting operators.
func (c *Canvas) Err() error {
	return c.w.Err
}

// device returns the matrix mapping the canvas coordinate space to page
// coordinates.
func (c *Canvas) device() matrix.Matrix {
	return deviceMatrix(c.state.transform, c.root.height)
}

// Width returns the page width in points.
func (c *Canvas) Width() float64 { return c.root.width }

// Height returns the page height in points.
func (c *Canvas) Height() float64 { return c.root.height }

// Resources returns the resources referred to by the content stream.  The
// result is shared by all contexts of the tree and is complete once the
// root canvas has been disposed.
func (c *Canvas) Resources() *content.Resources {
	return c.root.res
}

// Annotations returns the hyperlink regions recorded so far.
func (c *Canvas) Annotations() []LinkAnnotation {
	return c.root.links
}

// Transform state

// Translate moves the origin of the coordinate space.
func (c *Canvas) Translate(dx, dy float64) {
	c.Transform(matrix.Translate(dx, dy))
}

// Scale scales the coordinate space about the origin.
func (c *Canvas) Scale(sx, sy float64) {
	c.Transform(matrix.Scale(sx, sy))
}

// Rotate rotates the coordinate space about the origin by the given angle
// in radians.  Because y grows downward, positive angles turn clockwise
// on the page.
func (c *Canvas) Rotate(phi float64) {
	c.Transform(matrix.Rotate(phi))
}

// Transform prepends m to the current transform: coordinates pass through
// m first, then through the previously established transform.
func (c *Canvas) Transform(m matrix.Matrix) {
	c.state.transform = m.Mul(c.state.transform)
}

// CurrentTransform returns the active transform.
func (c *Canvas) CurrentTransform() matrix.Matrix {
	return c.state.transform
}

// Paint and stroke state

// SetPaint sets the paint used for filling and stroking.
func (c *Canvas) SetPaint(p Paint) {
	if p == nil {
		return
	}
	c.state.paint = p
}

// Paint returns the active paint.
func (c *Canvas) Paint() Paint {
	return c.state.paint
}

// SetStroke sets the stroke geometry.  Lengths are in canvas units and
// scale with the transform.  Out-of-range parameters are replaced by
// their defaults, so the zero value of a field means "unspecified".
func (c *Canvas) SetStroke(s StrokeSpec) {
	c.state.stroke = s.sanitized()
}

// Stroke returns the active stroke geometry.
func (c *Canvas) Stroke() StrokeSpec {
	return c.state.stroke
}

// SetBackground sets the paint used by [Canvas.ClearRect].
func (c *Canvas) SetBackground(p Paint) {
	if p == nil {
		return
	}
	c.state.background = p
}

// SetAlpha sets a composite opacity multiplier applied on top of the
// paint's own opacity.  Values are clamped to [0, 1].
func (c *Canvas) SetAlpha(alpha float64) {
	c.state.alpha = min(max(alpha, 0), 1)
}

// SetFont selects the font and size for subsequent text calls.
func (c *Canvas) SetFont(f *Font, size float64) {
	c.state.font = f
	c.state.fontSize = size
}

// SetHyperlink makes subsequent text and image calls register a link
// annotation over their bounding box.  An empty URI turns linking off
// again.  The call is ignored unless the canvas was created with
// [WithHyperlinks].
func (c *Canvas) SetHyperlink(uri string) {
	if !c.root.linksOn {
		return
	}
	c.state.hyperlink = uri
}

// addLink records a link annotation over the given page-space box.
func (c *Canvas) addLink(x0, y0, x1, y1 float64) {
	if c.state.hyperlink == "" {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	c.root.links = append(c.root.links, LinkAnnotation{
		URI:  c.state.hyperlink,
		Rect: [4]float64{x0, y0, x1, y1},
	})
}

// Painting

// Fill fills the shape with the active paint, using the shape's winding
// rule.
func (c *Canvas) Fill(s *Shape) {
	if c.invalid() || s.isEmpty() {
		return
	}
	c.fillShape(s, c.state.paint)
}

// fillShape emits the shape as a filled path.  The shape is in canvas
// coordinates.
func (c *Canvas) fillShape(s *Shape, p Paint) {
	m := c.device()
	x0, y0, x1, y1, ok := s.transformedBounds(m)
	if !ok || !c.state.clip.intersects(x0, y0, x1, y1) {
		return
	}

	c.applyPaint(p, false, s)

	// Rectangles which stay axis-aligned under the transform keep their
	// operator form.
	if _, _, _, _, isRect := s.isRect(); isRect && m[1] == 0 && m[2] == 0 {
		c.w.Rectangle(x0, y0, x1-x0, y1-y0)
		c.w.Fill()
		return
	}

	c.emitPath(s, m)
	if s.evenOdd {
		c.w.FillEvenOdd()
	} else {
		c.w.Fill()
	}
}

// Draw strokes the shape with the active stroke and paint.  Strokes under
// a transform which does not preserve circles cannot use a native line
// width; such shapes are converted to their stroke outline and filled
// instead.
func (c *Canvas) Draw(s *Shape) {
	if c.invalid() || s.isEmpty() {
		return
	}

	if !isSimilarity(c.state.transform) {
		outline := s.strokeOutline(c.state.stroke)
		c.fillShape(outline, c.state.paint)
		return
	}

	m := c.device()
	scale := uniformScale(c.state.transform)
	spec := c.state.stroke.scaled(scale)

	x0, y0, x1, y1, ok := s.transformedBounds(m)
	if !ok {
		return
	}
	half := spec.Width / 2
	if !c.state.clip.intersects(x0-half, y0-half, x1+half, y1+half) {
		return
	}

	c.applyStroke(spec)
	c.applyPaint(c.state.paint, true, s)
	c.emitPath(s, m)
	c.w.Stroke()
}

// applyStroke emits the operators for the difference between the active
// and the requested stroke parameters.
func (c *Canvas) applyStroke(spec StrokeSpec) {
	c.w.SetLineWidth(spec.Width)
	c.w.SetLineCap(spec.Cap)
	c.w.SetLineJoin(spec.Join)
	c.w.SetMiterLimit(spec.MiterLimit)
	c.w.SetLineDash(spec.Dash, spec.DashPhase)
}

// ClearRect fills the rectangle with the background paint, leaving the
// active paint unchanged.
func (c *Canvas) ClearRect(r Rect) {
	if c.invalid() || r.W <= 0 || r.H <= 0 {
		return
	}
	c.fillShape(RectShape(r.X, r.Y, r.W, r.H), c.state.background)
}

// Clipping

// Clip intersects the clip region with the shape.  Each clip change opens
// a save scope of its own, so that [Canvas.SetClip] can unwind it.
func (c *Canvas) Clip(s *Shape) {
	if c.invalid() {
		return
	}

	c.w.PushGraphicsState()
	c.clipDepth++

	if s.isEmpty() {
		// A degenerate rectangle keeps the stream well formed while
		// clipping everything away.
		c.w.Rectangle(0, 0, 0, 0)
		c.w.ClipNonZero()
		c.w.EndPath()
		c.state.clip = clipRegion{} // empty
		return
	}

	m := c.device()
	c.emitPath(s, m)
	if s.evenOdd {
		c.w.ClipEvenOdd()
	} else {
		c.w.ClipNonZero()
	}
	c.w.EndPath()

	if x0, y0, x1, y1, ok := s.transformedBounds(m); ok {
		c.state.clip = c.state.clip.intersect(x0, y0, x1, y1)
	}
}

// SetClip discards the clip changes made on this canvas and, if s is not
// nil, establishes s as the new clip.  The restore operators conservatively
// reset all graphics state set since the first clip change, so the next
// draw re-emits what it needs.
func (c *Canvas) SetClip(s *Shape) {
	if c.invalid() {
		return
	}
	for c.clipDepth > 0 {
		c.w.PopGraphicsState()
		c.clipDepth--
	}
	c.state.clip = c.baseClip()
	if s != nil {
		c.Clip(s)
	}
}

// baseClip returns the clip region in effect before any clip change on
// this canvas.  For a child canvas the parent's clip operators remain in
// force inside the child's save scope, so the reset cannot widen beyond
// them.
func (c *Canvas) baseClip() clipRegion {
	return c.spawnClip
}

// ClipBounds returns the bounding box of the clip region in canvas
// coordinates.  The second return value is false if the region is
// unbounded, or if the current transform cannot be inverted.
func (c *Canvas) ClipBounds() (Rect, bool) {
	if c.state.clip.unbounded {
		return Rect{}, false
	}
	inv, ok := invert(c.device())
	if !ok {
		return Rect{}, false
	}
	cl := c.state.clip
	ax, ay := inv.Apply(cl.x0, cl.y0)
	bx, by := inv.Apply(cl.x1, cl.y1)
	x0, x1 := min(ax, bx), max(ax, bx)
	y0, y1 := min(ay, by), max(ay, by)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Composition

// Spawn creates a child canvas inheriting a snapshot of the drawing
// state.  Content written to the child is spliced into the parent's
// stream at the position the parent had reached when Spawn was called,
// once both have been disposed.
func (c *Canvas) Spawn() *Canvas {
	child := &Canvas{
		root:      c.root,
		parent:    c,
		buf:       &bytes.Buffer{},
		state:     c.state.clone(),
		spawnClip: c.state.clip,
	}
	child.w = content.NewWriter(child.buf, c.root.res)

	// The child's operators land in the middle of the parent's stream,
	// where the graphics state is not the writer's default.  Start from
	// an unknown state so everything is emitted in full, inside a save
	// scope of the child's own.
	child.w.Invalidate()
	child.w.PushGraphicsState()

	c.children = append(c.children, childRef{canvas: child, offset: c.buf.Len()})
	return child
}

// Dispose finalizes the canvas.  Children which are still open are
// disposed first.  After Dispose all drawing calls on this canvas are
// ignored; calling Dispose again has no effect.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}

	for _, ch := range c.children {
		ch.canvas.Dispose()
	}

	for c.clipDepth > 0 {
		c.w.PopGraphicsState()
		c.clipDepth--
	}
	if c.parent != nil {
		c.w.PopGraphicsState() // matches the save scope opened by Spawn
	}

	c.disposed = true
	if c.parent == nil {
		c.root.disposed = true
	}
}

// assembled returns the finalized content of this canvas with all child
// content spliced in at its recorded offsets.
func (c *Canvas) assembled() []byte {
	raw := c.buf.Bytes()
	var out bytes.Buffer
	pos := 0
	for _, ch := range c.children {
		out.Write(raw[pos:ch.offset])
		out.Write(ch.canvas.assembled())
		pos = ch.offset
	}
	out.Write(raw[pos:])
	return out.Bytes()
}

// Bytes returns the finalized content stream.  The root canvas is
// disposed first if it is still open.
func (c *Canvas) Bytes() []byte {
	c.Dispose()
	return c.assembled()
}

// WriteTo writes the finalized content stream to w, disposing the canvas
// first if it is still open.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// alphaIndex converts an opacity in [0, 1] to the 0..255 cache index.
func alphaIndex(alpha float64) int {
	i := int(math.Round(alpha * 255))
	return min(max(i, 0), 255)
}

// fillAlphaState returns the shared opacity resource for the fill role.
func (rt *root) fillAlphaState(alpha float64) *content.ExtGState {
	i := alphaIndex(alpha)
	if rt.fillAlphaGS[i] == nil {
		rt.fillAlphaGS[i] = &content.ExtGState{
			FillAlpha:    float64(i) / 255,
			HasFillAlpha: true,
		}
	}
	return rt.fillAlphaGS[i]
}

// strokeAlphaState returns the shared opacity resource for the stroke
// role.
func (rt *root) strokeAlphaState(alpha float64) *content.ExtGState {
	i := alphaIndex(alpha)
	if rt.strokeAlphaGS[i] == nil {
		rt.strokeAlphaGS[i] = &content.ExtGState{
			StrokeAlpha:    float64(i) / 255,
			HasStrokeAlpha: true,
		}
	}
	return rt.strokeAlphaGS[i]
}

// fallbackFont returns the canvas's default font, loading it on first
// use.
func (c *Canvas) fallbackFont() (*Font, error) {
	return c.root.fonts.Get(c.root.fallbackName, c.root.fallbackLoad)
}
