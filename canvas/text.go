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
)

// ScriptClass positions a text run relative to the baseline.
type ScriptClass int

// The possible script classes.
const (
	ScriptNormal ScriptClass = iota
	ScriptSuper
	ScriptSub
)

// Styling ratios, as fractions of the base font size.  The values are
// empirical approximations rather than derived from font metrics, and
// can be adjusted before rendering starts.
var (
	// ScriptScale is the size of super- and subscript text.
	ScriptScale = 0.58
	// SuperscriptRise is how far superscript text sits above the
	// baseline.
	SuperscriptRise = 0.40
	// SubscriptDrop is how far subscript text sits below the baseline.
	SubscriptDrop = 0.33
	// LineThickness is the thickness of underlines and strikethroughs.
	LineThickness = 0.05
	// UnderlineOffset is how far the underline sits below the baseline.
	UnderlineOffset = 0.05
	// StrikethroughOffset is how far the strikethrough sits above the
	// baseline.
	StrikethroughOffset = 0.35
)

// defaultFontSize is used when neither the run nor the canvas selects a
// size.
const defaultFontSize = 12

// TextRun is a maximal stretch of text sharing one style.  Zero-valued
// fields fall back to the canvas state: a nil Font uses the canvas font,
// a zero Size the canvas font size, and a nil Paint the active paint.
type TextRun struct {
	Text  string
	Font  *Font
	Size  float64
	Paint Paint

	// Stretch widens (>1) or narrows (<1) the glyphs horizontally.
	// Zero means no stretching.
	Stretch float64

	Script        ScriptClass
	Underline     bool
	Strikethrough bool
}

// runLayout is the resolved geometry of one run.
type runLayout struct {
	font     *Font
	baseSize float64 // size before any script scaling
	size     float64 // effective glyph size
	stretch  float64
	rise     float64 // baseline shift, positive is up on the page
	paint    Paint
	width    float64 // measured run width at the effective size
	advance  float64 // pen advance, at the unscaled size
}

// layoutRun resolves a run against the canvas state.
func (c *Canvas) layoutRun(run TextRun) (runLayout, error) {
	f := run.Font
	if f == nil {
		f = c.state.font
	}
	if f == nil {
		var err error
		f, err = c.fallbackFont()
		if err != nil {
			return runLayout{}, err
		}
	}

	baseSize := run.Size
	if baseSize == 0 {
		baseSize = c.state.fontSize
	}
	if baseSize == 0 {
		baseSize = defaultFontSize
	}

	stretch := run.Stretch
	if stretch == 0 {
		stretch = 1
	}

	size := baseSize
	rise := 0.0
	switch run.Script {
	case ScriptSuper:
		size = baseSize * ScriptScale
		rise = baseSize * SuperscriptRise
	case ScriptSub:
		size = baseSize * ScriptScale
		rise = -baseSize * SubscriptDrop
	}

	paint := run.Paint
	if paint == nil {
		paint = c.state.paint
	}

	return runLayout{
		font:     f,
		baseSize: baseSize,
		size:     size,
		stretch:  stretch,
		rise:     rise,
		paint:    paint,
		width:    f.stringWidth(run.Text, size) * stretch,
		advance:  f.stringWidth(run.Text, baseSize) * stretch,
	}, nil
}

// MeasureText returns the total width of the runs in canvas units,
// measured the same way [Canvas.DrawText] advances the pen.
func (c *Canvas) MeasureText(runs ...TextRun) float64 {
	var total float64
	for _, run := range runs {
		lay, err := c.layoutRun(run)
		if err != nil {
			continue
		}
		total += lay.advance
	}
	return total
}

// DrawText renders the runs left to right, starting with the baseline at
// (x, y) in canvas coordinates.
//
// A run whose characters all have both a single-byte code and a glyph in
// its font is shown with text operators.  If any character fails that
// test the whole run is converted to filled glyph outlines instead; the
// decision is made once per run, so widths stay consistent.
func (c *Canvas) DrawText(x, y float64, runs ...TextRun) {
	if c.invalid() {
		return
	}

	penX := x
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		lay, err := c.layoutRun(run)
		if err != nil {
			logger().Warn("no usable font for text run", "err", err)
			continue
		}
		c.drawRun(run, lay, penX, y)
		penX += lay.advance
	}
}

// drawRun renders one run with its baseline starting at (penX, penY).
func (c *Canvas) drawRun(run TextRun, lay runLayout, penX, penY float64) {
	// The baseline the glyphs actually sit on, in canvas coordinates.
	// The rise is an upward shift on the page, so it subtracts here.
	baseY := penY - lay.rise

	m := c.device()
	bounds := RectShape(penX, baseY-lay.font.Ascent(lay.size),
		lay.width, lay.font.Ascent(lay.size)-lay.font.Descent(lay.size))
	x0, y0, x1, y1, ok := bounds.transformedBounds(m)
	if !ok || !c.state.clip.intersects(x0, y0, x1, y1) {
		return
	}

	if lay.font.canDisplayAll(run.Text) {
		c.drawRunNative(run, lay, penX, penY)
	} else {
		c.drawRunOutline(run, lay, penX, baseY)
	}

	if run.Underline {
		off := lay.baseSize * UnderlineOffset
		c.decorateRun(penX, penY+off, lay)
	}
	if run.Strikethrough {
		off := lay.baseSize * StrikethroughOffset
		c.decorateRun(penX, penY-off, lay)
	}

	c.addLink(x0, y0, x1, y1)
}

// drawRunNative shows the run with text operators.
func (c *Canvas) drawRunNative(run TextRun, lay runLayout, penX, penY float64) {
	// Text space is y-up; canvas space is y-down.  The text matrix
	// flips at the pen position and then follows the canvas transform
	// into page space.
	tm := matrix.Matrix{1, 0, 0, -1, penX, penY}.
		Mul(c.state.transform).
		Mul(flipMatrix(c.root.height))

	// The widths the downstream font dictionary declares are rounded to
	// whole thousandths, while the measured width is exact.  A uniform
	// character spacing spreads the difference over the glyphs.
	var roundedSum float64
	n := 0
	for _, r := range run.Text {
		roundedSum += lay.font.glyphAdvanceRounded(r)
		n++
	}
	roundedSum *= lay.size
	exact := lay.font.stringWidth(run.Text, lay.size)
	spacing := 0.0
	if n > 0 {
		spacing = (exact - roundedSum) / float64(n)
	}

	c.applyPaint(lay.paint, false, RectShape(penX, penY-lay.size, lay.width, lay.size))

	w := c.w
	w.TextStart()
	w.TextSetFont(lay.font.resource(), lay.size)
	w.TextSetMatrix(tm)
	w.TextSetHorizontalScaling(lay.stretch)
	w.TextSetRise(lay.rise)
	w.TextSetCharacterSpacing(spacing)
	w.TextShow(lay.font.encode(run.Text))
	w.TextSetCharacterSpacing(0)
	w.TextSetHorizontalScaling(1)
	w.TextSetRise(0)
	w.TextEnd()
}

// drawRunOutline converts the run to filled glyph outlines.  The same
// measured advances as in the native case keep the spacing identical.
func (c *Canvas) drawRunOutline(run TextRun, lay runLayout, penX, baseY float64) {
	upem := lay.font.unitsPerEm()
	scale := lay.size / upem

	shape := NewShape()
	px := penX
	for _, r := range run.Text {
		// Font design units are y-up; flip them into canvas space at
		// the pen position.
		gm := matrix.Matrix{scale * lay.stretch, 0, 0, -scale, px, baseY}
		lay.font.appendGlyphOutline(shape, r, gm)
		px += lay.font.glyphAdvance(r) * lay.size * lay.stretch
	}
	if shape.isEmpty() {
		return
	}
	c.fillShape(shape, lay.paint)
}

// decorateRun strokes a horizontal line of the run's width at the given
// vertical position, used for underlines and strikethroughs.  The stroke
// in force before the call is untouched.
func (c *Canvas) decorateRun(penX, lineY float64, lay runLayout) {
	thickness := lay.baseSize * LineThickness

	c.w.PushGraphicsState()
	spec := StrokeSpec{
		Width:      thickness,
		Cap:        DefaultStroke.Cap,
		Join:       DefaultStroke.Join,
		MiterLimit: DefaultStroke.MiterLimit,
	}
	scale := uniformScale(c.state.transform)
	c.applyStroke(spec.scaled(scale))

	line := LineShape(penX, lineY, penX+lay.width, lineY)
	c.applyPaint(lay.paint, true, line)
	c.emitPath(line, c.device())
	c.w.Stroke()
	c.w.PopGraphicsState()
}
