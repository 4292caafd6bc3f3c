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

package content

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/internal/float"
)

// This file implements the operators in the "General graphics state" and
// "Special graphics state" categories of table 56, ISO 32000-2:2020.

// PushGraphicsState saves the current graphics state.
//
// This implements the PDF graphics operator "q".
func (w *Writer) PushGraphicsState() {
	if !w.isValid("PushGraphicsState", objPage) {
		return
	}

	w.nesting = append(w.nesting, pairTypeQ)
	w.stack = append(w.stack, w.State.Clone())

	_, w.Err = fmt.Fprintln(w.Content, "q")
}

// PopGraphicsState restores the previously saved graphics state.
//
// This implements the PDF graphics operator "Q".
func (w *Writer) PopGraphicsState() {
	if !w.isValid("PopGraphicsState", objPage) {
		return
	}

	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeQ {
		w.Err = errors.New("PopGraphicsState: no matching PushGraphicsState")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]

	n := len(w.stack) - 1
	w.State = w.stack[n]
	w.stack = w.stack[:n]

	_, w.Err = fmt.Fprintln(w.Content, "Q")
}

// Transform prepends an additional transformation to the current
// transformation matrix: the new transformation is applied to user
// coordinates first, followed by the existing transformation.
//
// This implements the PDF graphics operator "cm".
func (w *Writer) Transform(extra matrix.Matrix) {
	if !w.isValid("Transform", objPage) {
		return
	}

	w.Param.CTM = extra.Mul(w.Param.CTM)

	_, w.Err = fmt.Fprintln(w.Content,
		float.Format(extra[0], 3), float.Format(extra[1], 3),
		float.Format(extra[2], 3), float.Format(extra[3], 3),
		float.Format(extra[4], 3), float.Format(extra[5], 3), "cm")
}

// SetLineWidth sets the line width.
//
// This implements the PDF graphics operator "w".
func (w *Writer) SetLineWidth(width float64) {
	if !w.isValid("SetLineWidth", objPage|objText) {
		return
	}
	if width < 0 {
		w.Err = fmt.Errorf("SetLineWidth: negative width %f", width)
		return
	}
	if w.isSet(StateLineWidth) && nearlyEqual(width, w.Param.LineWidth) {
		return
	}

	w.Param.LineWidth = width
	w.Set |= StateLineWidth

	_, w.Err = fmt.Fprintln(w.Content, float.Format(width, 3), "w")
}

// SetLineCap sets the line cap style.
//
// This implements the PDF graphics operator "J".
func (w *Writer) SetLineCap(cap LineCapStyle) {
	if !w.isValid("SetLineCap", objPage|objText) {
		return
	}
	if cap > 2 {
		w.Err = fmt.Errorf("SetLineCap: invalid line cap style %d", cap)
		return
	}
	if w.isSet(StateLineCap) && cap == w.Param.LineCap {
		return
	}

	w.Param.LineCap = cap
	w.Set |= StateLineCap

	_, w.Err = fmt.Fprintln(w.Content, int(cap), "J")
}

// SetLineJoin sets the line join style.
//
// This implements the PDF graphics operator "j".
func (w *Writer) SetLineJoin(join LineJoinStyle) {
	if !w.isValid("SetLineJoin", objPage|objText) {
		return
	}
	if join > 2 {
		w.Err = fmt.Errorf("SetLineJoin: invalid line join style %d", join)
		return
	}
	if w.isSet(StateLineJoin) && join == w.Param.LineJoin {
		return
	}

	w.Param.LineJoin = join
	w.Set |= StateLineJoin

	_, w.Err = fmt.Fprintln(w.Content, int(join), "j")
}

// SetMiterLimit sets the miter limit.
//
// This implements the PDF graphics operator "M".
func (w *Writer) SetMiterLimit(limit float64) {
	if !w.isValid("SetMiterLimit", objPage|objText) {
		return
	}
	if limit < 1 {
		w.Err = fmt.Errorf("SetMiterLimit: invalid miter limit %f", limit)
		return
	}
	if w.isSet(StateMiterLimit) && nearlyEqual(limit, w.Param.MiterLimit) {
		return
	}

	w.Param.MiterLimit = limit
	w.Set |= StateMiterLimit

	_, w.Err = fmt.Fprintln(w.Content, float.Format(limit, 3), "M")
}

// SetLineDash sets the line dash pattern.  An empty pattern makes the line
// solid.
//
// This implements the PDF graphics operator "d".
func (w *Writer) SetLineDash(pattern []float64, phase float64) {
	if !w.isValid("SetLineDash", objPage|objText) {
		return
	}
	if w.isSet(StateLineDash) &&
		sliceNearlyEqual(pattern, w.Param.DashPattern) &&
		nearlyEqual(phase, w.Param.DashPhase) {
		return
	}

	w.Param.DashPattern = append([]float64(nil), pattern...)
	w.Param.DashPhase = phase
	w.Set |= StateLineDash

	_, w.Err = fmt.Fprint(w.Content, "[")
	if w.Err != nil {
		return
	}
	sep := ""
	for _, x := range pattern {
		_, w.Err = fmt.Fprint(w.Content, sep, float.Format(x, 3))
		if w.Err != nil {
			return
		}
		sep = " "
	}
	_, w.Err = fmt.Fprint(w.Content, "] ", float.Format(phase, 3), " d\n")
}

// SetStrokeAlpha declares (or reuses) an ExtGState resource carrying the
// given stroke opacity and applies it.
//
// This implements the PDF graphics operator "gs".
func (w *Writer) SetStrokeAlpha(gs *ExtGState) {
	if !w.isValid("SetStrokeAlpha", objPage|objText) {
		return
	}
	if !gs.HasStrokeAlpha {
		w.Err = errors.New("SetStrokeAlpha: no stroke alpha in ExtGState")
		return
	}
	if w.isSet(StateStrokeAlpha) && nearlyEqual(gs.StrokeAlpha, w.Param.StrokeAlpha) {
		return
	}

	w.Param.StrokeAlpha = gs.StrokeAlpha
	w.Set |= StateStrokeAlpha

	w.applyExtGState(gs)
}

// SetFillAlpha declares (or reuses) an ExtGState resource carrying the
// given fill opacity and applies it.
//
// This implements the PDF graphics operator "gs".
func (w *Writer) SetFillAlpha(gs *ExtGState) {
	if !w.isValid("SetFillAlpha", objPage|objText) {
		return
	}
	if !gs.HasFillAlpha {
		w.Err = errors.New("SetFillAlpha: no fill alpha in ExtGState")
		return
	}
	if w.isSet(StateFillAlpha) && nearlyEqual(gs.FillAlpha, w.Param.FillAlpha) {
		return
	}

	w.Param.FillAlpha = gs.FillAlpha
	w.Set |= StateFillAlpha

	w.applyExtGState(gs)
}

func (w *Writer) applyExtGState(gs *ExtGState) {
	name := w.Resources.nameFor(catExtGState, gs)
	_, w.Err = fmt.Fprintln(w.Content, "/"+string(name), "gs")
}
