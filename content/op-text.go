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

// This file implements the text-object and text-state operators of
// tables 105 and 107, ISO 32000-2:2020.

// TextStart begins a new text object.
//
// This implements the PDF graphics operator "BT".
func (w *Writer) TextStart() {
	if !w.isValid("TextStart", objPage) {
		return
	}
	w.currentObject = objText
	w.nesting = append(w.nesting, pairTypeBT)

	w.Param.TextMatrix = matrix.Identity

	_, w.Err = fmt.Fprintln(w.Content, "BT")
}

// TextEnd ends the current text object.
//
// This implements the PDF graphics operator "ET".
func (w *Writer) TextEnd() {
	if !w.isValid("TextEnd", objText) {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeBT {
		w.Err = errors.New("TextEnd: no matching TextStart")
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	w.currentObject = objPage

	_, w.Err = fmt.Fprintln(w.Content, "ET")
}

// TextSetFont selects the font and font size.
//
// This implements the PDF graphics operator "Tf".
func (w *Writer) TextSetFont(font *Font, size float64) {
	if !w.isValid("TextSetFont", objPage|objText) {
		return
	}
	if w.isSet(StateFont) &&
		w.Param.Font == font && nearlyEqual(w.Param.FontSize, size) {
		return
	}

	w.Param.Font = font
	w.Param.FontSize = size
	w.Set |= StateFont

	name := w.Resources.nameFor(catFont, font)
	_, w.Err = fmt.Fprintln(w.Content, "/"+string(name), float.Format(size, 3), "Tf")
}

// TextSetMatrix sets the text matrix and the text line matrix.
//
// This implements the PDF graphics operator "Tm".
func (w *Writer) TextSetMatrix(m matrix.Matrix) {
	if !w.isValid("TextSetMatrix", objText) {
		return
	}

	w.Param.TextMatrix = m

	_, w.Err = fmt.Fprintln(w.Content,
		float.Format(m[0], 3), float.Format(m[1], 3),
		float.Format(m[2], 3), float.Format(m[3], 3),
		float.Format(m[4], 3), float.Format(m[5], 3), "Tm")
}

// TextSetCharacterSpacing sets the character spacing.
//
// This implements the PDF graphics operator "Tc".
func (w *Writer) TextSetCharacterSpacing(spacing float64) {
	if !w.isValid("TextSetCharacterSpacing", objPage|objText) {
		return
	}
	if w.isSet(StateCharSpacing) && nearlyEqual(spacing, w.Param.CharSpacing) {
		return
	}

	w.Param.CharSpacing = spacing
	w.Set |= StateCharSpacing

	_, w.Err = fmt.Fprintln(w.Content, float.Format(spacing, 4), "Tc")
}

// TextSetHorizontalScaling sets the horizontal scaling, as a fraction of
// the normal width (1 means no scaling).
//
// This implements the PDF graphics operator "Tz".
func (w *Writer) TextSetHorizontalScaling(scale float64) {
	if !w.isValid("TextSetHorizontalScaling", objPage|objText) {
		return
	}
	if w.isSet(StateHorizontalScaling) && nearlyEqual(scale, w.Param.HorizontalScaling) {
		return
	}

	w.Param.HorizontalScaling = scale
	w.Set |= StateHorizontalScaling

	_, w.Err = fmt.Fprintln(w.Content, float.Format(scale*100, 2), "Tz")
}

// TextSetRise sets the text rise, in unscaled text space units.
//
// This implements the PDF graphics operator "Ts".
func (w *Writer) TextSetRise(rise float64) {
	if !w.isValid("TextSetRise", objPage|objText) {
		return
	}
	if w.isSet(StateTextRise) && nearlyEqual(rise, w.Param.TextRise) {
		return
	}

	w.Param.TextRise = rise
	w.Set |= StateTextRise

	_, w.Err = fmt.Fprintln(w.Content, float.Format(rise, 3), "Ts")
}

// TextShow shows an already encoded string.
//
// This implements the PDF graphics operator "Tj".
func (w *Writer) TextShow(s []byte) {
	if !w.isValid("TextShow", objText) {
		return
	}
	if !w.isSet(StateFont) {
		w.Err = errors.New("TextShow: no font set")
		return
	}

	w.writeString(s)
	if w.Err != nil {
		return
	}
	_, w.Err = fmt.Fprintln(w.Content, " Tj")
}
