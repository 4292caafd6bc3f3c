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
	"fmt"

	"github.com/sruffner/pdfcanvas/internal/float"
)

// This file implements the color operators of table 73, ISO 32000-2:2020.

// SetStrokeColor sets the color used for stroking operations.  Setting the
// same color again is a no-op.
func (w *Writer) SetStrokeColor(c Color) {
	w.setColor(c, true)
}

// SetFillColor sets the color used for non-stroking operations.  Setting
// the same color again is a no-op.
func (w *Writer) SetFillColor(c Color) {
	w.setColor(c, false)
}

// SetStrokePattern declares the given pattern and sets it as the stroke
// color.
func (w *Writer) SetStrokePattern(p Pattern) {
	w.setColor(PatternColor(w.Resources.nameFor(catPattern, p)), true)
}

// SetFillPattern declares the given pattern and sets it as the fill color.
func (w *Writer) SetFillPattern(p Pattern) {
	w.setColor(PatternColor(w.Resources.nameFor(catPattern, p)), false)
}

func (w *Writer) setColor(c Color, stroke bool) {
	if !w.isValid("SetColor", objPage|objText) {
		return
	}

	var cur *Color
	var bit StateBits
	if stroke {
		cur, bit = &w.Param.StrokeColor, StateStrokeColor
	} else {
		cur, bit = &w.Param.FillColor, StateFillColor
	}
	if w.isSet(bit) && *cur == c {
		return
	}

	// Switching between direct colors and patterns needs a color space
	// change; direct colors always reselect DeviceRGB implicitly via the
	// rg/RG operators.
	wasPattern := cur.Pattern != ""
	*cur = c
	w.Set |= bit

	if c.Pattern != "" {
		if !wasPattern {
			if stroke {
				_, w.Err = fmt.Fprintln(w.Content, "/Pattern CS")
			} else {
				_, w.Err = fmt.Fprintln(w.Content, "/Pattern cs")
			}
			if w.Err != nil {
				return
			}
		}
		op := "scn"
		if stroke {
			op = "SCN"
		}
		_, w.Err = fmt.Fprintln(w.Content, "/"+string(c.Pattern), op)
		return
	}

	op := "rg"
	if stroke {
		op = "RG"
	}
	_, w.Err = fmt.Fprintln(w.Content,
		float.Format(c.R, 3), float.Format(c.G, 3), float.Format(c.B, 3), op)
}
