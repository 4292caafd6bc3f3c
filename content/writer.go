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

// Package content writes PDF content streams.
//
// A [Writer] emits page-description operators to an io.Writer and keeps
// track of the graphics state, so that operators which would not change
// the effective state are suppressed.  Resources referred to by name are
// collected in a [Resources] value; embedding them in a document file is
// outside the scope of this package.
package content

import (
	"fmt"
	"io"

	"github.com/sruffner/pdfcanvas/internal/float"
)

// Writer writes a PDF content stream.
type Writer struct {
	Content   io.Writer
	Resources *Resources

	// Err is the first error encountered while writing.  Once set, all
	// subsequent operator calls are silently ignored.
	Err error

	State
	stack []State

	currentObject objectType
	nesting       []pairType
}

// NewWriter allocates a new Writer emitting to out.  Several writers may
// share a single Resources value.
func NewWriter(out io.Writer, res *Resources) *Writer {
	if res == nil {
		res = NewResources()
	}
	return &Writer{
		Content:       out,
		Resources:     res,
		State:         NewState(),
		currentObject: objPage,
	}
}

// Invalidate discards the writer's knowledge of the current graphics
// state, so that all state-setting operators are emitted in full on the
// next use.  This is needed when the surrounding stream may change the
// state in ways the writer cannot see, for example when the writer's
// output is later spliced into a larger stream.
func (w *Writer) Invalidate() {
	w.Set = 0
}

// NestingDepth returns the number of unmatched save ("q") operators.
func (w *Writer) NestingDepth() int {
	n := 0
	for _, p := range w.nesting {
		if p == pairTypeQ {
			n++
		}
	}
	return n
}

// isValid returns true if the current graphics object is one of the given
// types and w.Err is nil.  Otherwise it sets w.Err and returns false.
func (w *Writer) isValid(cmd string, ss objectType) bool {
	if w.Err != nil {
		return false
	}
	if w.currentObject&ss != 0 {
		return true
	}
	w.Err = fmt.Errorf("unexpected state %q for %q", w.currentObject, cmd)
	return false
}

// coord formats a coordinate operand.
func (w *Writer) coord(x float64) string {
	return float.Format(x, 2)
}

// writeString writes s as a PDF string object, escaping delimiters and
// non-printable bytes.
func (w *Writer) writeString(s []byte) {
	if w.Err != nil {
		return
	}
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '(')
	for _, c := range s {
		switch {
		case c == '(' || c == ')' || c == '\\':
			buf = append(buf, '\\', c)
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 32 || c >= 127:
			buf = append(buf, fmt.Sprintf("\\%03o", c)...)
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, ')')
	_, w.Err = w.Content.Write(buf)
}

// See Figure 9 of ISO 32000-2:2020.
type objectType int

const (
	objPage objectType = 1 << iota
	objPath
	objText
	objClippingPath
)

func (s objectType) String() string {
	switch s {
	case objPage:
		return "page"
	case objPath:
		return "path"
	case objText:
		return "text"
	case objClippingPath:
		return "clipping path"
	default:
		return fmt.Sprintf("objectType(%d)", int(s))
	}
}

type pairType byte

const (
	pairTypeQ  pairType = iota + 1 // q ... Q
	pairTypeBT                     // BT ... ET
)
