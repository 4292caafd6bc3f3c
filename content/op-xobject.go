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

import "fmt"

// DrawImage declares the given image XObject and paints it.  The image is
// mapped to the unit square of the current user space, so callers normally
// bracket this with a save/restore pair and a placement transform.
//
// This implements the PDF graphics operator "Do".
func (w *Writer) DrawImage(img *ImageXObject) {
	if !w.isValid("DrawImage", objPage) {
		return
	}

	name := w.Resources.nameFor(catXObject, img)
	_, w.Err = fmt.Fprintln(w.Content, "/"+string(name), "Do")
}
