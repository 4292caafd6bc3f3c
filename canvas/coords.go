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

// Caller coordinates use the on-screen convention: origin at the top-left
// corner of the page, y growing downward.  The page-description stream
// uses the opposite convention: origin at the bottom-left corner, y
// growing upward.  The two are related by a fixed vertical flip.

// flipMatrix returns the matrix converting caller coordinates to page
// coordinates for a page of the given height.
func flipMatrix(pageHeight float64) matrix.Matrix {
	return matrix.Matrix{1, 0, 0, -1, 0, pageHeight}
}

// deviceMatrix combines the active caller-space transform with the
// vertical flip.  All path, text-position, image-placement, and
// gradient-endpoint coordinates pass through the result before emission.
func deviceMatrix(ctm matrix.Matrix, pageHeight float64) matrix.Matrix {
	return ctm.Mul(flipMatrix(pageHeight))
}

// uniformScale returns the uniform scale factor of m, the square root of
// the absolute value of its determinant.  Stroke widths and dash lengths
// expressed in pre-transform units are multiplied by this factor.
func uniformScale(m matrix.Matrix) float64 {
	det := m[0]*m[3] - m[1]*m[2]
	return math.Sqrt(math.Abs(det))
}

// isSimilarity reports whether m maps circles to circles, i.e. whether it
// is composed of uniform scaling, rotation, and translation only.  Strokes
// under a non-similarity transform cannot be represented by a native line
// width and are converted to their outline.
func isSimilarity(m matrix.Matrix) bool {
	const eps = 1e-9
	lenX := m[0]*m[0] + m[1]*m[1]
	lenY := m[2]*m[2] + m[3]*m[3]
	dot := m[0]*m[2] + m[1]*m[3]
	return math.Abs(lenX-lenY) <= eps*(lenX+lenY+1) && math.Abs(dot) <= eps*(lenX+lenY+1)
}

// invert returns the inverse of m.  The second return value is false if m
// is singular; callers treat this as an empty or absent result rather than
// an error.
func invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Matrix{}, false
	}
	inv := 1 / det
	return matrix.Matrix{
		m[3] * inv, -m[1] * inv,
		-m[2] * inv, m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}, true
}
