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

// Package float formats content-stream operands compactly.
package float

import (
	"strconv"
	"strings"
)

// Format renders x with at most the given number of decimal digits,
// dropping trailing zeros and a trailing decimal point.
func Format(x float64, precision int) string {
	out := strconv.FormatFloat(x, 'f', precision, 64)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}
	if out == "-0" {
		out = "0"
	}
	return out
}

// Round rounds x to the given number of decimal digits.
func Round(x float64, digits int) float64 {
	y, err := strconv.ParseFloat(Format(x, digits), 64)
	if err != nil {
		panic(err)
	}
	return y
}
