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

package float

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		x         float64
		precision int
		want      string
	}{
		{0, 3, "0"},
		{1, 3, "1"},
		{-1, 3, "-1"},
		{1.5, 3, "1.5"},
		{1.5004, 3, "1.5"},
		{0.125, 3, "0.125"},
		{0.125, 2, "0.13"},
		{-0.0001, 3, "0"},
		{612, 2, "612"},
		{72.00001, 4, "72"},
	}
	for _, c := range cases {
		if got := Format(c.x, c.precision); got != c.want {
			t.Errorf("Format(%g, %d) = %q, want %q", c.x, c.precision, got, c.want)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round(1.23456, 2) = %g, want 1.23", got)
	}
	if got := Round(-1.005, 1); got != -1 {
		t.Errorf("Round(-1.005, 1) = %g, want -1", got)
	}
}
