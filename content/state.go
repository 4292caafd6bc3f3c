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

import "seehuhn.de/go/geom/matrix"

// LineCapStyle is the style for the ends of stroked open subpaths.
type LineCapStyle uint8

// Possible values for LineCapStyle.
// See table 54 of ISO 32000-2:2020.
const (
	LineCapButt   LineCapStyle = 0
	LineCapRound  LineCapStyle = 1
	LineCapSquare LineCapStyle = 2
)

// LineJoinStyle is the style for joints between connected path segments.
type LineJoinStyle uint8

// Possible values for LineJoinStyle.
// See table 55 of ISO 32000-2:2020.
const (
	LineJoinMiter LineJoinStyle = 0
	LineJoinRound LineJoinStyle = 1
	LineJoinBevel LineJoinStyle = 2
)

// Color is a stroke or fill color: either a direct DeviceRGB value or a
// named pattern.
type Color struct {
	R, G, B float64
	Pattern Name
}

// DeviceRGB returns a direct color in the DeviceRGB color space.
func DeviceRGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// DeviceGray returns the gray level g as a DeviceRGB color.
func DeviceGray(g float64) Color {
	return Color{R: g, G: g, B: g}
}

// PatternColor returns a color referring to a named pattern.
func PatternColor(name Name) Color {
	return Color{Pattern: name}
}

// State holds the graphics state parameters tracked by the [Writer], so
// that operators which would not change the state can be suppressed.
type State struct {
	Param *Parameters
	Set   StateBits
}

// Parameters collects the graphics state parameters relevant to the
// translator.  See section 8.4 of ISO 32000-2:2020 for the full set.
type Parameters struct {
	CTM matrix.Matrix

	StrokeColor Color
	FillColor   Color
	StrokeAlpha float64
	FillAlpha   float64

	LineWidth   float64
	LineCap     LineCapStyle
	LineJoin    LineJoinStyle
	MiterLimit  float64
	DashPattern []float64
	DashPhase   float64

	Font     *Font
	FontSize float64

	// Text state; the matrices reset at the start of each text object.
	CharSpacing       float64
	HorizontalScaling float64
	TextRise          float64
	TextMatrix        matrix.Matrix
}

// Clone returns a shallow copy of the state with its own parameter block.
func (s State) Clone() State {
	param := *s.Param
	param.DashPattern = append([]float64(nil), s.Param.DashPattern...)
	return State{Param: &param, Set: s.Set}
}

// StateBits is a bit mask identifying fields of [Parameters].
type StateBits uint32

// Possible values for StateBits.
const (
	StateStrokeColor StateBits = 1 << iota
	StateFillColor
	StateStrokeAlpha
	StateFillAlpha
	StateLineWidth
	StateLineCap
	StateLineJoin
	StateMiterLimit
	StateLineDash
	StateFont
	StateCharSpacing
	StateHorizontalScaling
	StateTextRise

	stateFirstUnused
	allStateBits = stateFirstUnused - 1
)

// NewState returns the default graphics state at the start of a content
// stream.
func NewState() State {
	param := &Parameters{
		CTM: matrix.Identity,

		StrokeColor: DeviceGray(0),
		FillColor:   DeviceGray(0),
		StrokeAlpha: 1,
		FillAlpha:   1,

		LineWidth:  1,
		LineCap:    LineCapButt,
		LineJoin:   LineJoinMiter,
		MiterLimit: 10,

		CharSpacing:       0,
		HorizontalScaling: 1,
		TextRise:          0,
	}
	// Font has no default and must be set before text is shown.
	return State{Param: param, Set: allStateBits & ^StateFont}
}

func (s *State) isSet(bits StateBits) bool {
	return s.Set&bits == bits
}

func nearlyEqual(a, b float64) bool {
	const eps = 1e-6
	d := a - b
	return d < eps && d > -eps
}

func sliceNearlyEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, x := range a {
		if !nearlyEqual(x, b[i]) {
			return false
		}
	}
	return true
}
