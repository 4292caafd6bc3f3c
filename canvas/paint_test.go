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
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/content"
)

func TestGradientShading(t *testing.T) {
	c := New(100, 100)
	c.SetPaint(LinearGradient{
		X1: 0, Y1: 0, C1: RGB(1, 0, 0),
		X2: 0, Y2: 100, C2: RGB(0, 0, 1),
	})
	c.Fill(RectShape(0, 0, 100, 100))

	out := string(c.Bytes())
	if !strings.Contains(out, "/Pattern cs\n/P1 scn\n") {
		t.Errorf("expected pattern color selection, got %q", out)
	}

	res := c.Resources()
	if len(res.Pattern) != 1 {
		t.Fatalf("got %d patterns, want 1", len(res.Pattern))
	}
	pat, ok := res.Pattern["P1"].(*content.ShadingPattern)
	if !ok {
		t.Fatalf("pattern P1 is %T, want *content.ShadingPattern", res.Pattern["P1"])
	}

	// The gradient endpoints are flipped into page space.
	want := &content.Shading{
		ColorSpace: "DeviceRGB",
		X0:         0, Y0: 100,
		X1: 0, Y1: 0,
		C0:     [3]float64{1, 0, 0},
		C1:     [3]float64{0, 0, 1},
		Extend: [2]bool{true, true},
	}
	if d := cmp.Diff(want, pat.Shading); d != "" {
		t.Errorf("shading differs (-want +got):\n%s", d)
	}
	if pat.Matrix != matrix.Identity {
		t.Errorf("pattern matrix = %v, want identity", pat.Matrix)
	}
}

func TestGradientStroke(t *testing.T) {
	c := New(100, 100)
	c.SetPaint(LinearGradient{
		X1: 0, Y1: 0, C1: RGB(1, 1, 1),
		X2: 100, Y2: 0, C2: RGB(0, 0, 0),
	})
	c.Draw(LineShape(0, 50, 100, 50))

	out := string(c.Bytes())
	if !strings.Contains(out, "/Pattern CS\n/P1 SCN\n") {
		t.Errorf("expected stroking pattern selection, got %q", out)
	}
}

func TestTilePatternGeometry(t *testing.T) {
	tile := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range tile.Pix {
		tile.Pix[i] = 0xff
	}

	c := New(100, 100)
	c.SetPaint(TilePattern{
		Image:  tile,
		Anchor: Rect{X: 10, Y: 10, W: 8, H: 8},
	})
	c.Fill(RectShape(0, 0, 100, 100))

	res := c.Resources()
	pat, ok := res.Pattern["P1"].(*content.TilingPattern)
	if !ok {
		t.Fatalf("pattern P1 is %T, want *content.TilingPattern", res.Pattern["P1"])
	}

	if pat.XStep != 4 || pat.YStep != 4 {
		t.Errorf("steps = %g, %g; want 4, 4", pat.XStep, pat.YStep)
	}
	wantBBox := [4]float64{0, 0, 4, 4}
	if pat.BBox != wantBBox {
		t.Errorf("bbox = %v, want %v", pat.BBox, wantBBox)
	}
	// One cell covers the anchor rectangle; the vertical flip puts the
	// image's first row at the anchor's top edge.
	wantMatrix := matrix.Matrix{2, 0, 0, 2, 10, 82}
	if pat.Matrix != wantMatrix {
		t.Errorf("matrix = %v, want %v", pat.Matrix, wantMatrix)
	}

	wantCell := "q\n4 0 0 4 0 0 cm\n/X1 Do\nQ\n"
	if d := cmp.Diff(wantCell, string(pat.Content)); d != "" {
		t.Errorf("cell content differs (-want +got):\n%s", d)
	}
	if len(pat.Resources.XObject) != 1 {
		t.Errorf("cell has %d images, want 1", len(pat.Resources.XObject))
	}
}

func TestTilePatternWithoutImage(t *testing.T) {
	c := New(100, 100)
	c.SetPaint(TilePattern{Anchor: Rect{W: 10, H: 10}})
	c.Fill(RectShape(0, 0, 10, 10))

	expected := "0.5 0.5 0.5 rg\n0 90 10 10 re\nf\n"
	if d := cmp.Diff(expected, string(c.Bytes())); d != "" {
		t.Errorf("stream differs (-want +got):\n%s", d)
	}
}

func TestPaintFuncPattern(t *testing.T) {
	c := New(20, 20)
	c.SetPaint(PaintFunc(func(x, y float64) color.Color {
		if x < 10 {
			return color.RGBA{R: 0xff, A: 0xff}
		}
		return color.RGBA{B: 0xff, A: 0xff}
	}))
	c.Fill(RectShape(0, 0, 20, 20))

	res := c.Resources()
	pat, ok := res.Pattern["P1"].(*content.TilingPattern)
	if !ok {
		t.Fatalf("pattern P1 is %T, want *content.TilingPattern", res.Pattern["P1"])
	}
	// A procedural paint is rasterized once at page size and placed in
	// page coordinates.
	if pat.XStep != 20 || pat.YStep != 20 {
		t.Errorf("steps = %g, %g; want 20, 20", pat.XStep, pat.YStep)
	}
	if pat.Matrix != matrix.Identity {
		t.Errorf("matrix = %v, want identity", pat.Matrix)
	}

	img := pat.Resources.XObject["X1"]
	if img == nil {
		t.Fatal("pattern cell has no image")
	}
	if img.Width != 20 || img.Height != 20 {
		t.Errorf("raster is %dx%d, want 20x20", img.Width, img.Height)
	}
}

func TestGradientPatternReuse(t *testing.T) {
	g := LinearGradient{
		X1: 0, Y1: 0, C1: RGB(1, 0, 0),
		X2: 0, Y2: 100, C2: RGB(0, 0, 1),
	}
	c := New(100, 100)
	c.SetPaint(g)
	c.Fill(RectShape(0, 0, 10, 10))
	c.Fill(RectShape(20, 20, 10, 10))

	// The second fill reuses the declared pattern; the color selection
	// is not repeated.
	expected := "/Pattern cs\n/P1 scn\n0 90 10 10 re\nf\n20 70 10 10 re\nf\n"
	if d := cmp.Diff(expected, string(c.Bytes())); d != "" {
		t.Errorf("stream differs (-want +got):\n%s", d)
	}
	if n := len(c.Resources().Pattern); n != 1 {
		t.Errorf("got %d patterns, want 1", n)
	}
}

func TestGradientPatternPerTransform(t *testing.T) {
	g := LinearGradient{
		X1: 0, Y1: 0, C1: RGB(1, 0, 0),
		X2: 0, Y2: 100, C2: RGB(0, 0, 1),
	}
	c := New(100, 100)
	c.SetPaint(g)
	c.Fill(RectShape(0, 0, 10, 10))

	// Under a different transform the gradient covers different page
	// coordinates and needs a pattern of its own.
	c.Translate(0, 10)
	c.Fill(RectShape(0, 0, 10, 10))
	c.Dispose()

	if n := len(c.Resources().Pattern); n != 2 {
		t.Errorf("got %d patterns, want 2", n)
	}
}

func TestTilePatternReuse(t *testing.T) {
	tile := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range tile.Pix {
		tile.Pix[i] = 0xff
	}

	c := New(100, 100)
	c.SetPaint(TilePattern{
		Image:  tile,
		Anchor: Rect{X: 10, Y: 10, W: 8, H: 8},
	})
	c.Fill(RectShape(0, 0, 50, 50))
	c.Fill(RectShape(50, 50, 50, 50))
	c.Dispose()

	// One pattern, and one encoded raster inside its cell: the source
	// image is not encoded again for the second fill.
	res := c.Resources()
	if n := len(res.Pattern); n != 1 {
		t.Fatalf("got %d patterns, want 1", n)
	}
	pat, ok := res.Pattern["P1"].(*content.TilingPattern)
	if !ok {
		t.Fatalf("pattern P1 is %T, want *content.TilingPattern", res.Pattern["P1"])
	}
	if n := len(pat.Resources.XObject); n != 1 {
		t.Errorf("cell has %d images, want 1", n)
	}
}

func TestSolidAlphaComposite(t *testing.T) {
	c := New(100, 100)
	c.SetAlpha(0.5)
	c.SetPaint(Solid{R: 1, A: 0.5})
	c.Fill(RectShape(0, 0, 10, 10))
	c.Dispose()

	// Composite alpha multiplies the paint's own opacity.
	res := c.Resources()
	if len(res.ExtGState) != 1 {
		t.Fatalf("got %d ExtGStates, want 1", len(res.ExtGState))
	}
	for _, gs := range res.ExtGState {
		if !gs.HasFillAlpha {
			t.Error("missing fill alpha")
		}
		if gs.FillAlpha < 0.24 || gs.FillAlpha > 0.26 {
			t.Errorf("fill alpha = %g, want about 0.25", gs.FillAlpha)
		}
	}
}
