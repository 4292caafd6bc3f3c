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
	"bytes"
	"compress/zlib"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	img.Set(1, 0, color.RGBA{G: 0xff, A: 0xff})
	img.Set(0, 1, color.RGBA{B: 0xff, A: 0xff})
	img.Set(1, 1, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	return img
}

func TestDrawImageLossless(t *testing.T) {
	c := New(100, 100)
	if !c.DrawImage(testImage(), nil, Rect{X: 10, Y: 10, W: 20, H: 20}) {
		t.Fatal("DrawImage failed")
	}

	expected := "q\n20 0 0 20 10 70 cm\n/X1 Do\nQ\n"
	if d := cmp.Diff(expected, string(c.Bytes())); d != "" {
		t.Errorf("stream differs (-want +got):\n%s", d)
	}

	xo := c.Resources().XObject["X1"]
	if xo == nil {
		t.Fatal("image resource missing")
	}
	if xo.Width != 2 || xo.Height != 2 || xo.ColorSpace != "DeviceRGB" ||
		xo.BitsPerComponent != 8 || xo.Filter != "FlateDecode" {
		t.Errorf("unexpected image dictionary %+v", xo)
	}

	zr, err := zlib.NewReader(bytes.NewReader(xo.Data))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0xff, 0x00, 0x00, 0x00, 0xff, 0x00,
		0x00, 0x00, 0xff, 0xff, 0xff, 0xff,
	}
	if d := cmp.Diff(want, raw); d != "" {
		t.Errorf("pixel data differs (-want +got):\n%s", d)
	}
}

func TestDrawImageRecoded(t *testing.T) {
	c := New(100, 100, WithImageRecoding(80))
	if !c.DrawImage(testImage(), nil, Rect{X: 0, Y: 0, W: 10, H: 10}) {
		t.Fatal("DrawImage failed")
	}
	c.Dispose()

	xo := c.Resources().XObject["X1"]
	if xo == nil {
		t.Fatal("image resource missing")
	}
	if xo.Filter != "DCTDecode" {
		t.Errorf("filter = %q, want DCTDecode", xo.Filter)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(xo.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Errorf("decoded size %dx%d, want 2x2", cfg.Width, cfg.Height)
	}
}

func TestDrawImageWithMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 9, 1))
	for x := 0; x < 9; x += 2 {
		mask.SetGray(x, 0, color.Gray{Y: 0xff})
	}

	c := New(100, 100)
	if !c.DrawImage(testImage(), mask, Rect{X: 0, Y: 0, W: 10, H: 10}) {
		t.Fatal("DrawImage failed")
	}

	xo := c.Resources().XObject["X1"]
	if xo == nil || xo.Mask == nil {
		t.Fatal("mask missing")
	}
	m := xo.Mask
	if !m.ImageMask || m.BitsPerComponent != 1 || m.Width != 9 || m.Height != 1 {
		t.Errorf("unexpected mask dictionary %+v", m)
	}
	if d := cmp.Diff([]float64{1, 0}, m.Decode); d != "" {
		t.Errorf("decode differs (-want +got):\n%s", d)
	}

	zr, err := zlib.NewReader(bytes.NewReader(m.Data))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	// Opaque pixels 0, 2, 4, 6, 8, packed most significant bit first
	// and padded to whole bytes per row.
	want := []byte{0xaa, 0x80}
	if d := cmp.Diff(want, raw); d != "" {
		t.Errorf("mask bits differ (-want +got):\n%s", d)
	}
}

func TestDrawImageNil(t *testing.T) {
	c := New(100, 100)
	if c.DrawImage(nil, nil, Rect{W: 10, H: 10}) {
		t.Error("expected failure for nil image")
	}
	if len(c.Bytes()) != 0 {
		t.Error("canvas changed by failed draw")
	}
}

func TestDrawImageOutsideClip(t *testing.T) {
	c := New(100, 100)
	c.Clip(RectShape(0, 0, 10, 10))
	if !c.DrawImage(testImage(), nil, Rect{X: 50, Y: 50, W: 10, H: 10}) {
		t.Error("clipped-away draw should not report failure")
	}
	if len(c.Resources().XObject) != 0 {
		t.Error("image encoded although fully clipped away")
	}
}

func TestDrawImageHyperlink(t *testing.T) {
	c := New(100, 100, WithHyperlinks())
	c.SetHyperlink("https://example.org/img")
	c.DrawImage(testImage(), nil, Rect{X: 10, Y: 10, W: 20, H: 20})
	c.Dispose()

	links := c.Annotations()
	if len(links) != 1 {
		t.Fatalf("got %d annotations, want 1", len(links))
	}
	want := [4]float64{10, 70, 30, 90}
	if d := cmp.Diff(want, links[0].Rect); d != "" {
		t.Errorf("annotation rect differs (-want +got):\n%s", d)
	}
}
