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
	"errors"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"
	"seehuhn.de/go/geom/matrix"

	"github.com/sruffner/pdfcanvas/content"
)

// DrawImage paints the raster image into the rectangle r, in canvas
// coordinates.  If mask is not nil it acts as a stencil: only pixels
// whose mask sample is opaque are painted.  The image is re-encoded
// lossily if the canvas was created with [WithImageRecoding], and
// embedded losslessly otherwise.
//
// DrawImage reports whether the image could be encoded.  On failure the
// canvas is left unchanged.
func (c *Canvas) DrawImage(img image.Image, mask image.Image, r Rect) bool {
	if c.invalid() || img == nil || r.W <= 0 || r.H <= 0 {
		return false
	}

	m := c.device()
	s := RectShape(r.X, r.Y, r.W, r.H)
	x0, y0, x1, y1, ok := s.transformedBounds(m)
	if !ok || !c.state.clip.intersects(x0, y0, x1, y1) {
		// Nothing to paint, but nothing failed either.
		return true
	}

	xo, err := c.encodeImage(img)
	if err != nil {
		logger().Warn("image encoding failed", "err", err)
		return false
	}
	if mask != nil {
		xo.Mask = encodeStencilMask(mask)
	}

	// The image operator paints into the unit square; the placement
	// matrix maps the square onto the rectangle, flipping vertically so
	// the image's first row lands at the rectangle's top edge.
	placement := matrix.Matrix{r.W, 0, 0, -r.H, r.X, r.Y + r.H}.Mul(m)

	c.w.PushGraphicsState()
	c.w.SetFillAlpha(c.root.fillAlphaState(c.state.alpha))
	c.w.Transform(placement)
	c.w.DrawImage(xo)
	c.w.PopGraphicsState()

	c.addLink(x0, y0, x1, y1)
	return c.w.Err == nil
}

// encodeImage converts a raster to an image XObject, lossily if the
// canvas requests re-encoding.
func (c *Canvas) encodeImage(img image.Image) (*content.ImageXObject, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("image has no pixels")
	}

	if c.root.recode {
		var buf bytes.Buffer
		err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(c.root.quality)})
		if err != nil {
			return nil, err
		}
		return &content.ImageXObject{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceRGB",
			BitsPerComponent: 8,
			Filter:           "DCTDecode",
			Data:             buf.Bytes(),
		}, nil
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		tmp := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(tmp, tmp.Bounds(), img, b.Min, xdraw.Src)
		rgba = tmp
	}
	raw := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			raw = append(raw, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	data, err := flateCompress(raw)
	if err != nil {
		return nil, err
	}
	return &content.ImageXObject{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Filter:           "FlateDecode",
		Data:             data,
	}, nil
}

// encodeStencilMask packs the mask raster into a 1-bit stencil, one bit
// per pixel, rows padded to whole bytes, most significant bit first.  A
// set bit marks an opaque pixel; the decode array inverts the samples so
// that opaque pixels are painted.
func encodeStencilMask(mask image.Image) *content.ImageXObject {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := (w + 7) / 8
	raw := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if maskOpaque(mask, b.Min.X+x, b.Min.Y+y) {
				raw[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	data, err := flateCompress(raw)
	filter := content.Name("FlateDecode")
	if err != nil {
		data = raw
		filter = ""
	}
	return &content.ImageXObject{
		Width:            w,
		Height:           h,
		BitsPerComponent: 1,
		ImageMask:        true,
		Decode:           []float64{1, 0},
		Filter:           filter,
		Data:             data,
	}
}

// maskOpaque decides whether a mask pixel keeps the image visible.  For
// masks with an alpha channel the alpha decides; fully opaque gray masks
// are read by their luminance instead.
func maskOpaque(mask image.Image, x, y int) bool {
	r, g, b, a := mask.At(x, y).RGBA()
	if a < 0x8000 {
		return false
	}
	luma := (r + g + b) / 3
	return luma >= 0x8000
}

func flateCompress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
