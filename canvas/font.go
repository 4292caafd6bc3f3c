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
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/geom/matrix"
	geompath "seehuhn.de/go/geom/path"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/sruffner/pdfcanvas/content"
)

// glyphLookup maps a rune to a glyph in a font's character map.  A zero
// glyph ID means the rune has no glyph.
type glyphLookup interface {
	Lookup(r rune) glyph.ID
}

// Font is a typeface prepared for use on a canvas.  A Font is immutable
// after creation and may be shared between canvases and goroutines.
type Font struct {
	name string
	info *sfnt.Font
	sub  glyphLookup
	upem float64

	res *content.Font
}

// NewFont parses the given TrueType or OpenType font program.  The name
// identifies the font in the [FontCache]; it need not match the font's
// PostScript name.
func NewFont(name string, data []byte) (*Font, error) {
	info, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", name, err)
	}
	sub, err := info.CMapTable.GetBest()
	if err != nil {
		return nil, fmt.Errorf("font %q: no usable character map: %w", name, err)
	}
	return &Font{
		name: name,
		info: info,
		sub:  sub,
		upem: float64(info.UnitsPerEm),
		res: &content.Font{
			BaseFont: info.PostScriptName(),
			Source:   info,
		},
	}, nil
}

// Name returns the logical name under which the font was created.
func (f *Font) Name() string {
	return f.name
}

// PostScriptName returns the font's PostScript name.
func (f *Font) PostScriptName() string {
	return f.info.PostScriptName()
}

// resource returns the content-stream resource describing the font.
func (f *Font) resource() *content.Font {
	return f.res
}

// emScaled converts a length in font design units to text space at the
// given font size.
func emScaled(v funit.Int16, upem, size float64) float64 {
	return float64(v) / upem * size
}

// Ascent returns the font's ascent at the given size.
func (f *Font) Ascent(size float64) float64 {
	return emScaled(f.info.Ascent, f.upem, size)
}

// Descent returns the font's descent at the given size, as a negative
// number.
func (f *Font) Descent(size float64) float64 {
	return emScaled(f.info.Descent, f.upem, size)
}

// CanDisplay reports whether the rune can be shown natively, that is
// whether it has both a single-byte code and a glyph in the font.
func (f *Font) CanDisplay(r rune) bool {
	if _, ok := winAnsiByte(r); !ok {
		return false
	}
	return f.sub.Lookup(r) != 0
}

// canDisplayAll reports whether every rune of s can be shown natively.
// The answer applies to the string as a whole, so that a caller never
// mixes native and outline glyphs within one run.
func (f *Font) canDisplayAll(s string) bool {
	for _, r := range s {
		if !f.CanDisplay(r) {
			return false
		}
	}
	return true
}

// encode converts s to its single-byte string encoding.  Runes without a
// code are silently dropped; callers check canDisplayAll first.
func (f *Font) encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := winAnsiByte(r); ok {
			out = append(out, b)
		}
	}
	return out
}

// glyphAdvance returns the advance width of the rune's glyph in text
// space at size 1, using the exact fractional width from the font
// program.
func (f *Font) glyphAdvance(r rune) float64 {
	gid := f.sub.Lookup(r)
	return f.info.GlyphWidthPDF(gid) / 1000
}

// glyphAdvanceRounded returns the advance width the downstream font
// dictionary will declare for the rune's glyph: the same width rounded to
// a whole number of thousandths.
func (f *Font) glyphAdvanceRounded(r rune) float64 {
	gid := f.sub.Lookup(r)
	return math.Round(f.info.GlyphWidthPDF(gid)) / 1000
}

// stringWidth returns the exact width of s at the given font size,
// without any inter-character spacing adjustment.
func (f *Font) stringWidth(s string, size float64) float64 {
	var w float64
	for _, r := range s {
		w += f.glyphAdvance(r)
	}
	return w * size
}

// appendGlyphOutline appends the outline of the rune's glyph to the
// shape, transformed by m.  The glyph outline is in font design units; m
// maps design units to the shape's coordinate space.
func (f *Font) appendGlyphOutline(s *Shape, r rune, m matrix.Matrix) {
	if f.info.Outlines == nil {
		return
	}
	gid := f.sub.Lookup(r)
	p := f.info.Outlines.Path(gid)
	for cmd, points := range p {
		switch cmd {
		case geompath.CmdMoveTo:
			x, y := m.Apply(points[0].X, points[0].Y)
			s.MoveTo(x, y)
		case geompath.CmdLineTo:
			x, y := m.Apply(points[0].X, points[0].Y)
			s.LineTo(x, y)
		case geompath.CmdQuadTo:
			cx, cy := m.Apply(points[0].X, points[0].Y)
			x, y := m.Apply(points[1].X, points[1].Y)
			s.QuadTo(cx, cy, x, y)
		case geompath.CmdCubeTo:
			x1, y1 := m.Apply(points[0].X, points[0].Y)
			x2, y2 := m.Apply(points[1].X, points[1].Y)
			x3, y3 := m.Apply(points[2].X, points[2].Y)
			s.CubeTo(x1, y1, x2, y2, x3, y3)
		case geompath.CmdClose:
			s.Close()
		}
	}
}

// unitsPerEm returns the number of font design units per em.
func (f *Font) unitsPerEm() float64 {
	return f.upem
}

// Builtin identifies one of the fonts of the Go font family that are
// compiled into the binary.
type Builtin int

// The available builtin fonts.
const (
	GoRegular Builtin = iota
	GoBold
	GoItalic
	GoBoldItalic
	GoMono
	GoMonoBold
	GoMonoItalic
	GoMonoBoldItalic
)

// String returns the logical font name of the builtin font.
func (b Builtin) String() string {
	switch b {
	case GoRegular:
		return "Go-Regular"
	case GoBold:
		return "Go-Bold"
	case GoItalic:
		return "Go-Italic"
	case GoBoldItalic:
		return "Go-BoldItalic"
	case GoMono:
		return "GoMono-Regular"
	case GoMonoBold:
		return "GoMono-Bold"
	case GoMonoItalic:
		return "GoMono-Italic"
	case GoMonoBoldItalic:
		return "GoMono-BoldItalic"
	default:
		return fmt.Sprintf("Builtin(%d)", int(b))
	}
}

var builtinTTF = map[Builtin][]byte{
	GoRegular:        goregular.TTF,
	GoBold:           gobold.TTF,
	GoItalic:         goitalic.TTF,
	GoBoldItalic:     gobolditalic.TTF,
	GoMono:           gomono.TTF,
	GoMonoBold:       gomonobold.TTF,
	GoMonoItalic:     gomonoitalic.TTF,
	GoMonoBoldItalic: gomonobolditalic.TTF,
}

// Load parses the builtin font.  Most callers use [FontCache.Builtin]
// instead, which caches the result.
func (b Builtin) Load() (*Font, error) {
	data, ok := builtinTTF[b]
	if !ok {
		return nil, fmt.Errorf("unknown builtin font %d", int(b))
	}
	return NewFont(b.String(), data)
}

// FontCache memoizes font loading by logical name.  Resolving a font is
// expensive, and several canvases rendering concurrently may ask for the
// same font, so the check-then-insert is atomic per key.
type FontCache struct {
	mu    sync.Mutex
	fonts map[string]*Font
}

// NewFontCache allocates an empty font cache.
func NewFontCache() *FontCache {
	return &FontCache{
		fonts: make(map[string]*Font),
	}
}

// Get returns the font stored under name, loading and inserting it via
// load on the first call.  Concurrent calls for the same name see a
// single load.
func (c *FontCache) Get(name string, load func() (*Font, error)) (*Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[name]; ok {
		return f, nil
	}
	f, err := load()
	if err != nil {
		return nil, err
	}
	c.fonts[name] = f
	return f, nil
}

// Builtin returns the given builtin font, loading it on first use.
func (c *FontCache) Builtin(b Builtin) (*Font, error) {
	return c.Get(b.String(), b.Load)
}

// winAnsiByte returns the single-byte code for r in the Windows Latin
// text encoding, if it has one.
func winAnsiByte(r rune) (byte, bool) {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return byte(r), true
	case r >= 0xa0 && r <= 0xff:
		return byte(r), true
	}
	b, ok := winAnsiSpecial[r]
	return b, ok
}

// winAnsiSpecial maps the runes occupying the 0x80..0x9f range of the
// Windows Latin encoding, which differs from ISO 8859-1 there.
var winAnsiSpecial = map[rune]byte{
	'€': 0x80, // Euro sign
	'‚': 0x82,
	'ƒ': 0x83,
	'„': 0x84,
	'…': 0x85,
	'†': 0x86,
	'‡': 0x87,
	'ˆ': 0x88,
	'‰': 0x89,
	'Š': 0x8a,
	'‹': 0x8b,
	'Œ': 0x8c,
	'Ž': 0x8e,
	'‘': 0x91,
	'’': 0x92,
	'“': 0x93,
	'”': 0x94,
	'•': 0x95,
	'–': 0x96,
	'—': 0x97,
	'˜': 0x98,
	'™': 0x99,
	'š': 0x9a,
	'›': 0x9b,
	'œ': 0x9c,
	'ž': 0x9e,
	'Ÿ': 0x9f,
}
