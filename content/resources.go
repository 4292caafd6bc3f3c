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

import (
	"strconv"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt"
)

// Name is the key under which a resource is referred to from within the
// content stream.
type Name string

// Resources collects the objects a content stream refers to by name.  The
// maps correspond to the fields of a PDF resource dictionary; turning the
// collected objects into file objects is the document writer's concern.
//
// A Resources value may be shared by several [Writer] instances writing
// parts of the same stream, so that names are allocated consistently across
// all of them.
type Resources struct {
	ExtGState map[Name]*ExtGState
	Shading   map[Name]*Shading
	Pattern   map[Name]Pattern
	XObject   map[Name]*ImageXObject
	Font      map[Name]*Font

	names map[catRes]Name
}

// NewResources allocates an empty resource collection.
func NewResources() *Resources {
	return &Resources{
		names: make(map[catRes]Name),
	}
}

type resourceCategory byte

// The valid resource categories.
const (
	catExtGState resourceCategory = iota + 1
	catShading
	catPattern
	catXObject
	catFont
)

type catRes struct {
	cat resourceCategory
	res any
}

// nameFor returns the name under which the given resource is known,
// registering it first if necessary.  Resources are compared by identity,
// so callers interested in deduplication must pass the same value again.
func (r *Resources) nameFor(cat resourceCategory, res any) Name {
	if r.names == nil {
		r.names = make(map[catRes]Name)
	}
	key := catRes{cat, res}
	if name, ok := r.names[key]; ok {
		return name
	}

	dictLen, put := r.categoryDict(cat)
	var name Name
	prefix := categoryPrefix(cat)
	for k := dictLen + 1; ; k++ {
		name = prefix + Name(strconv.Itoa(k))
		if _, used := r.names[catRes{cat, string(name)}]; !used {
			break
		}
	}
	put(name, res)
	r.names[key] = name
	r.names[catRes{cat, string(name)}] = name
	return name
}

// categoryDict returns the current size of the dictionary for the given
// category together with a function that stores a resource under a name.
func (r *Resources) categoryDict(cat resourceCategory) (int, func(Name, any)) {
	switch cat {
	case catExtGState:
		return len(r.ExtGState), func(n Name, res any) {
			if r.ExtGState == nil {
				r.ExtGState = make(map[Name]*ExtGState)
			}
			r.ExtGState[n] = res.(*ExtGState)
		}
	case catShading:
		return len(r.Shading), func(n Name, res any) {
			if r.Shading == nil {
				r.Shading = make(map[Name]*Shading)
			}
			r.Shading[n] = res.(*Shading)
		}
	case catPattern:
		return len(r.Pattern), func(n Name, res any) {
			if r.Pattern == nil {
				r.Pattern = make(map[Name]Pattern)
			}
			r.Pattern[n] = res.(Pattern)
		}
	case catXObject:
		return len(r.XObject), func(n Name, res any) {
			if r.XObject == nil {
				r.XObject = make(map[Name]*ImageXObject)
			}
			r.XObject[n] = res.(*ImageXObject)
		}
	case catFont:
		return len(r.Font), func(n Name, res any) {
			if r.Font == nil {
				r.Font = make(map[Name]*Font)
			}
			r.Font[n] = res.(*Font)
		}
	default:
		panic("invalid resource category")
	}
}

func categoryPrefix(cat resourceCategory) Name {
	switch cat {
	case catExtGState:
		return "E"
	case catShading:
		return "S"
	case catPattern:
		return "P"
	case catXObject:
		return "X"
	case catFont:
		return "F"
	default:
		panic("invalid resource category")
	}
}

// ExtGState carries the subset of graphics state parameters the translator
// declares as named resources: stroke and fill opacity.
type ExtGState struct {
	StrokeAlpha    float64
	FillAlpha      float64
	HasStrokeAlpha bool
	HasFillAlpha   bool
}

// Shading describes an axial (type 2) shading between two device-space
// points, interpolating linearly between two DeviceRGB colors.
type Shading struct {
	ColorSpace Name // always "DeviceRGB"
	X0, Y0     float64
	X1, Y1     float64
	C0, C1     [3]float64
	Extend     [2]bool
}

// Pattern is either a [ShadingPattern] or a [TilingPattern].
type Pattern interface {
	// PatternType returns 1 for tiling patterns and 2 for shading patterns.
	PatternType() int
}

// ShadingPattern is a pattern dictionary wrapping a shading
// (pattern type 2).
type ShadingPattern struct {
	Shading *Shading
	Matrix  matrix.Matrix
}

// PatternType implements the [Pattern] interface.
func (p *ShadingPattern) PatternType() int { return 2 }

// TilingPattern is a colored tiling pattern (pattern type 1) whose cell
// content is itself a small content stream.
type TilingPattern struct {
	BBox         [4]float64 // llx, lly, urx, ury
	XStep, YStep float64
	Matrix       matrix.Matrix
	Content      []byte
	Resources    *Resources
}

// PatternType implements the [Pattern] interface.
func (p *TilingPattern) PatternType() int { return 1 }

// ImageXObject holds an encoded raster image, optionally with a 1-bit
// stencil mask.
type ImageXObject struct {
	Width, Height    int
	ColorSpace       Name // "DeviceRGB" or "DeviceGray"; empty for masks
	BitsPerComponent int
	Filter           Name // "DCTDecode", "FlateDecode", or empty
	Data             []byte
	Decode           []float64
	ImageMask        bool
	Mask             *ImageXObject
	Interpolate      bool
}

// Font identifies a font program used by the content stream.  The document
// writer is responsible for embedding the font program and building the
// font dictionary.
type Font struct {
	BaseFont string // PostScript name
	Source   *sfnt.Font
}
