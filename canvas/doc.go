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

// Package canvas translates an imperative 2D vector-drawing API into a PDF
// content stream.
//
// A [Canvas] holds a mutable graphics state (transform, clip, paint,
// stroke, font) in the screen-oriented convention of on-screen drawing
// APIs: the origin is at the top-left corner and y grows downward.  Each
// drawing call is translated into the minimal sequence of page-description
// operators, written through a [content.Writer], with all coordinates
// converted to the page convention (origin bottom-left, y growing upward).
//
// Canvases form a tree: [Canvas.Spawn] creates a child canvas that writes
// into the same output stream at the position reserved at spawn time.
// Finalizing the root with [Canvas.Dispose] splices all child streams into
// a single well-ordered content stream.
//
// Drawing never fails hard: paints that cannot be represented natively are
// degraded to approximations, and the degradation is reported through the
// package logger (see [SetLogger]).
package canvas
