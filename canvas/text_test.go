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
	"strings"
	"testing"
)

func TestScriptMetrics(t *testing.T) {
	c := New(100, 100)

	super, err := c.layoutRun(TextRun{Text: "x", Size: 12, Script: ScriptSuper})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(super.size-6.96) > 1e-9 {
		t.Errorf("superscript size = %g, want 6.96", super.size)
	}
	if math.Abs(super.rise-4.8) > 1e-9 {
		t.Errorf("superscript rise = %g, want 4.8", super.rise)
	}

	sub, err := c.layoutRun(TextRun{Text: "x", Size: 12, Script: ScriptSub})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sub.rise-(-3.96)) > 1e-9 {
		t.Errorf("subscript rise = %g, want -3.96", sub.rise)
	}
}

func TestScriptAdvanceUnscaled(t *testing.T) {
	c := New(100, 100)

	normal := c.MeasureText(TextRun{Text: "Hello", Size: 12})
	super := c.MeasureText(TextRun{Text: "Hello", Size: 12, Script: ScriptSuper})
	if math.Abs(normal-super) > 1e-9 {
		t.Errorf("superscript advance %g differs from normal %g", super, normal)
	}

	sup, err := c.layoutRun(TextRun{Text: "Hello", Size: 12, Script: ScriptSuper})
	if err != nil {
		t.Fatal(err)
	}
	if sup.width >= sup.advance {
		t.Errorf("scaled width %g should be below advance %g", sup.width, sup.advance)
	}
}

func TestSpacingReconciliation(t *testing.T) {
	f, err := GoRegular.Load()
	if err != nil {
		t.Fatal(err)
	}

	const text = "Hello, world"
	const size = 12.0

	measured := f.stringWidth(text, size)

	// Rendered width per the text operators: each glyph advances by its
	// declared (rounded) width plus the uniform character spacing.
	var roundedSum float64
	n := 0
	for _, r := range text {
		roundedSum += f.glyphAdvanceRounded(r)
		n++
	}
	roundedSum *= size
	spacing := (measured - roundedSum) / float64(n)

	rendered := roundedSum + float64(n)*spacing
	if math.Abs(rendered-measured) > 1e-9 {
		t.Errorf("rendered width %g differs from measured %g", rendered, measured)
	}
}

func TestNativeRun(t *testing.T) {
	c := New(200, 100)
	c.DrawText(10, 50, TextRun{Text: "Hello", Size: 12})

	out := string(c.Bytes())
	if !strings.Contains(out, "BT\n") || !strings.Contains(out, "ET\n") {
		t.Fatalf("expected a text object, got %q", out)
	}
	if !strings.Contains(out, "12 Tf\n") {
		t.Errorf("expected font selection at size 12, got %q", out)
	}
	if !strings.Contains(out, "(Hello) Tj\n") {
		t.Errorf("expected show-text operator, got %q", out)
	}
	// Identity transform: the text matrix places the baseline upright
	// at the flipped pen position.
	if !strings.Contains(out, "1 0 0 1 10 50 Tm\n") {
		t.Errorf("unexpected text matrix in %q", out)
	}
}

func TestMissingGlyphFallsBackToOutlines(t *testing.T) {
	c := New(200, 100)
	c.DrawText(10, 50, TextRun{Text: "a→b", Size: 12})

	out := string(c.Bytes())
	if strings.Contains(out, "BT") {
		t.Errorf("run with missing character must not use text operators: %q", out)
	}
	if !strings.Contains(out, "f\n") {
		t.Errorf("expected outline fills, got %q", out)
	}
}

func TestRunDecisionIsAtomic(t *testing.T) {
	c := New(400, 100)
	c.DrawText(10, 50,
		TextRun{Text: "plain", Size: 12},
		TextRun{Text: "arr→ow", Size: 12},
	)

	out := string(c.Bytes())
	// The first run is native, the second entirely outline geometry.
	if strings.Count(out, "BT\n") != 1 {
		t.Errorf("expected exactly one text object, got %q", out)
	}
	if !strings.Contains(out, "f\n") {
		t.Errorf("expected outline fills for the second run, got %q", out)
	}
}

func TestUnderline(t *testing.T) {
	c := New(200, 100)
	c.DrawText(10, 50, TextRun{Text: "link", Size: 12, Underline: true})

	out := string(c.Bytes())
	if !strings.Contains(out, "0.6 w\n") {
		t.Errorf("expected underline thickness 0.6, got %q", out)
	}
	if !strings.Contains(out, "S\n") {
		t.Errorf("expected a stroked underline, got %q", out)
	}
	// The stroke runs inside its own save scope.
	if strings.Count(out, "q\n") != 1 || strings.Count(out, "Q\n") != 1 {
		t.Errorf("underline not bracketed by save/restore: %q", out)
	}
}

func TestStretchEmitsHorizontalScaling(t *testing.T) {
	c := New(200, 100)
	c.DrawText(10, 50, TextRun{Text: "wide", Size: 12, Stretch: 1.25})

	out := string(c.Bytes())
	if !strings.Contains(out, "125 Tz\n") {
		t.Errorf("expected horizontal scaling operator, got %q", out)
	}
	// Scaling returns to its default after the run.
	if !strings.Contains(out, "100 Tz\n") {
		t.Errorf("expected scaling reset, got %q", out)
	}
}

func TestSuperscriptEmitsRise(t *testing.T) {
	c := New(200, 100)
	c.DrawText(10, 50, TextRun{Text: "2", Size: 12, Script: ScriptSuper})

	out := string(c.Bytes())
	if !strings.Contains(out, "4.8 Ts\n") {
		t.Errorf("expected rise operator, got %q", out)
	}
	if !strings.Contains(out, "6.96 Tf\n") {
		t.Errorf("expected scaled font size, got %q", out)
	}
}

func TestMeasureMatchesAdvance(t *testing.T) {
	c := New(200, 100)
	runs := []TextRun{
		{Text: "abc", Size: 12},
		{Text: "two", Size: 9, Script: ScriptSub},
	}
	total := c.MeasureText(runs...)

	var sum float64
	for _, run := range runs {
		lay, err := c.layoutRun(run)
		if err != nil {
			t.Fatal(err)
		}
		sum += lay.advance
	}
	if math.Abs(total-sum) > 1e-12 {
		t.Errorf("MeasureText = %g, want %g", total, sum)
	}
}

func TestHyperlinkAnnotation(t *testing.T) {
	c := New(200, 100, WithHyperlinks())
	c.SetHyperlink("https://example.org/")
	c.DrawText(10, 50, TextRun{Text: "here", Size: 12})
	c.SetHyperlink("")
	c.DrawText(10, 70, TextRun{Text: "plain", Size: 12})
	c.Dispose()

	links := c.Annotations()
	if len(links) != 1 {
		t.Fatalf("got %d annotations, want 1", len(links))
	}
	l := links[0]
	if l.URI != "https://example.org/" {
		t.Errorf("unexpected URI %q", l.URI)
	}
	if l.Rect[0] != 10 || l.Rect[2] <= l.Rect[0] || l.Rect[3] <= l.Rect[1] {
		t.Errorf("degenerate annotation rect %v", l.Rect)
	}
}

func TestHyperlinksDisabledByDefault(t *testing.T) {
	c := New(200, 100)
	c.SetHyperlink("https://example.org/")
	c.DrawText(10, 50, TextRun{Text: "here", Size: 12})
	c.Dispose()

	if n := len(c.Annotations()); n != 0 {
		t.Errorf("got %d annotations, want 0", n)
	}
}
