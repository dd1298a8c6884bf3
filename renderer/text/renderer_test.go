package textrenderer

import (
	"testing"

	"github.com/ByLCY/folio/compose"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/measure"
)

func TestRenderPages(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  story main align center { "alpha beta gamma delta" }
  page A5 margin 0 { box main width 11mm height 1mm }
}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := compose.Build(doc, nil, compose.Options{
		Measurer: func(map[string]layout.FontResource) (markup.Measurer, error) { return measure.Monospace{}, nil },
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := (&Renderer{Indent: true}).Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := " alpha beta\n\f\n   gamma\n\f\n   delta\n"
	if string(out) != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", out, want)
	}
}

func TestRenderBoxHeaders(t *testing.T) {
	res := &layout.Result{Pages: []layout.Page{{Boxes: []layout.TextBox{{
		Story: "s", X: 1, Y: 2,
		Lines: []layout.TextLine{{Runs: []layout.Run{{Text: "a"}, {Text: "b"}}}},
	}}}}}
	out, err := (&Renderer{Boxes: true}).Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "[s 1.0,2.0]\nab\n" {
		t.Fatalf("unexpected output %q", out)
	}
	res.Pages[0].Boxes[0].Seq = 3
	if out, _ = (&Renderer{Boxes: true}).Render(res); string(out) != "[s#3 1.0,2.0]\nab\n" {
		t.Fatalf("unexpected output with seq %q", out)
	}
	if _, err := (&Renderer{}).Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
