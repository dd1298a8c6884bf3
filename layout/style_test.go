package layout

import (
	"errors"
	"testing"
)

func TestResolvePrecedence(t *testing.T) {
	doc := Document{
		DefaultStyle: Style{Font: "Body", Size: 4, Align: "left"},
		Tags:         map[string]Style{"em": {Slant: SlantItalic}, "code": {Font: "Mono"}},
		Styles:       map[string]Style{"note": {Size: 3}},
	}
	off := false
	cfg, err := Resolve(doc, Options{
		DefaultStyle: Style{Size: 5, Weight: WeightBold},
		Tags:         map[string]Style{"em": {Weight: WeightBold}},
		Align:        "end",
		Kerning:      &off,
		Size:         6,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if cfg.Style.Font != "Body" {
		t.Fatalf("未指定的字段应继承文档默认值，实际 %q", cfg.Style.Font)
	}
	if cfg.Style.Size != 6 {
		t.Fatalf("显式 size 应覆盖调用样式与文档默认值，实际 %g", cfg.Style.Size)
	}
	if cfg.Style.Align != "right" || !cfg.Style.Bold() || cfg.Style.KerningEnabled() {
		t.Fatalf("样式合并结果不符: %+v", cfg.Style)
	}
	if em := cfg.Tags["em"]; em.Italic() || !em.Bold() {
		t.Fatalf("调用方标签应整体替换文档标签: %+v", em)
	}
	if cfg.Tags["code"].Font != "Mono" || cfg.Styles["note"].Size != 3 {
		t.Fatalf("文档表中的其他条目应保留")
	}
}

func TestResolveStyleOption(t *testing.T) {
	cases := []struct {
		in           string
		bold, italic bool
	}{
		{"", false, false},
		{"bold", true, false},
		{"italic", false, true},
		{"bold_italic", true, true},
		{"bold-italic", true, true},
	}
	for _, c := range cases {
		cfg, err := Resolve(Document{}, Options{Style: c.in})
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if cfg.Style.Bold() != c.bold || cfg.Style.Italic() != c.italic {
			t.Fatalf("%q: bold=%v italic=%v", c.in, cfg.Style.Bold(), cfg.Style.Italic())
		}
	}
	if _, err := Resolve(Document{}, Options{Style: "oblique"}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("未知 style 应返回 ErrInvalidConfiguration，实际 %v", err)
	}
	if _, err := Resolve(Document{}, Options{Align: "justify"}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("justify 不受支持，实际 %v", err)
	}
}

func TestStyleMergeAndSame(t *testing.T) {
	red := Color{R: 255}
	base := Style{Font: "Body", Size: 4, Color: &red}
	merged := base.Merge(Style{Slant: SlantItalic})
	if merged.Font != "Body" || !merged.Italic() || merged.Color == nil || merged.Color.R != 255 {
		t.Fatalf("Merge 结果不符: %+v", merged)
	}
	other := Color{R: 255}
	if !merged.Same(Style{Font: "Body", Size: 4, Color: &other, Slant: SlantItalic}) {
		t.Fatalf("按值相同的样式应判定为 Same")
	}
	if merged.Same(base) {
		t.Fatalf("字形不同的样式不应 Same")
	}
}
