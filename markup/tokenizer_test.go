package markup

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/layout"
)

// cellMeasurer 每个字符宽 1，粗体宽 2；上升 0.8、下降 0.2。
var cellMeasurer = MeasurerFunc(func(text string, st layout.Style) (Extent, error) {
	w := float64(utf8.RuneCountInString(text))
	if st.Bold() {
		w *= 2
	}
	return Extent{Width: w, Ascent: 0.8, Descent: 0.2}, nil
})

func tokenize(t *testing.T, text string, cfg layout.Config) []layout.Token {
	t.Helper()
	toks, err := Tokenize(text, cfg, cellMeasurer)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", text, err)
	}
	return toks
}

func tokenTexts(toks []layout.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		switch {
		case tok.ForcedBreak:
			out[i] = "<br>"
		default:
			out[i] = tok.Text
		}
	}
	return out
}

func TestTokenizeClassifiesWhitespace(t *testing.T) {
	toks := tokenize(t, "Hello   world", layout.Config{})
	if diff := cmp.Diff([]string{"Hello", " ", "world"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	sp := toks[1]
	if !sp.Discardable || !sp.Break || sp.Width != 0 || sp.DiscardableWidth != 1 {
		t.Fatalf("空白单元分类错误: %+v", sp)
	}
	if toks[0].Discardable || toks[0].Break || toks[0].Width != 5 {
		t.Fatalf("单词单元分类错误: %+v", toks[0])
	}
	if toks[0].Height != 1 || toks[0].Ascent != 0.8 {
		t.Fatalf("unexpected metrics: height=%v ascent=%v", toks[0].Height, toks[0].Ascent)
	}
}

func TestTokenizeCollapsesSpaceAcrossTags(t *testing.T) {
	toks := tokenize(t, "a <b> bold</b>\n c", layout.Config{})
	if diff := cmp.Diff([]string{"a", " ", "bold", " ", "c"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if !toks[2].Style.Bold() || toks[2].Width != 8 {
		t.Fatalf("bold 单元样式错误: %+v", toks[2])
	}
	if toks[4].Style.Bold() {
		t.Fatalf("闭合标签后样式未恢复: %+v", toks[4].Style)
	}
}

func TestTokenizeBreaksAndParagraphs(t *testing.T) {
	toks := tokenize(t, "<p>one<br>two</p><p>three</p>", layout.Config{})
	want := []string{"one", "<br>", "two", "<br>", "three", "<br>"}
	if diff := cmp.Diff(want, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	br := toks[1]
	if !br.Break || br.Discardable || br.Width != 0 {
		t.Fatalf("强制换行单元错误: %+v", br)
	}
	if err := br.Validate(); err != nil {
		t.Fatalf("强制换行单元应合法: %v", err)
	}
}

func TestTokenizeSelfClosingBreak(t *testing.T) {
	toks := tokenize(t, "a<br/>b", layout.Config{})
	if diff := cmp.Diff([]string{"a", "<br>", "b"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizePreIsVerbatim(t *testing.T) {
	toks := tokenize(t, "<pre>\n  x = 1\ny</pre>", layout.Config{})
	want := []string{"  ", "x", " ", "=", " ", "1", "<br>", "y"}
	if diff := cmp.Diff(want, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	for _, tok := range toks {
		if !tok.Verbatim {
			t.Fatalf("pre 内的单元应为 verbatim: %+v", tok)
		}
	}
	if toks[0].DiscardableWidth != 2 {
		t.Fatalf("保留的缩进宽度错误: %v", toks[0].DiscardableWidth)
	}
}

func TestTokenizeSplitsAfterHyphen(t *testing.T) {
	toks := tokenize(t, "well-known -5", layout.Config{})
	if diff := cmp.Diff([]string{"well-", "known", " ", "-5"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if !toks[0].Break || toks[0].Discardable || toks[0].Width != 5 {
		t.Fatalf("连字符前缀应为不可丢弃的断点: %+v", toks[0])
	}
	if toks[1].Break {
		t.Fatalf("末段不应成为断点: %+v", toks[1])
	}
}

func TestTokenizeWrapModes(t *testing.T) {
	cfg := layout.Config{Tags: map[string]layout.Style{
		"code": {Wrap: layout.WrapAnywhere},
		"nb":   {Wrap: layout.WrapNowrap},
	}}

	toks := tokenize(t, "<code>abc</code>", cfg)
	if diff := cmp.Diff([]string{"a", "b", "c"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("anywhere mismatch (-want +got):\n%s", diff)
	}
	for _, tok := range toks {
		if !tok.Break {
			t.Fatalf("anywhere 模式下每个字素都应可断行: %+v", tok)
		}
	}

	toks = tokenize(t, "<nb>a b-c</nb>", cfg)
	if diff := cmp.Diff([]string{"a", " ", "b-c"}, tokenTexts(toks)); diff != "" {
		t.Fatalf("nowrap mismatch (-want +got):\n%s", diff)
	}
	if toks[1].Break || !toks[1].Discardable {
		t.Fatalf("nowrap 空白不应可断行: %+v", toks[1])
	}
}

func TestTokenizeSpanClassAndTagTable(t *testing.T) {
	red := &layout.Color{R: 255}
	cfg := layout.Config{
		Style:  layout.Style{Font: "body", Size: 4},
		Styles: map[string]layout.Style{"warn": {Color: red}},
		Tags:   map[string]layout.Style{"b": {Font: "heavy"}, "kbd": {Font: "mono"}},
	}
	toks := tokenize(t, `<span class="warn">x</span><b>y</b><kbd>z</kbd><blink>w</blink>`, cfg)
	if len(toks) != 4 {
		t.Fatalf("unexpected tokens: %v", tokenTexts(toks))
	}
	if toks[0].Style.Color == nil || *toks[0].Style.Color != *red || toks[0].Style.Font != "body" {
		t.Fatalf("span class 样式错误: %+v", toks[0].Style)
	}
	if toks[1].Style.Font != "heavy" || !toks[1].Style.Bold() {
		t.Fatalf("标签表应叠加在内置样式之上: %+v", toks[1].Style)
	}
	if toks[2].Style.Font != "mono" {
		t.Fatalf("自定义标签样式错误: %+v", toks[2].Style)
	}
	if !toks[3].Style.Same(cfg.Style) {
		t.Fatalf("未知标签应被忽略: %+v", toks[3].Style)
	}
}

func TestTokenizeNormalizesNFC(t *testing.T) {
	toks := tokenize(t, "cafe\u0301", layout.Config{})
	if len(toks) != 1 || toks[0].Text != "caf\u00e9" || toks[0].Width != 4 {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestTokenizeLineHeight(t *testing.T) {
	cfg := layout.Config{Style: layout.Style{
		Size:       2,
		LineHeight: layout.LineHeightSpec{Kind: layout.LineHeightAbsolute, Len: layout.Length{Value: 3, Unit: layout.UnitMM}},
	}}
	toks := tokenize(t, "x", cfg)
	if toks[0].Height != 3 || toks[0].Ascent != 1.8 {
		t.Fatalf("半行距计算错误: height=%v ascent=%v", toks[0].Height, toks[0].Ascent)
	}
}

func TestTokenizeMeasureError(t *testing.T) {
	boom := errors.New("boom")
	m := MeasurerFunc(func(string, layout.Style) (Extent, error) { return Extent{}, boom })
	if _, err := Tokenize("x", layout.Config{}, m); !errors.Is(err, boom) {
		t.Fatalf("expected measure error, got %v", err)
	}
	if _, err := Tokenize("x", layout.Config{}, nil); err == nil {
		t.Fatalf("缺少 Measurer 时应报错")
	}
}

func TestNewLineBuilderWrapsParagraph(t *testing.T) {
	b, err := NewLineBuilder(layout.Document{}, "the quick brown fox", layout.Options{}, cellMeasurer)
	if err != nil {
		t.Fatalf("NewLineBuilder error: %v", err)
	}
	lines, err := b.WordWrap(10, layout.WrapOptions{})
	if err != nil {
		t.Fatalf("WordWrap error: %v", err)
	}
	var got []string
	for _, l := range lines {
		got = append(got, strings.TrimRight(l.Text(), " "))
		if l.ContentWidth() > 10 {
			t.Fatalf("line %q exceeds width: %v", l.Text(), l.ContentWidth())
		}
	}
	if diff := cmp.Diff([]string{"the quick", "brown fox"}, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if !lines[1].HardBreak || lines[0].HardBreak {
		t.Fatalf("unexpected hard breaks: %v %v", lines[0].HardBreak, lines[1].HardBreak)
	}
}

func TestNewLineBuilderRejectsInvalidOptions(t *testing.T) {
	_, err := NewLineBuilder(layout.Document{}, "x", layout.Options{Style: "oblique"}, cellMeasurer)
	if !errors.Is(err, layout.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
