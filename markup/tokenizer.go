package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/layout"
)

// builtinTags 是无需在标签表中声明即可使用的样式标签。
var builtinTags = map[string]layout.Style{
	"b":      {Weight: layout.WeightBold},
	"strong": {Weight: layout.WeightBold},
	"i":      {Slant: layout.SlantItalic},
	"em":     {Slant: layout.SlantItalic},
}

type frame struct {
	tag      string
	style    layout.Style
	verbatim bool
}

type tokenizer struct {
	cfg    layout.Config
	m      Measurer
	stack  []frame
	tokens []layout.Token
	// skipNewline 丢弃紧跟在 <pre> 之后的第一个换行。
	skipNewline bool
}

// Tokenize 把标记文本切分为已测量的单元。
func Tokenize(text string, cfg layout.Config, m Measurer) ([]layout.Token, error) {
	if m == nil {
		return nil, fmt.Errorf("markup: 缺少 Measurer")
	}
	t := &tokenizer{
		cfg:   cfg,
		m:     m,
		stack: []frame{{style: cfg.Style}},
	}
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("解析标记失败: %w", err)
			}
			return t.tokens, nil
		case html.TextToken:
			if err := t.text(string(z.Text())); err != nil {
				return nil, err
			}
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if err := t.start(string(name), classOf(z, hasAttr), false); err != nil {
				return nil, err
			}
		case html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if err := t.start(string(name), classOf(z, hasAttr), true); err != nil {
				return nil, err
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if err := t.end(string(name)); err != nil {
				return nil, err
			}
		}
	}
}

// NewLineBuilder 一次性解析样式配置、完成分词，并返回行构建器。
func NewLineBuilder(doc layout.Document, text string, opts layout.Options, m Measurer) (*layout.LineBuilder, error) {
	cfg, err := layout.Resolve(doc, opts)
	if err != nil {
		return nil, err
	}
	tokens, err := Tokenize(text, cfg, m)
	if err != nil {
		return nil, err
	}
	return layout.NewLineBuilder(layout.NewQueue(tokens), cfg), nil
}

func classOf(z *html.Tokenizer, hasAttr bool) string {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "class" {
			return strings.TrimSpace(string(val))
		}
	}
	return ""
}

func (t *tokenizer) top() frame { return t.stack[len(t.stack)-1] }

func (t *tokenizer) start(name, class string, selfClosing bool) error {
	switch name {
	case "br":
		return t.forcedBreak()
	case "p":
		if err := t.paragraphBreak(); err != nil {
			return err
		}
	}
	if selfClosing {
		return nil
	}

	cur := t.top()
	next := frame{tag: name, style: cur.style, verbatim: cur.verbatim}
	if st, ok := builtinTags[name]; ok {
		next.style = next.style.Merge(st)
	}
	if st, ok := t.cfg.Tags[name]; ok {
		next.style = next.style.Merge(st)
	}
	if class != "" {
		if st, ok := t.cfg.Styles[class]; ok {
			next.style = next.style.Merge(st)
		}
	}
	if name == "pre" {
		next.verbatim = true
		t.skipNewline = true
	}
	t.stack = append(t.stack, next)
	return nil
}

func (t *tokenizer) end(name string) error {
	for i := len(t.stack) - 1; i > 0; i-- {
		if t.stack[i].tag == name {
			t.stack = t.stack[:i]
			break
		}
	}
	if name == "p" {
		return t.paragraphBreak()
	}
	return nil
}

// paragraphBreak 在已有内容之后补一个强制换行，避免产生多余空行。
func (t *tokenizer) paragraphBreak() error {
	if n := len(t.tokens); n == 0 || t.tokens[n-1].ForcedBreak {
		return nil
	}
	return t.forcedBreak()
}

func (t *tokenizer) text(s string) error {
	s = norm.NFC.String(s)
	if t.top().verbatim {
		if t.skipNewline {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "\r"), "\n")
		}
		t.skipNewline = false
		return t.verbatimText(s)
	}
	t.skipNewline = false

	var word strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			word.WriteRune(r)
			continue
		}
		if err := t.word(word.String()); err != nil {
			return err
		}
		word.Reset()
		if err := t.space(" "); err != nil {
			return err
		}
	}
	return t.word(word.String())
}

func (t *tokenizer) verbatimText(s string) error {
	var word, blank strings.Builder
	flush := func() error {
		if err := t.word(word.String()); err != nil {
			return err
		}
		word.Reset()
		if blank.Len() > 0 {
			if err := t.space(blank.String()); err != nil {
				return err
			}
			blank.Reset()
		}
		return nil
	}
	for _, r := range s {
		switch r {
		case '\r':
		case '\n':
			if err := flush(); err != nil {
				return err
			}
			if err := t.forcedBreak(); err != nil {
				return err
			}
		case ' ', '\t':
			if word.Len() > 0 {
				if err := flush(); err != nil {
					return err
				}
			}
			blank.WriteRune(r)
		default:
			if blank.Len() > 0 {
				if err := flush(); err != nil {
					return err
				}
			}
			word.WriteRune(r)
		}
	}
	return flush()
}

func (t *tokenizer) word(w string) error {
	if w == "" {
		return nil
	}
	st := t.top().style
	switch st.Wrap {
	case layout.WrapAnywhere:
		g := uniseg.NewGraphemes(w)
		for g.Next() {
			if err := t.emit(g.Str(), true); err != nil {
				return err
			}
		}
		return nil
	case layout.WrapNowrap:
		return t.emit(w, false)
	}
	if t.top().verbatim {
		return t.emit(w, false)
	}
	for _, part := range splitHyphens(w) {
		if err := t.emit(part, strings.HasSuffix(part, "-") && part != w); err != nil {
			return err
		}
	}
	return nil
}

// emit 产生一个不可丢弃的文本单元；breakAfter 为 true 时允许在其后换行。
func (t *tokenizer) emit(text string, breakAfter bool) error {
	tok, err := t.measure(text)
	if err != nil {
		return err
	}
	tok.Break = breakAfter
	t.tokens = append(t.tokens, tok)
	return nil
}

// space 产生可丢弃的空白单元，宽度全部计入可丢弃部分。
func (t *tokenizer) space(text string) error {
	f := t.top()
	if !f.verbatim {
		// 折叠连续空白
		if n := len(t.tokens); n > 0 && t.tokens[n-1].Discardable && !t.tokens[n-1].ForcedBreak {
			return nil
		}
	}
	tok, err := t.measure(text)
	if err != nil {
		return err
	}
	tok.DiscardableWidth, tok.Width = tok.Width, 0
	tok.Discardable = true
	tok.Break = f.style.Wrap != layout.WrapNowrap
	t.tokens = append(t.tokens, tok)
	return nil
}

func (t *tokenizer) forcedBreak() error {
	tok, err := t.measure("")
	if err != nil {
		return err
	}
	tok.Break = true
	tok.ForcedBreak = true
	t.tokens = append(t.tokens, tok)
	return nil
}

func (t *tokenizer) measure(text string) (layout.Token, error) {
	f := t.top()
	ext, err := t.m.Measure(text, f.style)
	if err != nil {
		return layout.Token{}, fmt.Errorf("测量 %q 失败: %w", text, err)
	}
	natural := ext.Ascent + ext.Descent
	height := f.style.LineHeight.Resolve(f.style.Size, natural)
	// 行高与自然高度之差平分到上下（半行距）
	ascent := ext.Ascent + (height-natural)/2
	if ascent < 0 {
		ascent = 0
	}
	return layout.Token{
		Text:     text,
		Style:    f.style,
		Width:    ext.Width,
		Ascent:   ascent,
		Height:   height,
		Verbatim: f.verbatim,
	}, nil
}

// splitHyphens 在词内连字符之后切分，例如 well-known → well-, known。
func splitHyphens(w string) []string {
	var parts []string
	runes := []rune(w)
	start := 0
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] == '-' && unicode.IsLetter(runes[i-1]) && runes[i+1] != '-' {
			parts = append(parts, string(runes[start:i+1]))
			start = i + 1
		}
	}
	return append(parts, string(runes[start:]))
}
