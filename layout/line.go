package layout

import "strings"

// Line 是一行已被接受的单元序列。构造后不再修改。
type Line struct {
	Tokens []Token
	// HardBreak 为 true 表示该行因强制换行或输入结束而终止，而不是因宽度折行。
	HardBreak bool
}

// Width 是各单元总宽度之和（含行尾可丢弃部分）。
func (l *Line) Width() float64 {
	w := 0.0
	for _, t := range l.Tokens {
		w += t.TotalWidth()
	}
	return w
}

// ContentWidth 去掉行尾可丢弃内容后的可见宽度，用于对齐。
func (l *Line) ContentWidth() float64 {
	n := l.contentLen()
	w := 0.0
	for i, t := range l.Tokens[:n] {
		w += t.Width
		if i < n-1 || !t.Break {
			w += t.DiscardableWidth
		}
	}
	return w
}

// contentLen 返回去掉行尾可丢弃单元后的长度。
func (l *Line) contentLen() int {
	n := len(l.Tokens)
	for n > 0 && l.Tokens[n-1].Discardable && !l.Tokens[n-1].Verbatim {
		n--
	}
	return n
}

// Height 是行内最高单元的高度。
func (l *Line) Height() float64 {
	h := 0.0
	for _, t := range l.Tokens {
		if t.Height > h {
			h = t.Height
		}
	}
	return h
}

// Ascent 是行内最大上升部。
func (l *Line) Ascent() float64 {
	a := 0.0
	for _, t := range l.Tokens {
		if t.Ascent > a {
			a = t.Ascent
		}
	}
	return a
}

// Text 拼接各单元文本，强制换行不输出。
func (l *Line) Text() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		if t.ForcedBreak {
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
