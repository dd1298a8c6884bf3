package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueBoxSeq 是 State.Values 中记录故事已占用文本框数量的键。
const ValueBoxSeq = "box"

// PagePlacer 把行转换为页面上的 TextBox，供渲染器绘制。
// Target 由调用方在换页时切换。
type PagePlacer struct {
	Target *Page
	// Story 写入生成的 TextBox，便于调试。
	Story string
}

var _ Placer = (*PagePlacer)(nil)

// Draw 实现 Placer：计算每行的基线、对齐偏移与样式片段。
func (p *PagePlacer) Draw(x, y, width float64, lines []*Line, opts DrawOptions) (State, error) {
	if p.Target == nil {
		return opts.State, fmt.Errorf("PagePlacer 缺少目标页面")
	}
	align, err := NormalizeAlign(opts.Align)
	if err != nil {
		return opts.State, err
	}

	box := TextBox{Story: p.Story, X: x, Y: y, Width: width, Align: align}
	cursor := 0.0
	for i, line := range lines {
		tl := composeLine(line)
		tl.Y = cursor
		tl.Baseline = cursor + line.Ascent()
		switch align {
		case "center":
			tl.X = (width - tl.Width) / 2
		case "right":
			tl.X = width - tl.Width
		}
		cursor += tl.Height
		if line.HardBreak && i < len(lines)-1 {
			cursor += opts.ParagraphGap
		}
		box.Lines = append(box.Lines, tl)
	}
	box.Height = cursor

	state := State{
		DY:        cursor,
		Lines:     opts.State.Lines + len(lines),
		Continued: opts.State.Continued,
		Values:    copyValues(opts.State.Values),
	}
	if n := len(lines); n > 0 {
		box.Seq = nextSeq(opts.State.Values)
		p.Target.Boxes = append(p.Target.Boxes, box)
		if state.Values == nil {
			state.Values = map[string]string{}
		}
		state.Values[ValueBoxSeq] = strconv.Itoa(box.Seq)

		last := lines[n-1]
		state.Continued = !last.HardBreak
		state.Cookie = &Cookie{
			SegmentEnd:   last.HardBreak,
			LastBaseline: y + box.Lines[n-1].Baseline,
		}
	}
	return state, nil
}

// composeLine 合并样式相同的相邻单元，并去掉行尾可丢弃内容。
func composeLine(line *Line) TextLine {
	tl := TextLine{Height: line.Height(), HardBreak: line.HardBreak}
	n := line.contentLen()
	x := 0.0
	var text strings.Builder
	var run *Run
	flush := func() {
		if run != nil {
			run.Text = text.String()
			tl.Runs = append(tl.Runs, *run)
			run = nil
			text.Reset()
		}
	}
	for i, tok := range line.Tokens[:n] {
		w := tok.Width
		if i < n-1 || !tok.Break {
			w += tok.DiscardableWidth
		}
		if tok.ForcedBreak {
			continue
		}
		if run == nil || !run.Style.Same(tok.Style) {
			flush()
			run = &Run{X: x, Style: tok.Style}
		}
		text.WriteString(tok.Text)
		run.Width += w
		x += w
	}
	flush()
	tl.Width = line.ContentWidth()
	return tl
}

// nextSeq 返回下一个文本框的序号，从 1 开始。
func nextSeq(values map[string]string) int {
	n, err := strconv.Atoi(values[ValueBoxSeq])
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}

func copyValues(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
