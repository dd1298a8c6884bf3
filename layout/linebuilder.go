package layout

import "fmt"

// LineBuilder 贪心地从 TokenSource 中取出单元组成行，并驱动 Placer 填充区域。
// 实例持有游标与回退栈，不可并发使用；不同实例之间互不共享状态。
type LineBuilder struct {
	source TokenSource
	config Config
	state  State
}

// NewLineBuilder 使用已解析的配置创建行构建器。
func NewLineBuilder(src TokenSource, cfg Config) *LineBuilder {
	return &LineBuilder{source: src, config: cfg}
}

// State 返回上一次 Fill 后保留的延续状态（不含一次性的 Cookie）。
func (b *LineBuilder) State() State { return b.state }

// Done 报告输入是否已耗尽。
func (b *LineBuilder) Done() bool { return b.source.AtEnd() }

// Next 构建一行不超过 width 的内容；输入耗尽时返回 (nil, nil)。
// 若在超宽前没有任何断点，则接受溢出，保证每行至少包含一个单元。
func (b *LineBuilder) Next(width float64) (*Line, error) {
	var tokens []Token
	used := 0.0
	breakAt := -1

	for {
		tok, ok := b.source.Next()
		if !ok {
			break
		}
		if err := tok.Validate(); err != nil {
			return nil, err
		}
		// 行首的可丢弃单元直接忽略
		if len(tokens) == 0 && tok.Discardable && !b.source.Verbatim() {
			continue
		}
		tokens = append(tokens, tok)

		if tok.Break {
			used += tok.Width
			if used <= width {
				breakAt = len(tokens)
			}
			// 行尾可丢弃部分不会让刚记录的断点失效
			used += tok.DiscardableWidth
		} else {
			used += tok.TotalWidth()
		}

		if tok.ForcedBreak || used >= width {
			// 强制换行由触发断行的单元决定，即使它随后被退回
			forced := tok.ForcedBreak
			if breakAt < 0 {
				breakAt = len(tokens)
			}
			for len(tokens) > breakAt {
				b.source.Push(tokens[len(tokens)-1])
				tokens = tokens[:len(tokens)-1]
			}
			// 回退之后再判断是否到达输入末尾
			hard := forced || b.source.AtEnd()
			return &Line{Tokens: tokens, HardBreak: hard}, nil
		}
	}

	if len(tokens) == 0 {
		return nil, nil
	}
	return &Line{Tokens: tokens, HardBreak: true}, nil
}

// Unget 把整行逆序压回游标，之后的 Next 会按原顺序重新取到这些单元。
func (b *LineBuilder) Unget(line *Line) {
	if line == nil {
		return
	}
	for i := len(line.Tokens) - 1; i >= 0; i-- {
		b.source.Push(line.Tokens[i])
	}
}

// WordWrap 反复调用 Next，直到输入耗尽或终止条件命中。
// 命中终止条件的那一行会被完整退回，只返回此前接受的行。
func (b *LineBuilder) WordWrap(width float64, opts WrapOptions) ([]*Line, error) {
	stop := opts.Stop
	switch {
	case opts.Height > 0 && stop != nil:
		return nil, fmt.Errorf("%w: 不能同时指定高度上限与终止条件", ErrInvalidConfiguration)
	case opts.Height > 0:
		limit := opts.Height
		stop = func(_ *Line, h float64) bool { return h > limit }
	case stop == nil:
		stop = func(*Line, float64) bool { return false }
	}

	var lines []*Line
	total := 0.0
	for {
		line, err := b.Next(width)
		if err != nil {
			return lines, err
		}
		if line == nil {
			return lines, nil
		}
		if stop(line, total+line.Height()) {
			b.Unget(line)
			return lines, nil
		}
		total += line.Height()
		lines = append(lines, line)
	}
}

// Fill 在 (x, y) 处宽度为 width 的区域内排入尽可能多的行，交给 Placer 绘制，
// 并返回新的纵向游标 y + DY。Placer 返回的延续状态会带入下一次 Fill，Cookie 除外。
// WordWrap 出错时立即返回：已接受的行既不绘制也不退回，构建器不应再继续使用。
func (b *LineBuilder) Fill(x, y, width float64, opts FillOptions) (float64, error) {
	if b.config.Placer == nil {
		return y, fmt.Errorf("%w: 缺少 Placer", ErrInvalidConfiguration)
	}
	wrap := WrapOptions{Height: opts.Height, Stop: opts.Stop}
	if opts.ParagraphGap > 0 && opts.Height > 0 && opts.Stop == nil {
		wrap = WrapOptions{Stop: gapAwareStop(opts.Height, opts.ParagraphGap)}
	}
	lines, err := b.WordWrap(width, wrap)
	if err != nil {
		return y, err
	}
	align := opts.Align
	if align == "" {
		align = b.config.Style.Align
	}
	state, err := b.config.Placer.Draw(x, y, width, lines, DrawOptions{
		Align:        align,
		ParagraphGap: opts.ParagraphGap,
		State:        b.state,
	})
	if err != nil {
		return y, fmt.Errorf("绘制行失败: %w", err)
	}
	state.Cookie = nil
	b.state = state
	return y + state.DY, nil
}

// gapAwareStop 在高度上限中计入硬换行之后的段间距。
func gapAwareStop(limit, gap float64) StopFunc {
	gaps := 0.0
	prevHard := false
	return func(line *Line, h float64) bool {
		if prevHard {
			gaps += gap
		}
		if h+gaps > limit {
			return true
		}
		prevHard = line.HardBreak
		return false
	}
}
