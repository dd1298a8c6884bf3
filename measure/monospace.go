// Package measure 提供 markup.Measurer 的实现：终端等宽单元与 OpenType 字体度量。
package measure

import (
	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
)

// Monospace 以终端列宽作为宽度单位，每行高度恒为 1。
// 字号与字重不影响宽度。
type Monospace struct {
	// EastAsian 为 true 时把东亚歧义宽度字符按两列计算。
	EastAsian bool
}

var _ markup.Measurer = Monospace{}

func (m Monospace) Measure(text string, _ layout.Style) (markup.Extent, error) {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = m.EastAsian
	return markup.Extent{
		Width:  float64(cond.StringWidth(text)),
		Ascent: 1,
	}, nil
}
