package layout

import (
	"fmt"
	"math"
)

// Token 是换行算法消费的最小度量单元：一个词、一段空白或一个强制换行。
// 宽度与高度由分词器（见 markup 包）借助字体度量给出，单位与目标宽度一致。
type Token struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`

	Width            float64 `json:"width"`                      // 不可丢弃部分的宽度
	DiscardableWidth float64 `json:"discardableWidth,omitempty"` // 仅对断点有意义，例如空格
	Ascent           float64 `json:"ascent"`
	Height           float64 `json:"height"` // 行高，由字体度量与 line-height 决定

	Discardable bool `json:"discardable,omitempty"` // 出现在行首时可被丢弃（逐字模式除外）
	Break       bool `json:"break,omitempty"`       // 允许在此处结束一行
	ForcedBreak bool `json:"forcedBreak,omitempty"` // 必须在此处结束一行
	Verbatim    bool `json:"verbatim,omitempty"`    // 产生于逐字（pre）模式
}

// TotalWidth 返回 Width + DiscardableWidth。
func (t Token) TotalWidth() float64 { return t.Width + t.DiscardableWidth }

// Validate 检查分词器是否遵守了数据约束。
func (t Token) Validate() error {
	for _, v := range []float64{t.Width, t.DiscardableWidth, t.Ascent, t.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q 度量不是有限值", ErrMalformedToken, t.Text)
		}
	}
	if t.Width < 0 || t.DiscardableWidth < 0 {
		return fmt.Errorf("%w: %q 宽度为负 (%g/%g)", ErrMalformedToken, t.Text, t.Width, t.DiscardableWidth)
	}
	if t.Height < 0 || t.Ascent < 0 {
		return fmt.Errorf("%w: %q 高度为负", ErrMalformedToken, t.Text)
	}
	if t.ForcedBreak && !t.Break {
		return fmt.Errorf("%w: %q 为强制换行但不是断点", ErrMalformedToken, t.Text)
	}
	return nil
}
