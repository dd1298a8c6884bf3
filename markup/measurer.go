package markup

import "github.com/ByLCY/folio/layout"

// Extent 是一段文本在给定样式下的度量结果。
type Extent struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Measurer 测量文本宽度与字体度量。空字符串只返回字体度量。
type Measurer interface {
	Measure(text string, st layout.Style) (Extent, error)
}

// MeasurerFunc 让普通函数实现 Measurer。
type MeasurerFunc func(text string, st layout.Style) (Extent, error)

func (f MeasurerFunc) Measure(text string, st layout.Style) (Extent, error) { return f(text, st) }
