package layout

// StopFunc 决定 WordWrap 是否在 line 处停止；height 为包含该行在内的累计高度。
type StopFunc func(line *Line, height float64) bool

// WrapOptions 配置 WordWrap 的终止策略，Height 与 Stop 互斥。
type WrapOptions struct {
	Height float64 // >0 时为高度上限
	Stop   StopFunc
}

// FillOptions 配置一次 Fill 调用。
type FillOptions struct {
	Height float64
	Stop   StopFunc
	// Align 覆盖构造时解析出的对齐方式。
	Align string
	// ParagraphGap 是硬换行之后追加的段间距（mm）。
	ParagraphGap float64
}

// Placer 在矩形区域内绘制已接受的行，并报告消耗的纵向空间与延续状态。
type Placer interface {
	Draw(x, y, width float64, lines []*Line, opts DrawOptions) (State, error)
}

// DrawOptions 是 Fill 传给 Placer 的定位与样式选项，State 为上一次 Fill 留下的延续状态。
type DrawOptions struct {
	Align        string
	ParagraphGap float64
	State        State
}

// State 是在相邻 Fill 之间传递的延续状态，用于让文本跨多个区域或页面流动。
type State struct {
	DY float64 `json:"dy"` // 本次绘制消耗的纵向空间
	// Lines 是迄今为止放置的总行数。
	Lines int `json:"lines"`
	// Continued 表示上一段区域结束在段落中间（最后一行为软换行）。
	Continued bool              `json:"continued"`
	Values    map[string]string `json:"values,omitempty"`
	// Cookie 只在一次 Fill 内有效，Fill 返回前会清除。
	Cookie *Cookie `json:"cookie,omitempty"`
}

// Cookie 是 Placer 对单次渲染片段的一次性报告。
type Cookie struct {
	SegmentEnd   bool    `json:"segmentEnd"`
	LastBaseline float64 `json:"lastBaseline"`
}
