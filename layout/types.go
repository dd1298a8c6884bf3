package layout

// 该文件定义布局结果与资源描述，供排版、渲染与调试 JSON 共用。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色、样式与标签定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
	Tags   map[string]Style        `json:"tags"`
}

// FontResource 描述一个字体族，各字重/字形的 src 可以是文件路径或 builtin:<name>。
type FontResource struct {
	Name       string `json:"name"`
	Src        string `json:"src"`
	Bold       string `json:"bold,omitempty"`
	Italic     string `json:"italic,omitempty"`
	BoldItalic string `json:"boldItalic,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultColor 是未指定颜色时的正文颜色。
var DefaultColor = Color{R: 30, G: 30, B: 30}

// Page 记录页面尺寸、边距与已经定位好的文本框。
type Page struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Margin Margin    `json:"margin"`
	Boxes  []TextBox `json:"boxes"`
	Rects  []Rect    `json:"rects,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 是一次 Fill 在页面上放置的行集合，坐标为页面坐标（mm）。
type TextBox struct {
	Story  string  `json:"story,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Align  string  `json:"align,omitempty"`
	// Seq 是该文本框在所属故事中的序号（从 1 开始），跨页连续。
	Seq   int        `json:"seq,omitempty"`
	Lines []TextLine `json:"lines"`
}

// TextLine 是一行已定位的内容；Y 与 Baseline 相对文本框顶部，X 为对齐偏移。
type TextLine struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Baseline  float64 `json:"baseline"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	HardBreak bool    `json:"hardBreak,omitempty"`
	Runs      []Run   `json:"runs"`
}

// Run 是同一行内样式相同的连续文本，X 相对行首。
type Run struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Style Style   `json:"style"`
}

// Rect 表示一个矩形边框（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
