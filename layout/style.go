package layout

import (
	"fmt"
	"strings"
)

const (
	WeightBold  = "bold"
	SlantItalic = "italic"
)

// 折行策略，与 markup 分词器约定。
const (
	WrapNormal   = "normal"
	WrapAnywhere = "anywhere"
	WrapNowrap   = "nowrap"
)

// Style 描述可叠加的文本样式。零值字段表示“继承”。
type Style struct {
	Font       string         `json:"font,omitempty"`
	Size       float64        `json:"size,omitempty"` // mm
	Weight     string         `json:"weight,omitempty"`
	Slant      string         `json:"slant,omitempty"`
	Color      *Color         `json:"color,omitempty"`
	Align      string         `json:"align,omitempty"`
	Kerning    *bool          `json:"kerning,omitempty"`
	LineHeight LineHeightSpec `json:"lineHeight,omitempty"`
	Wrap       string         `json:"wrap,omitempty"`
}

// Merge 返回以 over 中非零字段覆盖 s 后的样式。
func (s Style) Merge(over Style) Style {
	out := s
	if over.Font != "" {
		out.Font = over.Font
	}
	if over.Size > 0 {
		out.Size = over.Size
	}
	if over.Weight != "" {
		out.Weight = over.Weight
	}
	if over.Slant != "" {
		out.Slant = over.Slant
	}
	if over.Color != nil {
		c := *over.Color
		out.Color = &c
	}
	if over.Align != "" {
		out.Align = over.Align
	}
	if over.Kerning != nil {
		k := *over.Kerning
		out.Kerning = &k
	}
	if !over.LineHeight.IsZero() {
		out.LineHeight = over.LineHeight
	}
	if over.Wrap != "" {
		out.Wrap = over.Wrap
	}
	return out
}

// Same 按值比较两个样式（指针字段比较所指内容）。
func (s Style) Same(o Style) bool {
	if s.Font != o.Font || s.Size != o.Size || s.Weight != o.Weight || s.Slant != o.Slant ||
		s.Align != o.Align || s.LineHeight != o.LineHeight || s.Wrap != o.Wrap {
		return false
	}
	if (s.Color == nil) != (o.Color == nil) || (s.Color != nil && *s.Color != *o.Color) {
		return false
	}
	return s.KerningEnabled() == o.KerningEnabled()
}

func (s Style) Bold() bool   { return s.Weight == WeightBold }
func (s Style) Italic() bool { return s.Slant == SlantItalic }

// KerningEnabled 未设置时默认开启字偶距。
func (s Style) KerningEnabled() bool { return s.Kerning == nil || *s.Kerning }

// Document 是文档级的默认样式与样式/标签表。
type Document struct {
	DefaultStyle Style            `json:"defaultStyle"`
	Styles       map[string]Style `json:"styles,omitempty"`
	Tags         map[string]Style `json:"tags,omitempty"`
}

// Options 是单次排版调用的选项。优先级：显式标志 > DefaultStyle/Tags/Styles > Document。
type Options struct {
	Align   string
	Kerning *bool
	Size    float64
	// Style 取值 bold、italic、bold_italic（或 bold-italic），空表示不设置。
	Style string

	DefaultStyle Style
	Styles       map[string]Style
	Tags         map[string]Style

	Placer Placer
}

// Config 是在构造 LineBuilder 时一次性解析好的配置。
type Config struct {
	Style  Style
	Styles map[string]Style
	Tags   map[string]Style
	Placer Placer
}

// Resolve 把文档默认值、调用方样式表与显式标志按优先级合并。
func Resolve(doc Document, opts Options) (Config, error) {
	cfg := Config{
		Style:  doc.DefaultStyle.Merge(opts.DefaultStyle),
		Styles: overlay(doc.Styles, opts.Styles),
		Tags:   overlay(doc.Tags, opts.Tags),
		Placer: opts.Placer,
	}

	if opts.Align != "" {
		align, err := NormalizeAlign(opts.Align)
		if err != nil {
			return Config{}, err
		}
		cfg.Style.Align = align
	}
	if opts.Kerning != nil {
		k := *opts.Kerning
		cfg.Style.Kerning = &k
	}
	if opts.Size > 0 {
		cfg.Style.Size = opts.Size
	}
	switch strings.ToLower(strings.TrimSpace(opts.Style)) {
	case "":
	case "bold":
		cfg.Style.Weight = WeightBold
	case "italic":
		cfg.Style.Slant = SlantItalic
	case "bold_italic", "bold-italic":
		cfg.Style.Weight = WeightBold
		cfg.Style.Slant = SlantItalic
	default:
		return Config{}, fmt.Errorf("%w: 未知的 style 选项 %q", ErrInvalidConfiguration, opts.Style)
	}
	return cfg, nil
}

// NormalizeAlign 规范化对齐方式（支持 start/end 别名）。不支持两端对齐。
func NormalizeAlign(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return "left", nil
	case "center", "middle":
		return "center", nil
	case "right", "end":
		return "right", nil
	default:
		return "", fmt.Errorf("%w: 不支持的对齐方式 %q", ErrInvalidConfiguration, v)
	}
}

// overlay 按键覆盖：over 中的条目整体替换 base 中的同名条目。
func overlay(base, over map[string]Style) map[string]Style {
	out := make(map[string]Style, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
