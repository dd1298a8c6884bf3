package compose

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/measure"
)

// styleDef 是尚未展开继承的样式声明。
type styleDef struct {
	name    string
	extends string
	props   map[string]string
}

// collectResources 合并配置文件与 DSL 中的字体、颜色、样式与标签。
// 同名条目以 DSL 为准；样式先展开 extends 再转换为 layout.Style。
func collectResources(doc *dsl.Document, cfg *config.Config) (layout.ResourceSet, layout.Document, error) {
	res := layout.ResourceSet{
		Fonts:  map[string]layout.FontResource{},
		Colors: map[string]layout.Color{},
		Styles: map[string]layout.Style{},
		Tags:   map[string]layout.Style{},
	}
	rawStyles := map[string]styleDef{}
	rawTags := map[string]map[string]string{}

	for name, f := range cfg.Fonts {
		res.Fonts[name] = layout.FontResource{
			Name:       name,
			Src:        configPath(f.Src, cfg),
			Bold:       configPath(f.Bold, cfg),
			Italic:     configPath(f.Italic, cfg),
			BoldItalic: configPath(f.BoldItalic, cfg),
		}
	}
	for name, props := range cfg.Styles {
		rawStyles[name] = styleDef{name: name, props: config.Props(props)}
	}
	for name, props := range cfg.Tags {
		rawTags[strings.ToLower(name)] = config.Props(props)
	}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			cmd := stmt.Command
			if cmd == nil || len(cmd.Args) == 0 {
				continue
			}
			name := cmd.Args[0].Value
			switch cmd.Name {
			case "font":
				font := parseFontResource(cmd)
				if font.Src == "" {
					return res, layout.Document{}, fmt.Errorf("字体 %s 缺少 src", name)
				}
				res.Fonts[name] = font
			case "color":
				value := cmd.Args[len(cmd.Args)-1].Value
				c, err := parseColor(value)
				if err != nil {
					return res, layout.Document{}, fmt.Errorf("颜色 %s: %w", name, err)
				}
				res.Colors[name] = c
			case "style":
				def := styleDef{name: name, props: blockProps(cmd.Block)}
				if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
					def.extends = cmd.Args[2].Value
				}
				rawStyles[name] = def
			case "tag":
				rawTags[strings.ToLower(name)] = blockProps(cmd.Block)
			}
		}
	}

	if _, ok := res.Fonts["Body"]; !ok {
		res.Fonts["Body"] = fonts.Default
	}

	flat, err := resolveStyles(rawStyles)
	if err != nil {
		return res, layout.Document{}, err
	}
	for name, props := range flat {
		st, err := styleFromProps(props, res.Colors)
		if err != nil {
			return res, layout.Document{}, fmt.Errorf("style %s: %w", name, err)
		}
		res.Styles[name] = st
	}
	for name, props := range rawTags {
		st, err := styleFromProps(props, res.Colors)
		if err != nil {
			return res, layout.Document{}, fmt.Errorf("tag %s: %w", name, err)
		}
		res.Tags[name] = st
	}

	ink := layout.DefaultColor
	base := layout.Style{
		Font:  "Body",
		Size:  measure.FallbackSize,
		Color: &ink,
		Align: "left",
		Wrap:  layout.WrapNormal,
	}
	fromConfig, err := styleFromProps(config.Props(cfg.Style), res.Colors)
	if err != nil {
		return res, layout.Document{}, fmt.Errorf("默认样式: %w", err)
	}
	base = base.Merge(fromConfig)
	// 名为 default 的样式作为文档默认样式
	if st, ok := res.Styles["default"]; ok {
		base = base.Merge(st)
	}

	doc2 := layout.Document{DefaultStyle: base, Styles: res.Styles, Tags: res.Tags}
	return res, doc2, nil
}

func configPath(src string, cfg *config.Config) string {
	if src == "" || strings.Contains(src, ":") || filepath.IsAbs(src) || cfg.BaseDir() == "" {
		return src
	}
	return filepath.Join(cfg.BaseDir(), src)
}

func parseFontResource(cmd *dsl.Command) layout.FontResource {
	props := blockProps(cmd.Block)
	return layout.FontResource{
		Name:       cmd.Args[0].Value,
		Src:        props["src"],
		Bold:       props["bold"],
		Italic:     props["italic"],
		BoldItalic: firstNonEmpty(props["boldItalic"], props["bold-italic"], props["bold_italic"]),
	}
}

func blockProps(block *dsl.Block) map[string]string {
	props := map[string]string{}
	if block == nil {
		return props
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Raw(); val != "" {
			props[stmt.Assignment.Key] = val
		}
	}
	return props
}

// resolveStyles 展开 extends 继承链，检测循环与未定义的父样式。
func resolveStyles(styles map[string]styleDef) (map[string]map[string]string, error) {
	resolved := map[string]map[string]string{}
	visiting := map[string]bool{}

	var dfs func(name string) (map[string]string, error)
	dfs = func(name string) (map[string]string, error) {
		if props, ok := resolved[name]; ok {
			return props, nil
		}
		def, ok := styles[name]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if def.extends != "" {
			parent, err := dfs(def.extends)
			if err != nil {
				return nil, err
			}
			for k, v := range parent {
				props[k] = v
			}
		}
		for k, v := range def.props {
			props[k] = v
		}
		resolved[name] = props
		delete(visiting, name)
		return props, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// styleFromProps 把样式属性转换为 layout.Style。未知的键被忽略。
func styleFromProps(props map[string]string, colors map[string]layout.Color) (layout.Style, error) {
	var st layout.Style
	for key, raw := range props {
		val := strings.TrimSpace(raw)
		switch key {
		case "font":
			st.Font = val
		case "size":
			size, err := parseFontSize(val)
			if err != nil {
				return st, err
			}
			st.Size = size
		case "weight":
			switch strings.ToLower(val) {
			case "bold":
				st.Weight = layout.WeightBold
			case "normal", "regular":
			default:
				return st, fmt.Errorf("%w: 未知的 weight %q", layout.ErrInvalidConfiguration, val)
			}
		case "slant", "style":
			switch strings.ToLower(val) {
			case "italic", "oblique":
				st.Slant = layout.SlantItalic
			case "normal":
			default:
				return st, fmt.Errorf("%w: 未知的 slant %q", layout.ErrInvalidConfiguration, val)
			}
		case "color":
			c, err := resolveColor(val, colors)
			if err != nil {
				return st, err
			}
			st.Color = &c
		case "align":
			align, err := layout.NormalizeAlign(val)
			if err != nil {
				return st, err
			}
			st.Align = align
		case "kerning":
			k, err := strconv.ParseBool(val)
			if err != nil {
				return st, fmt.Errorf("%w: kerning 取值无效 %q", layout.ErrInvalidConfiguration, val)
			}
			st.Kerning = &k
		case "lineHeight", "line-height", "line_height":
			lh, err := layout.ParseLineHeight(val)
			if err != nil {
				return st, fmt.Errorf("%w: %v", layout.ErrInvalidConfiguration, err)
			}
			st.LineHeight = lh
		case "wrap":
			switch strings.ToLower(val) {
			case layout.WrapNormal, layout.WrapAnywhere, layout.WrapNowrap:
				st.Wrap = strings.ToLower(val)
			default:
				return st, fmt.Errorf("%w: 未知的 wrap %q", layout.ErrInvalidConfiguration, val)
			}
		}
	}
	return st, nil
}

// parseFontSize 解析字号；没有单位时按 pt 处理。
func parseFontSize(value string) (float64, error) {
	l, err := layout.ParseLength(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", layout.ErrInvalidConfiguration, err)
	}
	if l.Value <= 0 {
		return 0, fmt.Errorf("%w: 字号必须为正数 %q", layout.ErrInvalidConfiguration, value)
	}
	if l.Unit == layout.UnitNone {
		l.Unit = layout.UnitPT
	}
	return l.ToMM(), nil
}

func resolveColor(value string, colors map[string]layout.Color) (layout.Color, error) {
	if c, ok := colors[value]; ok {
		return c, nil
	}
	return parseColor(value)
}

func parseColor(value string) (layout.Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if !strings.HasPrefix(value, "#") || len(hex) != 6 {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return layout.Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func collectMeta(doc *dsl.Document) layout.DocumentMeta {
	meta := layout.DocumentMeta{Creator: "Folio"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := stmt.Assignment.Value
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = val.Raw()
			case "author":
				meta.Author = val.Raw()
			case "subject":
				meta.Subject = val.Raw()
			case "creator":
				meta.Creator = val.Raw()
			case "keywords":
				if val.Array != nil {
					for _, item := range val.Array.Values {
						if s := item.Raw(); s != "" {
							meta.Keywords = append(meta.Keywords, s)
						}
					}
				} else if s := val.Raw(); s != "" {
					meta.Keywords = []string{s}
				}
			}
		}
	}
	return meta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
