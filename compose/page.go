package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
)

// borderWidth 是文本框边框的默认线宽（mm）。
const borderWidth = 0.2

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// pageTemplate 是解析后的 page 段落，每次换页时按模板重新放置文本框。
type pageTemplate struct {
	width, height float64
	margin        layout.Margin
	boxes         []boxSpec
}

// boxSpec 描述一个文本框；未给出的 y/width/height 在放置时推算。
type boxSpec struct {
	story       string
	x, y        float64
	hasY        bool
	width       float64
	height      float64
	align       string
	gap         float64
	border      *layout.Color
	borderWidth float64
}

func (p pageTemplate) contentWidth() float64  { return p.width - p.margin.Left - p.margin.Right }
func (p pageTemplate) contentBottom() float64 { return p.height - p.margin.Bottom }

func parsePageTemplate(section *dsl.PageSection, cfg *config.Config, colors map[string]layout.Color) (pageTemplate, error) {
	var tpl pageTemplate
	width, height, err := resolvePageSize(section.Spec, cfg.Page)
	if err != nil {
		return tpl, err
	}
	tpl.width, tpl.height = width, height

	margin, ok, err := marginFromParams(section.Spec.Params)
	if err != nil {
		return tpl, err
	}
	if !ok {
		if margin, err = parseMargin(strings.Fields(cfg.Page.Margin)); err != nil {
			return tpl, fmt.Errorf("配置中的页边距: %w", err)
		}
	}
	tpl.margin = margin
	if tpl.contentWidth() <= 0 || tpl.contentBottom() <= margin.Top {
		return tpl, fmt.Errorf("页边距超出页面尺寸 %s", section.Spec.Size)
	}

	if section.Block == nil {
		return tpl, fmt.Errorf("page 段落缺少内容")
	}
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		if stmt.Command.Name != "box" {
			return tpl, fmt.Errorf("%s: page 中不支持的指令 %s", stmt.Command.Pos, stmt.Command.Name)
		}
		box, err := parseBox(stmt.Command, tpl, colors)
		if err != nil {
			return tpl, fmt.Errorf("%s: %w", stmt.Command.Pos, err)
		}
		tpl.boxes = append(tpl.boxes, box)
	}
	return tpl, nil
}

// parseBox 解析 box STORY [x L] [y L] [width L] [height L] [align A] [gap L] [border COLOR] [stroke L]。
// 长度相对内容区域，百分比按内容区域宽/高计算。
func parseBox(cmd *dsl.Command, tpl pageTemplate, colors map[string]layout.Color) (boxSpec, error) {
	if len(cmd.Args) == 0 {
		return boxSpec{}, fmt.Errorf("box 缺少故事名称")
	}
	box := boxSpec{story: cmd.Args[0].Value, borderWidth: borderWidth}
	attrs, err := parseArgs(cmd.Args[1:])
	if err != nil {
		return box, err
	}
	contentH := tpl.contentBottom() - tpl.margin.Top
	for key, val := range attrs {
		switch key {
		case "x":
			box.x, err = parseDimension(val, tpl.contentWidth())
		case "y":
			box.y, err = parseDimension(val, contentH)
			box.hasY = true
		case "width":
			box.width, err = parseDimension(val, tpl.contentWidth())
		case "height":
			box.height, err = parseDimension(val, contentH)
		case "align":
			box.align, err = layout.NormalizeAlign(val)
		case "gap":
			box.gap, err = parseDimension(val, 0)
		case "border":
			var c layout.Color
			c, err = resolveColor(val, colors)
			box.border = &c
		case "stroke":
			box.borderWidth, err = parseDimension(val, 0)
		default:
			err = fmt.Errorf("box 不支持的参数 %s", key)
		}
		if err != nil {
			return box, err
		}
	}
	if box.width < 0 || box.height < 0 {
		return box, fmt.Errorf("box %s 的尺寸不能为负数", box.story)
	}
	return box, nil
}

// parseArgs 把 key value 形式的参数转换为映射，参数个数必须成对。
func parseArgs(args []*dsl.Lexeme) (map[string]string, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("参数 %s 缺少取值", args[len(args)-1].Value)
	}
	out := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		out[args[i].Value] = args[i+1].Value
	}
	return out, nil
}

func resolvePageSize(spec dsl.PageSpec, defaults config.PageConfig) (float64, float64, error) {
	size := spec.Size
	orientation := defaults.Orientation
	if strings.EqualFold(size, "default") {
		size = defaults.Size
	}
	base, ok := pagePresets[strings.ToUpper(size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", size)
	}
	for _, token := range spec.Params {
		switch token.Value {
		case "landscape", "portrait":
			orientation = token.Value
		}
	}
	width, height := base[0], base[1]
	if orientation == "landscape" {
		width, height = height, width
	}
	return width, height, nil
}

// marginFromParams 读取 margin 之后的 1 到 4 个长度；ok 表示参数中出现了 margin。
func marginFromParams(params []*dsl.Lexeme) (layout.Margin, bool, error) {
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		var vals []string
		for _, p := range params[i+1:] {
			if p.Type != "Number" || len(vals) == 4 {
				break
			}
			vals = append(vals, p.Value)
		}
		m, err := parseMargin(vals)
		return m, true, err
	}
	return layout.Margin{}, false, nil
}

// parseMargin 采用 CSS 的简写规则：1 到 4 个值依次为上、右、下、左。
func parseMargin(vals []string) (layout.Margin, error) {
	mm := make([]float64, 0, len(vals))
	for _, v := range vals {
		l, err := layout.ParseLength(v)
		if err != nil {
			return layout.Margin{}, err
		}
		mm = append(mm, l.ToMM())
	}
	switch len(mm) {
	case 1:
		return layout.Margin{Top: mm[0], Right: mm[0], Bottom: mm[0], Left: mm[0]}, nil
	case 2:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[0], Left: mm[1]}, nil
	case 3:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[1]}, nil
	case 4:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[3]}, nil
	default:
		return layout.Margin{}, fmt.Errorf("页边距需要 1 到 4 个值，实际 %d 个", len(mm))
	}
}

// parseDimension 解析长度或相对 reference 的百分比。
func parseDimension(value string, reference float64) (float64, error) {
	if num, ok := strings.CutSuffix(value, "%"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析百分比 %q: %w", value, err)
		}
		return reference * f / 100, nil
	}
	l, err := layout.ParseLength(value)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}
