// Package compose 把解析后的文档排成页面：每个故事一个行构建器，
// 页面模板中的文本框依次调用 Fill，未排完的内容流向下一个文本框或下一页。
package compose

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
)

// ErrNoProgress 表示整页的文本框都放不下剩余内容的下一行。
var ErrNoProgress = errors.New("compose: 页面没有排入任何内容")

// MeasurerFactory 根据文档字体表创建度量器，使排版与渲染使用同一套字体。
type MeasurerFactory func(fonts map[string]layout.FontResource) (markup.Measurer, error)

// Options 配置一次构建。
type Options struct {
	Measurer MeasurerFactory
	// Config 提供页面默认值与文档级样式表，为空时使用 config.Default()。
	Config *config.Config
}

type story struct {
	name    string
	builder *layout.LineBuilder
	placer  *layout.PagePlacer
	gap     float64
}

// Build 根据 DSL AST 生成分页后的布局结果。
func Build(doc *dsl.Document, data any, opts Options) (*layout.Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("compose: 缺少 Measurer")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	res, ldoc, err := collectResources(doc, cfg)
	if err != nil {
		return nil, err
	}
	m, err := opts.Measurer(res.Fonts)
	if err != nil {
		return nil, fmt.Errorf("创建度量器失败: %w", err)
	}

	stories := map[string]*story{}
	var templates []pageTemplate
	for _, section := range doc.Sections {
		switch {
		case section.Story != nil:
			name := section.Story.Name
			if _, dup := stories[name]; dup {
				return nil, fmt.Errorf("故事 %s 重复定义", name)
			}
			s, err := newStory(section.Story, ldoc, data, m)
			if err != nil {
				return nil, fmt.Errorf("故事 %s: %w", name, err)
			}
			stories[name] = s
		case section.Page != nil:
			tpl, err := parsePageTemplate(section.Page, cfg, res.Colors)
			if err != nil {
				return nil, err
			}
			templates = append(templates, tpl)
		}
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	for _, tpl := range templates {
		for _, box := range tpl.boxes {
			if _, ok := stories[box.story]; !ok {
				return nil, fmt.Errorf("文本框引用了未定义的故事 %s", box.story)
			}
		}
	}

	pages, err := paginate(templates, stories, cfg.MaxPages)
	if err != nil {
		return nil, err
	}
	return &layout.Result{Pages: pages, Resources: res, Meta: collectMeta(doc)}, nil
}

// newStory 解析故事参数、绑定数据并创建行构建器。
// 参数：size、align、style（bold/italic/bold_italic）、kerning、use（样式名）、gap（段间距）。
func newStory(sec *dsl.StorySection, doc layout.Document, data any, m markup.Measurer) (*story, error) {
	attrs, err := parseArgs(sec.Params)
	if err != nil {
		return nil, err
	}
	s := &story{name: sec.Name, placer: &layout.PagePlacer{Story: sec.Name}}
	opts := layout.Options{Placer: s.placer}
	for key, val := range attrs {
		switch key {
		case "size":
			opts.Size, err = parseFontSize(val)
		case "align":
			opts.Align = val
		case "style":
			opts.Style = val
		case "kerning":
			var k bool
			k, err = strconv.ParseBool(val)
			opts.Kerning = &k
		case "use":
			st, ok := doc.Styles[val]
			if !ok {
				err = fmt.Errorf("style %s 未定义", val)
			}
			opts.DefaultStyle = st
		case "gap":
			s.gap, err = parseDimension(val, 0)
		default:
			err = fmt.Errorf("story 不支持的参数 %s", key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", layout.ErrInvalidConfiguration, err)
		}
	}

	text := binding.InterpolateMarkup(sec.Text(), data)
	s.builder, err = markup.NewLineBuilder(doc, text, opts, m)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// paginate 依次使用页面模板，最后一个模板重复使用，直到所有被引用的故事排完。
func paginate(templates []pageTemplate, stories map[string]*story, maxPages int) ([]layout.Page, error) {
	if maxPages <= 0 {
		maxPages = config.DefaultMaxPages
	}
	used := map[string]*story{}
	for _, tpl := range templates {
		for _, box := range tpl.boxes {
			used[box.story] = stories[box.story]
		}
	}
	pending := func() bool {
		for _, s := range used {
			if !s.builder.Done() {
				return true
			}
		}
		return false
	}

	var pages []layout.Page
	for i := 0; ; i++ {
		if i >= len(templates) && !pending() {
			return pages, nil
		}
		if i >= maxPages {
			return nil, fmt.Errorf("超过最大页数 %d", maxPages)
		}
		tpl := templates[min(i, len(templates)-1)]
		page, progressed, err := fillPage(tpl, stories)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		pages = append(pages, page)
		if i >= len(templates)-1 && pending() && !progressed {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, ErrNoProgress)
		}
	}
}

// fillPage 按模板放置一页的文本框。没有 y 的文本框接在上一个文本框下方；
// 没有 height 的文本框延伸到内容区域底部。
func fillPage(tpl pageTemplate, stories map[string]*story) (layout.Page, bool, error) {
	page := &layout.Page{Width: tpl.width, Height: tpl.height, Margin: tpl.margin}
	progressed := false
	cursor := tpl.margin.Top

	for _, box := range tpl.boxes {
		s := stories[box.story]
		x := tpl.margin.Left + box.x
		y := cursor
		if box.hasY {
			y = tpl.margin.Top + box.y
		}
		width := box.width
		if width == 0 {
			width = tpl.contentWidth() - box.x
		}
		height := box.height
		if height == 0 {
			height = tpl.contentBottom() - y
		}
		if width <= 0 || height <= 0 {
			continue
		}

		s.placer.Target = page
		before := s.builder.State().Lines
		bottom, err := s.builder.Fill(x, y, width, layout.FillOptions{
			Height:       height,
			Align:        box.align,
			ParagraphGap: firstPositive(box.gap, s.gap),
		})
		if err != nil {
			return *page, false, fmt.Errorf("故事 %s: %w", s.name, err)
		}
		if s.builder.State().Lines > before {
			progressed = true
		}

		if box.height > 0 {
			cursor = y + box.height
		} else {
			cursor = bottom
		}
		if box.border != nil {
			page.Rects = append(page.Rects, layout.Rect{
				X: x, Y: y, Width: width, Height: cursor - y,
				StrokeColor: *box.border,
				StrokeWidth: box.borderWidth,
			})
		}
	}
	return *page, progressed, nil
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
