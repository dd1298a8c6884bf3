package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/renderer"
)

// Renderer 通过 github.com/tdewolff/canvas 度量文本并输出 PDF。
// 同一个 Renderer 既可作为排版的度量器，也可渲染排版结果，二者共享字体缓存。
type Renderer struct {
	baseDir string

	// 注入的字体数据，可通过 builtin:<name> 引用，优先于内置注册表
	fontBlobs map[string][]byte

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily // by src
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		fontBlobs: map[string][]byte{},
		families:  map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在使用该字体时报错
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Measurer 返回基于 canvas 字体度量的 markup.Measurer，签名与 compose.MeasurerFactory 一致。
func (r *Renderer) Measurer(fontSet map[string]layout.FontResource) (markup.Measurer, error) {
	return &measurer{r: r, fonts: fontSet}, nil
}

type measurer struct {
	r     *Renderer
	fonts map[string]layout.FontResource
}

// Measure 返回 mm 为单位的宽度与上升/下降量。canvas 的文本整形总是应用字偶距。
func (m *measurer) Measure(text string, st layout.Style) (markup.Extent, error) {
	face, err := m.r.face(fonts.Lookup(st.Font, m.fonts), st)
	if err != nil {
		return markup.Extent{}, err
	}
	metrics := face.Metrics()
	ext := markup.Extent{Ascent: metrics.Ascent, Descent: metrics.Descent}
	if text != "" {
		ext.Width = face.TextWidth(text)
	}
	return ext, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		drawRects(ctx, page.Rects)
		for _, box := range page.Boxes {
			if err := r.drawBox(ctx, box, result.Resources.Fonts); err != nil {
				return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
			}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawBox 按行绘制文本片段；行的 X 为对齐偏移，Baseline 相对文本框顶部。
func (r *Renderer) drawBox(ctx *canvas.Context, box layout.TextBox, fontSet map[string]layout.FontResource) error {
	for _, line := range box.Lines {
		baseline := box.Y + line.Baseline
		for _, run := range line.Runs {
			if strings.TrimSpace(run.Text) == "" {
				continue
			}
			face, err := r.face(fonts.Lookup(run.Style.Font, fontSet), run.Style)
			if err != nil {
				return err
			}
			x := box.X + line.X + run.X
			ctx.DrawText(x, baseline, canvas.NewTextLine(face, run.Text, canvas.Left))
		}
	}
	return nil
}

func drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(rc.StrokeWidth)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

// face 按样式选取字形变体并创建字体面；字号从 mm 换算为 pt。
func (r *Renderer) face(font layout.FontResource, st layout.Style) (*canvas.FontFace, error) {
	size := st.Size
	if size <= 0 {
		size = 10 * layout.PtToMm
	}
	col := layout.DefaultColor
	if st.Color != nil {
		col = *st.Color
	}
	family, err := r.family(fonts.Variant(font, st.Bold(), st.Italic()))
	if err != nil {
		return nil, fmt.Errorf("字体 %s: %w", font.Name, err)
	}
	return family.Face(toPt(size), colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) family(src string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if family, ok := r.families[src]; ok {
		return family, nil
	}
	data, err := r.loadFontBytes(src)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(src)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", src, err)
	}
	r.families[src] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			if blob, ok := r.fontBlobs[name]; ok {
				return blob, nil
			}
		}
	}
	return fonts.Read(src, r.baseDir)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
