// Package textrenderer 把排版结果输出为纯文本，便于在终端或测试中检查分行与分页。
package textrenderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// Renderer 每个放置的行输出一行文本，页面之间以换页符分隔。
type Renderer struct {
	// Indent 为 true 时按行的对齐偏移缩进（每 mm 一个空格）。
	Indent bool
	// Boxes 为 true 时在每个文本框前输出 [story#seq x,y] 标题，没有序号时省略 #seq。
	Boxes bool
}

var _ renderer.Renderer = (*Renderer)(nil)

func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	var buf bytes.Buffer
	for i, page := range result.Pages {
		if i > 0 {
			buf.WriteString("\f\n")
		}
		for _, box := range page.Boxes {
			if r.Boxes {
				name := box.Story
				if box.Seq > 0 {
					name = fmt.Sprintf("%s#%d", name, box.Seq)
				}
				fmt.Fprintf(&buf, "[%s %.1f,%.1f]\n", name, box.X, box.Y)
			}
			for _, line := range box.Lines {
				if r.Indent && line.X > 0 {
					buf.WriteString(strings.Repeat(" ", int(line.X+0.5)))
				}
				for _, run := range line.Runs {
					buf.WriteString(run.Text)
				}
				buf.WriteByte('\n')
			}
		}
	}
	return buf.Bytes(), nil
}
