// Package fonts 提供内置字体注册表以及字体资源的读取。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/folio/layout"
)

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
	"go-mono":        gomono.TTF,

	"lm-roman":             lmroman10regular.TTF,
	"lm-roman-bold":        lmroman10bold.TTF,
	"lm-roman-italic":      lmroman10italic.TTF,
	"lm-roman-bold-italic": lmroman10bolditalic.TTF,
	"lm-mono":              lmmono10regular.TTF,
}

// Default 是未声明字体时使用的正文字体族。
var Default = layout.FontResource{
	Name:       "Body",
	Src:        "builtin:go-regular",
	Bold:       "builtin:go-bold",
	Italic:     "builtin:go-italic",
	BoldItalic: "builtin:go-bold-italic",
}

// Names 返回所有内置字体名称（已排序）。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 返回内置字体的字节数据，name 可带 builtin: 或 built-in: 前缀。
func Load(name string) ([]byte, error) {
	name, _ = trimBuiltin(name)
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Read 读取字体资源：builtin: 前缀走内置注册表，其余按路径读取（相对 baseDir）。
func Read(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体 src 为空")
	}
	if name, ok := trimBuiltin(src); ok {
		return Load(name)
	}
	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// Variant 选出字重/字形对应的 src，缺失的变体回退到常规字形。
func Variant(res layout.FontResource, bold, italic bool) string {
	switch {
	case bold && italic && res.BoldItalic != "":
		return res.BoldItalic
	case bold && !italic && res.Bold != "":
		return res.Bold
	case italic && !bold && res.Italic != "":
		return res.Italic
	case bold && italic && res.Bold != "":
		return res.Bold
	}
	return res.Src
}

// Lookup 按名称查找字体族，找不到时依次回退到 Body 与 Default。
func Lookup(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	return Default
}

func trimBuiltin(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return src, false
}
