package measure

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
)

// FallbackSize 是样式未给出字号时使用的字号（mm，约 10pt）。
const FallbackSize = 10 * layout.PtToMm

type faceKey struct {
	src  string
	size float64
}

// Faces 使用 OpenType 字体度量文本，字体族从 Fonts 中按名称查找。
// 解析后的字体与字体面会被缓存；Measure 可并发调用。
type Faces struct {
	fonts   map[string]layout.FontResource
	baseDir string

	mu     sync.Mutex
	parsed map[string]*opentype.Font
	faces  map[faceKey]font.Face
}

var _ markup.Measurer = (*Faces)(nil)

// NewFaces 创建字体度量器，baseDir 用于解析相对路径的字体文件。
func NewFaces(fontSet map[string]layout.FontResource, baseDir string) *Faces {
	return &Faces{
		fonts:   fontSet,
		baseDir: baseDir,
		parsed:  map[string]*opentype.Font{},
		faces:   map[faceKey]font.Face{},
	}
}

// Measure 返回以 mm 为单位的宽度与上升/下降量。Style.Kerning 为 false 时不应用字偶距。
func (f *Faces) Measure(text string, st layout.Style) (markup.Extent, error) {
	size := st.Size
	if size <= 0 {
		size = FallbackSize
	}
	src := fonts.Variant(fonts.Lookup(st.Font, f.fonts), st.Bold(), st.Italic())

	f.mu.Lock()
	defer f.mu.Unlock()
	face, err := f.face(src, size)
	if err != nil {
		return markup.Extent{}, err
	}

	var adv fixed.Int26_6
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 && st.KerningEnabled() {
			adv += face.Kern(prev, r)
		}
		a, ok := face.GlyphAdvance(r)
		if !ok {
			a, _ = face.GlyphAdvance('�')
		}
		adv += a
		prev = r
	}
	m := face.Metrics()
	return markup.Extent{
		Width:   toMM(adv),
		Ascent:  toMM(m.Ascent),
		Descent: toMM(m.Descent),
	}, nil
}

// Close 释放缓存的字体面。
func (f *Faces) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for k, face := range f.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.faces, k)
	}
	return first
}

func (f *Faces) face(src string, size float64) (font.Face, error) {
	key := faceKey{src: src, size: size}
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	parsed, ok := f.parsed[src]
	if !ok {
		data, err := fonts.Read(src, f.baseDir)
		if err != nil {
			return nil, err
		}
		parsed, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
		}
		f.parsed[src] = parsed
	}
	// DPI 为 72 时 1 像素等于 1pt
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size * layout.MmToPt,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面 %s 失败: %w", src, err)
	}
	f.faces[key] = face
	return face, nil
}

func toMM(v fixed.Int26_6) float64 { return float64(v) / 64 * layout.PtToMm }
