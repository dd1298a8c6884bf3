// Package config 读取 folio.toml：页面默认值与文档级样式表。
// 文件中的样式位于 DSL 资源之下，DSL 中的同名条目整体覆盖它们。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// FileName 是在输入文件所在目录及其上级目录中查找的配置文件名。
const FileName = "folio.toml"

// DefaultMaxPages 限制一次构建生成的页数，防止模板无限重复。
const DefaultMaxPages = 500

// Config 对应 folio.toml 的内容。样式属性与 DSL style 块使用相同的键。
type Config struct {
	Page     PageConfig                `toml:"page"`
	Style    map[string]any            `toml:"style"`
	Styles   map[string]map[string]any `toml:"styles"`
	Tags     map[string]map[string]any `toml:"tags"`
	Fonts    map[string]FontConfig     `toml:"fonts"`
	MaxPages int                       `toml:"max_pages"`

	// Path 是配置文件路径，未从文件加载时为空。
	Path string `toml:"-"`
}

type PageConfig struct {
	Size        string `toml:"size"`
	Orientation string `toml:"orientation"`
	Margin      string `toml:"margin"`
}

// FontConfig 声明一个字体族，src 可以是 builtin:<name> 或相对配置文件的路径。
type FontConfig struct {
	Src        string `toml:"src"`
	Bold       string `toml:"bold"`
	Italic     string `toml:"italic"`
	BoldItalic string `toml:"bold_italic"`
}

// Default 返回未提供配置文件时使用的配置。
func Default() *Config {
	return &Config{
		Page:     PageConfig{Size: "A4", Orientation: "portrait", Margin: "20mm"},
		MaxPages: DefaultMaxPages,
	}
}

// Load 解析 path 指向的 TOML 文件，未设置的字段使用默认值。
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%s: 解析 TOML 失败: %w", path, err)
	}
	cfg.Path = path
	return cfg.normalize()
}

// Parse 从字符串解析配置。
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("解析 TOML 失败: %w", err)
	}
	return cfg.normalize()
}

// Find 从 startDir 向上查找 folio.toml。
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("解析起始目录失败: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("无法访问 %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover 在 startDir 及其上级目录查找配置；找不到时返回默认配置。
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// BaseDir 是解析配置中相对字体路径的目录。
func (c *Config) BaseDir() string {
	if c == nil || c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// Props 把 TOML 值统一转成字符串属性，键按字典序稳定。
func Props(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(in))
	for _, k := range keys {
		out[k] = fmt.Sprint(in[k])
	}
	return out
}

func (c *Config) normalize() (*Config, error) {
	if c.MaxPages < 0 {
		return nil, fmt.Errorf("max_pages 不能为负数: %d", c.MaxPages)
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	for name, f := range c.Fonts {
		if f.Src == "" {
			return nil, fmt.Errorf("字体 %s 缺少 src", name)
		}
	}
	return c, nil
}
