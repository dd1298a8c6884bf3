package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/folio/compose"
	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/measure"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	textrenderer "github.com/ByLCY/folio/renderer/text"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] file.folio...",
	Short: "排版 DSL 文件并输出 PDF 或纯文本",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "output", "输出目录；只有一个输入时也可以是文件路径")
	renderCmd.Flags().String("format", "pdf", "输出格式 (pdf|text)")
	renderCmd.Flags().String("debug", "", "布局调试 JSON 输出目录")
	renderCmd.Flags().String("data", "", "绑定到 DSL 的 JSON 数据")
	renderCmd.Flags().String("data-file", "", "绑定到 DSL 的 JSON 数据文件")
	renderCmd.Flags().String("config", "", "folio.toml 路径（默认在输入文件目录及上级目录查找）")
	renderCmd.Flags().IntP("jobs", "j", 4, "并行渲染的文件数")
}

// renderJob 是一次渲染所需的全部输入，各文件的任务互不共享状态。
type renderJob struct {
	input      string
	output     string
	debugDir   string
	format     string
	configPath string
	data       any
}

func runRender(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	out, _ := flags.GetString("out")
	format, _ := flags.GetString("format")
	debugDir, _ := flags.GetString("debug")
	dataJSON, _ := flags.GetString("data")
	dataFile, _ := flags.GetString("data-file")
	configPath, _ := flags.GetString("config")
	jobs, _ := flags.GetInt("jobs")

	if format != "pdf" && format != "text" {
		return fmt.Errorf("未知的输出格式: %s", format)
	}
	data, err := loadData(dataJSON, dataFile)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(1, min(jobs, len(args))))
	for _, input := range args {
		job := renderJob{
			input:      input,
			output:     outputPath(out, input, format, len(args) == 1),
			debugDir:   debugDir,
			format:     format,
			configPath: configPath,
			data:       data,
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := job.run(); err != nil {
				return fmt.Errorf("%s: %w", job.input, err)
			}
			cmd.Println(color.GreenString("已生成"), job.output)
			return nil
		})
	}
	return g.Wait()
}

// run 串联解析、布局与渲染。
func (j renderJob) run() error {
	file, err := os.Open(j.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件: %w", err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	var cfg *config.Config
	if j.configPath != "" {
		cfg, err = config.Load(j.configPath)
	} else {
		cfg, err = config.Discover(filepath.Dir(j.input))
	}
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(j.input)
	var (
		r       renderer.Renderer
		factory compose.MeasurerFactory
	)
	switch j.format {
	case "text":
		r = &textrenderer.Renderer{Indent: true}
		factory = monospace
	default:
		cr := canvasrenderer.NewRenderer(baseDir)
		r, factory = cr, cr.Measurer
	}

	result, err := compose.Build(doc, j.data, compose.Options{Measurer: factory, Config: cfg})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if j.debugDir != "" {
		if err := writeDebug(result, filepath.Join(j.debugDir, stem(j.input)+".json")); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(j.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func monospace(map[string]layout.FontResource) (markup.Measurer, error) {
	return measure.Monospace{}, nil
}

func loadData(raw, path string) (any, error) {
	if raw != "" && path != "" {
		return nil, fmt.Errorf("--data 与 --data-file 不能同时使用")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		raw = string(b)
	}
	if raw == "" {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

// outputPath 在 out 带有扩展名且只有一个输入时把它当作文件路径，否则当作目录。
func outputPath(out, input, format string, single bool) string {
	ext := "." + format
	if format == "text" {
		ext = ".txt"
	}
	if single && filepath.Ext(out) != "" {
		return out
	}
	return filepath.Join(out, stem(input)+ext)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
