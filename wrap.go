package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/measure"
)

var wrapCmd = &cobra.Command{
	Use:   "wrap [flags] [file]",
	Short: "在终端中按等宽单元预览折行结果",
	Long:  "读取富文本标记（文件或标准输入），以每个字符一个单元的宽度折行后输出。",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWrap,
}

func init() {
	wrapCmd.Flags().IntP("width", "w", 60, "行宽（单元）")
	wrapCmd.Flags().Int("lines", 0, "最多输出的行数，0 表示不限制")
	wrapCmd.Flags().String("align", "", "对齐方式 (left|center|right)")
	wrapCmd.Flags().String("style", "", "整体样式 (bold|italic|bold_italic)")
	wrapCmd.Flags().Bool("east-asian", false, "按东亚宽度计算歧义字符")
	wrapCmd.Flags().Bool("marks", false, "在行尾标出硬换行 (¶) 与软换行 (↩)")
}

func runWrap(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	width, _ := flags.GetInt("width")
	maxLines, _ := flags.GetInt("lines")
	align, _ := flags.GetString("align")
	style, _ := flags.GetString("style")
	eastAsian, _ := flags.GetBool("east-asian")
	marks, _ := flags.GetBool("marks")

	if width <= 0 {
		return fmt.Errorf("行宽必须为正数: %d", width)
	}
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	page := &layout.Page{}
	b, err := markup.NewLineBuilder(layout.Document{}, text, layout.Options{
		Align:  align,
		Style:  style,
		Placer: &layout.PagePlacer{Target: page},
	}, measure.Monospace{EastAsian: eastAsian})
	if err != nil {
		return err
	}
	if _, err := b.Fill(0, 0, float64(width), layout.FillOptions{Height: float64(maxLines)}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, box := range page.Boxes {
		for _, line := range box.Lines {
			fmt.Fprintln(out, formatLine(line, marks))
		}
	}
	if !b.Done() {
		fmt.Fprintln(out, color.YellowString("… 还有内容未排入（共 %d 行）", b.State().Lines))
	}
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("读取输入失败: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

// formatLine 按对齐偏移缩进，并用终端属性表现粗体、斜体与颜色。
func formatLine(line layout.TextLine, marks bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", int(line.X+0.5)))
	for _, run := range line.Runs {
		b.WriteString(runColor(run.Style).Sprint(run.Text))
	}
	if marks {
		mark := "↩"
		if line.HardBreak {
			mark = "¶"
		}
		b.WriteString(color.New(color.Faint).Sprint(mark))
	}
	return b.String()
}

func runColor(st layout.Style) *color.Color {
	c := color.New()
	if st.Bold() {
		c.Add(color.Bold)
	}
	if st.Italic() {
		c.Add(color.Italic)
	}
	if st.Color != nil {
		c.AddRGB(st.Color.R, st.Color.G, st.Color.B)
	}
	return c
}
