package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("执行 %v 失败: %v", args, err)
	}
	return out.String()
}

func TestWrapCommand(t *testing.T) {
	got := execute(t, "the quick brown fox\n", "wrap", "--color", "off", "--width", "10", "--lines", "0", "--marks=true")
	want := "the quick↩\nbrown fox¶\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("wrap 输出不符 (-want +got):\n%s", diff)
	}
}

func TestWrapCommandLineLimit(t *testing.T) {
	got := execute(t, "the quick brown fox", "wrap", "--color", "off", "--width", "10", "--lines", "1", "--marks=false")
	if !strings.HasPrefix(got, "the quick\n") {
		t.Fatalf("第一行应为 the quick，得到 %q", got)
	}
	if !strings.Contains(got, "还有内容未排入") {
		t.Fatalf("截断时应提示剩余内容，得到 %q", got)
	}
}

func TestFontsCommand(t *testing.T) {
	got := execute(t, "", "fonts", "--color", "off")
	if !strings.Contains(got, "builtin:go-regular\n") || !strings.Contains(got, "builtin:lm-roman\n") {
		t.Fatalf("内置字体列表不完整: %q", got)
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		out, input, format string
		single             bool
		want               string
	}{
		{"output", "docs/report.folio", "pdf", true, filepath.Join("output", "report.pdf")},
		{"out/final.pdf", "docs/report.folio", "pdf", true, "out/final.pdf"},
		{"out/final.pdf", "docs/report.folio", "pdf", false, filepath.Join("out/final.pdf", "report.pdf")},
		{"build", "a.folio", "text", false, filepath.Join("build", "a.txt")},
	}
	for _, tc := range cases {
		if got := outputPath(tc.out, tc.input, tc.format, tc.single); got != tc.want {
			t.Fatalf("outputPath(%q, %q, %q, %v) = %q，期望 %q", tc.out, tc.input, tc.format, tc.single, got, tc.want)
		}
	}
}

func TestLoadData(t *testing.T) {
	data, err := loadData(`{"user":{"name":"Ada"}}`, "")
	if err != nil {
		t.Fatalf("解析 JSON 失败: %v", err)
	}
	want := map[string]any{"user": map[string]any{"name": "Ada"}}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("数据不符 (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`[1, 2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if data, err = loadData("", path); err != nil || len(data.([]any)) != 2 {
		t.Fatalf("读取数据文件失败: %v %v", data, err)
	}

	if _, err := loadData("{}", path); err == nil {
		t.Fatalf("同时指定 --data 与 --data-file 应报错")
	}
	if data, err := loadData("", ""); err != nil || data != nil {
		t.Fatalf("未提供数据时应返回 nil，得到 %v %v", data, err)
	}
}

func TestRenderCommandText(t *testing.T) {
	dir := t.TempDir()
	src := `doc Note v1 {
  story main { "hello ${who}" }
  page A4 margin 10mm { box main x 0 y 0 width 40mm height 20mm }
}
`
	input := filepath.Join(dir, "note.folio")
	if err := os.WriteFile(input, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "note.txt")
	execute(t, "", "render", "--color", "off", "--format", "text", "--out", out, "--data", `{"who":"world"}`, "--data-file", "", "--config", "", "--debug", "", input)

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if !strings.Contains(string(got), "hello world") {
		t.Fatalf("输出缺少绑定后的文本: %q", got)
	}
}
