package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := Length{Value: pt, Unit: UnitPT}.ToPT()
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 mm 的换算。
func TestParseLength(t *testing.T) {
	cases := map[string]float64{
		"1in":    25.4,
		"2.54cm": 25.4,
		"12pt":   12 * PtToMm,
		"10mm":   10,
		" 7 ":    7,
	}
	for in, want := range cases {
		l, err := ParseLength(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := l.ToMM(); math.Abs(got-want) > 1e-9 {
			t.Fatalf("%q 转 mm 期望 %g，实际 %g", in, want, got)
		}
	}
	if _, err := ParseLength("wide"); err == nil {
		t.Fatalf("非法长度应返回错误")
	}
}

// TestLineHeightResolve 验证行高解析：倍数、绝对值与未设置三种语义。
func TestLineHeightResolve(t *testing.T) {
	size := 12 * PtToMm
	natural := 5.0

	factor, err := ParseLineHeight("1.2x")
	if err != nil {
		t.Fatalf("ParseLineHeight: %v", err)
	}
	if got, want := factor.Resolve(size, natural), size*1.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("1.2x 解析错误: got=%g want=%g", got, want)
	}

	abs, err := ParseLineHeight("18pt")
	if err != nil {
		t.Fatalf("ParseLineHeight: %v", err)
	}
	if got, want := abs.Resolve(size, natural), 18*PtToMm; math.Abs(got-want) > 1e-9 {
		t.Fatalf("18pt 解析错误: got=%g want=%g", got, want)
	}

	var unset LineHeightSpec
	if !unset.IsZero() || unset.Resolve(size, natural) != natural {
		t.Fatalf("未设置的行高应使用字体自然行高")
	}
	if _, err := ParseLineHeight("0x"); err == nil {
		t.Fatalf("0x 应返回错误")
	}
}
