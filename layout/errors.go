package layout

import "errors"

var (
	// ErrInvalidConfiguration 表示调用方同时给出了互斥的终止策略等配置错误。
	ErrInvalidConfiguration = errors.New("layout: 配置无效")
	// ErrMalformedToken 表示排版单元违反数据约束（负宽度，或强制换行却不是断点）。
	ErrMalformedToken = errors.New("layout: 非法排版单元")
)
