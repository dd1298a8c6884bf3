// Package markup turns rich text into measured layout tokens.
//
// The input is a small HTML-like markup: b/strong, i/em, br, p, pre, span
// with a class attribute, plus any tag listed in the document tag table.
// Widths and heights come from a Measurer, so the same text can be broken
// against PDF font metrics or terminal cells.
package markup
