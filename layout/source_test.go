package layout

import "testing"

func TestQueuePushIsLIFO(t *testing.T) {
	q := NewQueue([]Token{word("c", 1)})
	q.Push(word("b", 1))
	q.Push(word("a", 1))
	if q.AtEnd() {
		t.Fatalf("回退栈非空时不应位于末尾")
	}
	for _, want := range []string{"a", "b", "c"} {
		tok, ok := q.Next()
		if !ok || tok.Text != want {
			t.Fatalf("want %q, got %q ok=%v", want, tok.Text, ok)
		}
	}
	if !q.AtEnd() {
		t.Fatalf("应位于末尾")
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("末尾之后不应再有单元")
	}
}

func TestQueueVerbatimFollowsLastToken(t *testing.T) {
	v := word("pre", 1)
	v.Verbatim = true
	q := NewQueue([]Token{word("plain", 1), v})
	q.Next()
	if q.Verbatim() {
		t.Fatalf("普通单元后不应处于逐字模式")
	}
	tok, _ := q.Next()
	if !q.Verbatim() {
		t.Fatalf("逐字单元后应处于逐字模式")
	}
	q.Push(tok)
	q.Push(word("plain", 1))
	q.Next()
	if q.Verbatim() {
		t.Fatalf("回退后模式应跟随实际取出的单元")
	}
}
