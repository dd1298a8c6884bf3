package layout

// TokenSource 是单向游标，支持 LIFO 回退与结束检测。
type TokenSource interface {
	// Next 返回下一个单元；流结束时 ok 为 false。
	Next() (tok Token, ok bool)
	AtEnd() bool
	// Push 把单元压回游标前端，后压入者先被取出。
	Push(tok Token)
	// Verbatim 报告当前位置是否处于逐字模式。
	Verbatim() bool
}

// Queue 在一个已分好词的切片上实现 TokenSource。
// 游标只属于一个 LineBuilder，不支持并发访问。
type Queue struct {
	tokens   []Token
	pos      int
	pushed   []Token
	verbatim bool
}

var _ TokenSource = (*Queue)(nil)

// NewQueue 持有 tokens 的所有权，调用方之后不应再修改该切片。
func NewQueue(tokens []Token) *Queue {
	return &Queue{tokens: tokens}
}

func (q *Queue) Next() (Token, bool) {
	var tok Token
	if n := len(q.pushed); n > 0 {
		tok = q.pushed[n-1]
		q.pushed = q.pushed[:n-1]
	} else if q.pos < len(q.tokens) {
		tok = q.tokens[q.pos]
		q.pos++
	} else {
		return Token{}, false
	}
	q.verbatim = tok.Verbatim
	return tok, true
}

func (q *Queue) AtEnd() bool {
	return len(q.pushed) == 0 && q.pos >= len(q.tokens)
}

func (q *Queue) Push(tok Token) {
	q.pushed = append(q.pushed, tok)
}

// Verbatim 取最近一次 Next 返回的单元的模式，回退后依然与流位置一致。
func (q *Queue) Verbatim() bool { return q.verbatim }
