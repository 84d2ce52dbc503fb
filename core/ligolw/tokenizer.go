package ligolw

// NextToken locates the token that starts at or after cursor in a
// delimiter-separated Stream payload.
//
// Leading whitespace is skipped. A double-quoted token runs to the closing
// quote, delimiters inside the quotes included, and the quotes are not part
// of [start, end). A delimiter in token position yields an empty token.
// Otherwise the token runs to the next whitespace or delimiter. The
// delimiter and any whitespace after it are then consumed and next is the
// start of the following token.
//
// The end of the payload is reached when next == len(text). A token
// requested at the end of the payload is empty.
func NextToken(text string, cursor int, delim byte) (start, end, next int) {
	n := len(text)
	c := cursor
	for c < n && isSpace(text[c]) && text[c] != delim && text[c] != '"' {
		c++
	}

	switch {
	case c < n && text[c] == '"':
		c++
		start = c
		for c < n && text[c] != '"' {
			c++
		}
		end = c
		if c < n {
			c++
		}
		c = skipSpace(text, c, delim)

	case c == n || text[c] == delim:
		start, end = c, c

	default:
		start = c
		for c++; c < n && !isSpace(text[c]) && text[c] != delim; c++ {
		}
		end = c
		c = skipSpace(text, c, delim)
	}

	if c < n && text[c] == delim {
		c++
	}
	return start, end, skipSpace(text, c, delim)
}

func skipSpace(text string, c int, delim byte) int {
	for c < len(text) && isSpace(text[c]) && text[c] != delim {
		c++
	}
	return c
}

// Tokenizer walks a Stream payload one token at a time.
type Tokenizer struct {
	text  string
	pos   int
	delim byte
}

// NewTokenizer returns a Tokenizer positioned at the start of text.
func NewTokenizer(text string, delim byte) *Tokenizer {
	return &Tokenizer{text: text, delim: delim}
}

// Next returns the next token. The result is a substring of the payload.
func (t *Tokenizer) Next() string {
	start, end, next := NextToken(t.text, t.pos, t.delim)
	t.pos = next
	return t.text[start:end]
}

// Done reports whether the payload is exhausted.
func (t *Tokenizer) Done() bool {
	return t.pos >= len(t.text)
}

// Offset returns the byte offset of the next token.
func (t *Tokenizer) Offset() int {
	return t.pos
}
