package memol

import "strings"

// TokenKind enumerates the lexical classes produced by the lexer.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokNumber
	TokString
	TokSymbol // a single punctuation rune: ( ) { } [ ] = / * @ ^ % . , | : ? <sigils>
)

// Token is one lexeme together with the byte offset it starts at, used for
// diagnostics by errors.go.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Lexer tokenizes memol score source text. It strips `/*...*/` block
// comments and `//` line comments while preserving every newline so that
// byte offsets recorded for later tokens still resolve to the correct
// source line in error messages, following the forward-scanning idiom the
// teacher uses to walk MOD/S3M chunk data a byte at a time.
type Lexer struct {
	src  string
	pos  int
	path string
}

func NewLexer(path, src string) *Lexer {
	return &Lexer{src: stripComments(src), pos: 0, path: path}
}

// stripComments replaces the body of every comment with spaces, keeping
// newlines intact, so token positions in the result line up with the
// original source.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	i := 0
	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			j := strings.Index(src[i+2:], "*/")
			var end int
			if j < 0 {
				end = len(src)
			} else {
				end = i + 2 + j + 2
			}
			for k := i; k < end; k++ {
				if src[k] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
			i = end
		case strings.HasPrefix(src[i:], "//"):
			j := strings.IndexByte(src[i:], '\n')
			var end int
			if j < 0 {
				end = len(src)
			} else {
				end = i + j
			}
			for k := i; k < end; k++ {
				b.WriteByte(' ')
			}
			i = end
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdentCont additionally allows '.' mid-identifier so dotted names like
// note.len lex as one token; a leading '.' is never an identifier, since
// that's the rest/ramp symbol handled by parseNoteCore/parseValueItem.
func isIdentCont(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

const symbolRunes = "(){}[]=/*@^%.|:?,+-#'\""

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	save := l.pos
	t := l.Next()
	l.pos = save
	return t
}

// Next consumes and returns the next token.
func (l *Lexer) Next() Token {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Pos: l.pos}
	}

	start := l.pos
	c := l.src[l.pos]

	if isDigit(c) {
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		// a single '.' followed by a digit is a decimal point; "0..1" (a
		// ramp) must leave both dots for the parser to see separately.
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
		return Token{Kind: TokNumber, Text: l.src[start:l.pos], Pos: start}
	}

	if c == '"' {
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.pos++
		}
		text := l.src[start+1 : l.pos]
		if l.pos < len(l.src) {
			l.pos++ // closing quote
		}
		return Token{Kind: TokString, Text: text, Pos: start}
	}

	if isIdentStart(c) {
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokIdent, Text: l.src[start:l.pos], Pos: start}
	}

	if strings.IndexByte(symbolRunes, c) >= 0 {
		l.pos++
		return Token{Kind: TokSymbol, Text: string(c), Pos: start}
	}

	// unknown byte: skip it as a one-rune symbol so the parser can report
	// a precise error rather than the lexer silently dropping input.
	l.pos++
	return Token{Kind: TokSymbol, Text: string(c), Pos: start}
}

// Pos returns the lexer's current byte offset, for error reporting before
// any token has been consumed.
func (l *Lexer) Pos() int { return l.pos }
