package memol

import "strconv"

// Parser is a hand-written recursive-descent parser over the tokens
// produced by Lexer. It builds the AST defined in ast.go.
//
// Concrete grammar (EBNF-ish; `IDENT` is a dotted name like out.0.velocity):
//
//	file       = definition*
//	definition = "score" IDENT "=" scoreExpr ";"
//	           | "value" IDENT "=" valueExpr ";"
//
//	scoreExpr  = scorePrimary { "*" NUMBER | "@" ratio | "/" IDENT "=" scoreExpr }
//	scorePrimary =
//	      "(" scoreExpr* ")"                    sequence
//	    | "{" scoreExpr ("," scoreExpr)* "}"    parallel
//	    | "[" noteAtom+ "]"                     equal-weighted note list
//	    | "slice" "(" scoreExpr "," ratio "," ratio ")"
//	    | "filter" "(" valueExpr "," scoreExpr ")"
//	    | "transpose" "(" valueExpr "," scoreExpr ")"
//	    | "chord" "(" STRING ")"
//	    | IDENT                                 symbol reference
//
//	noteAtom   = noteCore "^"?                   trailing "^" ties into the next same-pitch note
//	noteCore   =
//	      "."                                   rest
//	    | "%"                                   repeat previous note
//	    | "o" ("+"|"-") NUMBER                  octave shift
//	    | "@" NUMBER? SYMBOL sign*              set current octave from a pitch, emits nothing
//	    | "(" noteAtom+ ")"                     chord (simultaneous)
//	    | "{" (noteAtom (":" NUMBER)?)+ "}"     weighted group
//	    | dir? NUMBER? SYMBOL sign*             pitch-class symbol lookup
//	dir  = "<" (lower) | ">" (upper)
//	sign = "+" (sharp) | "-" (flat), summed
//
//	valueExpr  = valuePrimary { "*" NUMBER | "@" ratio }
//	valuePrimary =
//	      "(" valueItem+ ")"                    literal track (each item a ramp leaf)
//	    | "seq" "(" valueExpr ("," valueExpr)* ")"
//	    | "branch" "(" valueExpr "," valueExpr "," valueExpr ")"
//	    | "add".."or" "(" valueExpr "," valueExpr ")"   binary ops, spelled out
//	    | IDENT                                 symbol or named value-track reference
//	valueItem  = ratio (".." ratio)?
//	           | "{" (valueItem (":" NUMBER)?)+ "}"
type Parser struct {
	lex  *Lexer
	path string
	tok  Token
}

func NewParser(path, src string) *Parser {
	p := &Parser{lex: NewLexer(path, src), path: path}
	p.tok = p.lex.Next()
	return p
}

func (p *Parser) advance() Token {
	t := p.tok
	p.tok = p.lex.Next()
	return t
}

func (p *Parser) errf(format string, args ...any) error {
	return newPosError(p.path, p.tok.Pos, format, args...)
}

func (p *Parser) expectSymbol(sym string) error {
	if p.tok.Kind != TokSymbol || p.tok.Text != sym {
		return p.errf("expected %q, found %q", sym, p.tok.Text)
	}
	p.advance()
	return nil
}

func (p *Parser) isSymbol(sym string) bool {
	return p.tok.Kind == TokSymbol && p.tok.Text == sym
}

func (p *Parser) isIdent(name string) bool {
	return p.tok.Kind == TokIdent && p.tok.Text == name
}

// ParseDefinition parses an entire memol source file into a Definition.
func ParseDefinition(path, src string) (*Definition, error) {
	p := NewParser(path, src)
	def := &Definition{
		Scores: map[string]*Ast[Score]{},
		Values: map[string]*valueTrackDef{},
	}
	for p.tok.Kind != TokEOF {
		switch {
		case p.isIdent("score"):
			p.advance()
			if p.tok.Kind != TokIdent {
				return nil, p.errf("expected definition name")
			}
			name := p.advance().Text
			if err := p.expectSymbol("="); err != nil {
				return nil, err
			}
			s, err := p.parseScoreExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
			def.Scores[name] = s
		case p.isIdent("value"):
			p.advance()
			if p.tok.Kind != TokIdent {
				return nil, p.errf("expected definition name")
			}
			name := p.advance().Text
			if err := p.expectSymbol("="); err != nil {
				return nil, err
			}
			v, err := p.parseValueExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
			def.Values[name] = &valueTrackDef{Path: path, Ast: v}
		default:
			return nil, p.errf("expected 'score' or 'value' definition, found %q", p.tok.Text)
		}
	}
	return def, nil
}

func (p *Parser) parseRatio() (Rat, error) {
	if p.tok.Kind != TokNumber {
		return Rat{}, p.errf("expected a number")
	}
	text := p.advance().Text
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Rat{}, newPosError(p.path, p.tok.Pos, "invalid number %q", text)
	}
	if p.isSymbol("/") {
		p.advance()
		if p.tok.Kind != TokNumber {
			return Rat{}, p.errf("expected denominator")
		}
		denText := p.advance().Text
		den, err := strconv.ParseInt(denText, 10, 64)
		if err != nil {
			return Rat{}, newPosError(p.path, p.tok.Pos, "invalid denominator %q", denText)
		}
		return NewRat(int64(f), den), nil
	}
	// decimal literal: convert exactly via a power-of-ten denominator.
	if idx := indexByte(text, '.'); idx >= 0 {
		frac := text[idx+1:]
		den := int64(1)
		for range frac {
			den *= 10
		}
		num, _ := strconv.ParseInt(text[:idx]+frac, 10, 64)
		return NewRat(num, den), nil
	}
	n, _ := strconv.ParseInt(text, 10, 64)
	return RatInt(n), nil
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// --- score grammar -------------------------------------------------------

func (p *Parser) parseScoreExpr() (*Ast[Score], error) {
	bgn := p.tok.Pos
	node, err := p.parseScorePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isSymbol("*"):
			p.advance()
			if p.tok.Kind != TokNumber {
				return nil, p.errf("expected repeat count")
			}
			n, _ := strconv.ParseInt(p.advance().Text, 10, 32)
			node = newAst(bgn, p.tok.Pos, Score(ScoreRepeat{Score: node, N: int32(n)}))
		case p.isSymbol("@"):
			p.advance()
			r, err := p.parseRatio()
			if err != nil {
				return nil, err
			}
			node = newAst(bgn, p.tok.Pos, Score(ScoreStretch{Score: node, Ratio: r}))
		case p.isSymbol("/"):
			p.advance()
			if p.tok.Kind != TokIdent || len(p.tok.Text) != 1 {
				return nil, p.errf("expected a single-character symbol name")
			}
			key := rune(p.advance().Text[0])
			if err := p.expectSymbol("="); err != nil {
				return nil, err
			}
			rhs, err := p.parseScoreExpr()
			if err != nil {
				return nil, err
			}
			node = newAst(bgn, p.tok.Pos, Score(ScoreWith{Lhs: node, Key: key, Rhs: rhs}))
		default:
			return node, nil
		}
	}
}

func (p *Parser) parseScorePrimary() (*Ast[Score], error) {
	bgn := p.tok.Pos
	switch {
	case p.isSymbol("("):
		p.advance()
		var items []*Ast[Score]
		for !p.isSymbol(")") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated sequence")
			}
			it, err := p.parseScoreExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, Score(ScoreSequence{Scores: items})), nil

	case p.isSymbol("{"):
		p.advance()
		var items []*Ast[Score]
		for {
			it, err := p.parseScoreExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			if p.isSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectSymbol("}"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Score(ScoreParallel{Scores: items})), nil

	case p.isSymbol("["):
		p.advance()
		var notes []*Ast[Note]
		for !p.isSymbol("]") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated note list")
			}
			n, err := p.parseNoteAtom()
			if err != nil {
				return nil, err
			}
			notes = append(notes, n)
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, Score(ScoreScore{Notes: notes})), nil

	case p.isIdent("slice"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		s, err := p.parseScoreExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		t0, err := p.parseRatio()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		t1, err := p.parseRatio()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Score(scoreSlice{Score: s, T0: t0, T1: t1})), nil

	case p.isIdent("filter"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		cond, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		then, err := p.parseScoreExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Score(scoreFilter{Cond: cond, Then: then})), nil

	case p.isIdent("transpose"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		n, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		s, err := p.parseScoreExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Score(scoreTranspose{N: n, Score: s})), nil

	case p.isIdent("chord"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		if p.tok.Kind != TokString {
			return nil, p.errf("expected a chord symbol string")
		}
		text := p.advance().Text
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Score(scoreChordSymbol{Text: text})), nil

	case p.tok.Kind == TokIdent:
		name := p.advance().Text
		return newAst(bgn, p.tok.Pos, Score(ScoreSymbol{Key: name})), nil
	}
	return nil, p.errf("expected a score expression, found %q", p.tok.Text)
}

func (p *Parser) parseNoteAtom() (*Ast[Note], error) {
	bgn := p.tok.Pos
	core, err := p.parseNoteCore()
	if err != nil {
		return nil, err
	}
	if p.isSymbol("^") {
		p.advance()
		core = newAst(bgn, p.tok.Pos, Note(NoteTie{Note: core}))
	}
	return core, nil
}

func (p *Parser) parseNoteCore() (*Ast[Note], error) {
	bgn := p.tok.Pos
	switch {
	case p.isSymbol("."):
		p.advance()
		return newAst(bgn, p.tok.Pos, Note(NoteRest{})), nil

	case p.isSymbol("%"):
		p.advance()
		return newAst(bgn, p.tok.Pos, Note(&NoteRepeat{})), nil

	case p.isIdent("o"):
		p.advance()
		sign := int32(1)
		switch {
		case p.isSymbol("+"):
			p.advance()
		case p.isSymbol("-"):
			p.advance()
			sign = -1
		default:
			return nil, p.errf("expected '+' or '-' after 'o'")
		}
		if p.tok.Kind != TokNumber {
			return nil, p.errf("expected octave count")
		}
		n, _ := strconv.ParseInt(p.advance().Text, 10, 32)
		return newAst(bgn, p.tok.Pos, Note(NoteOctave{Oct: sign * int32(n)})), nil

	case p.isSymbol("@"):
		p.advance()
		ord, sym, sign, err := p.parsePitchToken()
		if err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Note(NoteOctaveByNote{Sym: sym, Ord: ord, Sign: sign})), nil

	case p.isSymbol("("):
		p.advance()
		var notes []*Ast[Note]
		for !p.isSymbol(")") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated chord")
			}
			n, err := p.parseNoteAtom()
			if err != nil {
				return nil, err
			}
			notes = append(notes, n)
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, Note(NoteChord{Notes: notes})), nil

	case p.isSymbol("{"):
		p.advance()
		var items []NoteGroupItem
		for !p.isSymbol("}") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated group")
			}
			n, err := p.parseNoteAtom()
			if err != nil {
				return nil, err
			}
			weight := int32(1)
			if p.isSymbol(":") {
				p.advance()
				if p.tok.Kind != TokNumber {
					return nil, p.errf("expected group weight")
				}
				w, _ := strconv.ParseInt(p.advance().Text, 10, 32)
				weight = int32(w)
			}
			items = append(items, NoteGroupItem{Note: n, Weight: weight})
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, Note(NoteGroup{Notes: items})), nil

	default:
		dir, ord, sym, sign, err := p.parseDirectedPitchToken()
		if err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, Note(NoteLetter{Dir: dir, Sym: sym, Ord: ord, Sign: sign})), nil
	}
}

func (p *Parser) parseDirectedPitchToken() (dir Dir, ord int32, sym rune, sign int32, err error) {
	dir = DirUpper
	switch {
	case p.isSymbol("<"):
		p.advance()
		dir = DirLower
	case p.isSymbol(">"):
		p.advance()
		dir = DirUpper
	}
	ord, sym, sign, err = p.parsePitchToken()
	return
}

func (p *Parser) parsePitchToken() (ord int32, sym rune, sign int32, err error) {
	if p.tok.Kind == TokNumber {
		n, _ := strconv.ParseInt(p.advance().Text, 10, 32)
		ord = int32(n)
	}
	if p.tok.Kind != TokIdent || len(p.tok.Text) != 1 {
		return 0, 0, 0, p.errf("expected a single-character pitch symbol")
	}
	sym = rune(p.advance().Text[0])
	for {
		switch {
		case p.isSymbol("+"):
			p.advance()
			sign++
		case p.isSymbol("-"):
			p.advance()
			sign--
		default:
			return ord, sym, sign, nil
		}
	}
}

// --- value grammar --------------------------------------------------------

var valueBinaryOps = map[string]BinaryOp{
	"add": OpAdd, "sub": OpSub, "mul": OpMul, "div": OpDiv,
	"eq": OpEq, "ne": OpNe, "le": OpLe, "ge": OpGe, "lt": OpLt, "gt": OpGt, "or": OpOr,
}

func (p *Parser) parseValueExpr() (*Ast[ValueTrack], error) {
	bgn := p.tok.Pos
	node, err := p.parseValuePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isSymbol("*"):
			p.advance()
			if p.tok.Kind != TokNumber {
				return nil, p.errf("expected repeat count")
			}
			n, _ := strconv.ParseInt(p.advance().Text, 10, 32)
			node = newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackRepeat{Track: node, N: int32(n)}))
		case p.isSymbol("@"):
			p.advance()
			r, err := p.parseRatio()
			if err != nil {
				return nil, err
			}
			node = newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackStretch{Track: node, Ratio: r}))
		default:
			return node, nil
		}
	}
}

func (p *Parser) parseValuePrimary() (*Ast[ValueTrack], error) {
	bgn := p.tok.Pos
	switch {
	case p.isSymbol("("):
		p.advance()
		var items []*Ast[Value]
		for !p.isSymbol(")") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated value track")
			}
			it, err := p.parseValueItem()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackLiteral{Values: items})), nil

	case p.isIdent("seq"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		var items []*Ast[ValueTrack]
		for {
			it, err := p.parseValueExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			if p.isSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackSequence{Tracks: items})), nil

	case p.isIdent("branch"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		cond, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		then, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		els, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackBranch{Cond: cond, Then: then, Else: els})), nil

	case p.tok.Kind == TokIdent && isBinaryOpKeyword(p.tok.Text):
		op := valueBinaryOps[p.advance().Text]
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		lhs, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(","); err != nil {
			return nil, err
		}
		rhs, err := p.parseValueExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackBinaryOp{Lhs: lhs, Rhs: rhs, Op: op})), nil

	case p.tok.Kind == TokIdent:
		name := p.advance().Text
		return newAst(bgn, p.tok.Pos, ValueTrack(ValueTrackSymbol{Key: name})), nil
	}
	return nil, p.errf("expected a value expression, found %q", p.tok.Text)
}

func isBinaryOpKeyword(s string) bool {
	_, ok := valueBinaryOps[s]
	return ok
}

func (p *Parser) parseValueItem() (*Ast[Value], error) {
	bgn := p.tok.Pos
	if p.isSymbol("{") {
		p.advance()
		var items []ValueGroupItem
		for !p.isSymbol("}") {
			if p.tok.Kind == TokEOF {
				return nil, p.errf("unterminated value group")
			}
			it, err := p.parseValueItem()
			if err != nil {
				return nil, err
			}
			weight := int32(1)
			if p.isSymbol(":") {
				p.advance()
				if p.tok.Kind != TokNumber {
					return nil, p.errf("expected group weight")
				}
				w, _ := strconv.ParseInt(p.advance().Text, 10, 32)
				weight = int32(w)
			}
			items = append(items, ValueGroupItem{Value: it, Weight: weight})
		}
		p.advance()
		return newAst(bgn, p.tok.Pos, Value(ValueGroup{Items: items})), nil
	}

	v0, err := p.parseRatio()
	if err != nil {
		return nil, err
	}
	v1 := v0
	if p.isSymbol(".") {
		// ".." (a ramp to a second value) lexes as two consecutive '.' tokens.
		save := p.tok
		p.advance()
		if p.isSymbol(".") {
			p.advance()
			v1, err = p.parseRatio()
			if err != nil {
				return nil, err
			}
		} else {
			return nil, newPosError(p.path, save.Pos, "unexpected '.'")
		}
	}
	return newAst(bgn, p.tok.Pos, Value(ValueLine{V0: v0, V1: v1})), nil
}
