package memol

// Ast wraps a parsed node with the byte-offset span it was parsed from, so
// that later compiler passes can report errors against the original source
// text.
type Ast[T any] struct {
	Node T
	Bgn  int
	End  int
}

func newAst[T any](bgn, end int, node T) *Ast[T] {
	return &Ast[T]{Node: node, Bgn: bgn, End: end}
}

// Definition is a whole parsed score file: every named score track and
// value track it declares.
type Definition struct {
	Scores map[string]*Ast[Score]
	Values map[string]*valueTrackDef
}

// valueTrackDef pairs a value track with the source path it was declared
// in, since `with`-bound symbols can reach across files via imports in a
// fuller implementation; kept as a struct to mirror the (path, ast) pairs
// the original compiler threads through value-track generation.
type valueTrackDef struct {
	Path string
	Ast  *Ast[ValueTrack]
}

// Dir indicates which direction an implicit octave jump should resolve a
// note letter toward the previous pitch.
type Dir int

const (
	DirLower Dir = iota
	DirUpper
)

// Note is the sum type for note-tree nodes.
type Note interface {
	isNote()
}

type NoteLetter struct {
	Dir  Dir
	Sym  rune
	Ord  int32
	Sign int32
}

type NoteRest struct{}

// NoteRepeat resolves to whatever note it was last resolved to ("rn" in
// the original): ResolvedTo is filled in lazily by scoregen and memoized so
// that repeated uses of "%" within one group share the same resolution.
type NoteRepeat struct {
	ResolvedTo *Ast[Note]
}

type NoteOctave struct {
	Oct int32
}

type NoteOctaveByNote struct {
	Sym  rune
	Ord  int32
	Sign int32
}

type NoteChord struct {
	Notes []*Ast[Note]
}

// NoteGroup holds a sequence of (note, weight) pairs sharing a span,
// subdivided proportionally to each weight.
type NoteGroup struct {
	Notes []NoteGroupItem
}

type NoteGroupItem struct {
	Note   *Ast[Note]
	Weight int32
}

type NoteTie struct {
	Note *Ast[Note]
}

func (NoteLetter) isNote()       {}
func (NoteRest) isNote()         {}
func (*NoteRepeat) isNote()      {}
func (NoteOctave) isNote()       {}
func (NoteOctaveByNote) isNote() {}
func (NoteChord) isNote()        {}
func (NoteGroup) isNote()        {}
func (NoteTie) isNote()          {}

// Score is the sum type for score-tree nodes.
type Score interface {
	isScore()
}

type ScoreScore struct {
	Notes []*Ast[Note]
}

type ScoreSymbol struct {
	Key string
}

// ScoreWith binds Rhs under the symbol Key while evaluating Lhs.
type ScoreWith struct {
	Lhs *Ast[Score]
	Key rune
	Rhs *Ast[Score]
}

type ScoreParallel struct {
	Scores []*Ast[Score]
}

type ScoreSequence struct {
	Scores []*Ast[Score]
}

type ScoreRepeat struct {
	Score *Ast[Score]
	N     int32
}

type ScoreStretch struct {
	Score *Ast[Score]
	Ratio Rat
}

func (ScoreScore) isScore()    {}
func (ScoreSymbol) isScore()   {}
func (ScoreWith) isScore()     {}
func (ScoreParallel) isScore() {}
func (ScoreSequence) isScore() {}
func (ScoreRepeat) isScore()   {}
func (ScoreStretch) isScore()  {}

// scoreSlice keeps only the notes generated by Score whose t0 lies in
// [span.t0, span.t0+(T1-T0)) once regenerated under a span shifted back by
// T0, so the part of Score from T0 to T1 lands at span.t0; it supplements
// the combinators ast.rs defines with the windowed excerpt operation
// spec.md's score grammar calls for.
type scoreSlice struct {
	Score  *Ast[Score]
	T0, T1 Rat
}

// scoreFilter keeps notes from Then whose Cond evaluates to >= 0.5 at the
// note's t0.
type scoreFilter struct {
	Cond *Ast[ValueTrack]
	Then *Ast[Score]
}

// scoreTranspose adds round(N(t0)) semitones to every flat note Score
// produces.
type scoreTranspose struct {
	N     *Ast[ValueTrack]
	Score *Ast[Score]
}

// scoreChordSymbol parses Text as a chord symbol (§4.2), voices it near
// middle C (§4.3), and emits each pitch as a flat note sharing the span.
type scoreChordSymbol struct {
	Text string
}

func (scoreSlice) isScore()       {}
func (scoreFilter) isScore()      {}
func (scoreTranspose) isScore()   {}
func (scoreChordSymbol) isScore() {}

// Value is the sum type for value-literal nodes.
type Value interface {
	isValue()
}

// ValueLine is a single constant-or-linear-ramp segment: a line from V0 to
// V1 across the segment's span.
type ValueLine struct {
	V0, V1 Rat
}

// ValueGroupItem pairs a value segment (or nested group) with its relative
// weight within the enclosing group's span.
type ValueGroupItem struct {
	Value  *Ast[Value]
	Weight int32
}

type ValueGroup struct {
	Items []ValueGroupItem
}

func (ValueLine) isValue()  {}
func (ValueGroup) isValue() {}

// BinaryOp enumerates the operators usable inside a value expression.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLe
	OpGe
	OpLt
	OpGt
	OpOr
)

// ValueTrack is the sum type for value-track nodes.
type ValueTrack interface {
	isValueTrack()
}

type ValueTrackLiteral struct {
	Values []*Ast[Value]
}

type ValueTrackSymbol struct {
	Key string
}

type ValueTrackSequence struct {
	Tracks []*Ast[ValueTrack]
}

type ValueTrackRepeat struct {
	Track *Ast[ValueTrack]
	N     int32
}

type ValueTrackStretch struct {
	Track *Ast[ValueTrack]
	Ratio Rat
}

type ValueTrackBinaryOp struct {
	Lhs, Rhs *Ast[ValueTrack]
	Op       BinaryOp
}

type ValueTrackBranch struct {
	Cond, Then, Else *Ast[ValueTrack]
}

func (ValueTrackLiteral) isValueTrack()  {}
func (ValueTrackSymbol) isValueTrack()   {}
func (ValueTrackSequence) isValueTrack() {}
func (ValueTrackRepeat) isValueTrack()   {}
func (ValueTrackStretch) isValueTrack()  {}
func (ValueTrackBinaryOp) isValueTrack() {}
func (ValueTrackBranch) isValueTrack()   {}
