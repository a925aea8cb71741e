package memol

import "fmt"

// ValueIR is the tagged tree a value track compiles to. Exactly one of the
// concrete fields is populated per Kind.
type ValueIR struct {
	Kind ValueIRKind

	// Linear
	LT0, LT1, V0, V1 Rat

	// Symbol
	Sym string

	// Sequence: irs sorted by T0 ascending.
	Seq []seqEntry

	// BinaryOp
	Lhs, Rhs *ValueIR
	Op       BinaryOp

	// Branch
	Cond, Then, Else *ValueIR
}

type seqEntry struct {
	IR *ValueIR
	T0 Rat
}

type ValueIRKind int

const (
	IRLinear ValueIRKind = iota
	IRSymbol
	IRSequence
	IRBinaryOp
	IRBranch
)

// builtinValueSymbols are the names that compile to an IRSymbol leaf when
// no value track of the same name is defined; a defined track of that name
// takes precedence.
var builtinValueSymbols = map[string]bool{
	"gaussian": true, "note.len": true, "note.cnt": true, "note.nth": true,
}

// ValueGenerator walks a Definition's value-track AST into ValueIR trees.
type ValueGenerator struct {
	defs *Definition
}

func NewValueGenerator(defs *Definition) *ValueGenerator {
	return &ValueGenerator{defs: defs}
}

// Generate compiles the named value-track definition, or returns (nil, nil)
// if no such definition exists.
func (g *ValueGenerator) Generate(key string) (*ValueIR, error) {
	def, ok := g.defs.Values[key]
	if !ok {
		return nil, nil
	}
	span := valueSpan{T0: RatZero(), T1: RatOne(), Path: def.Path}
	ir, _, err := g.generateTrack(def.Ast, &span)
	return ir, err
}

// generateTrackAt compiles an inline value expression (used by the score
// grammar's filter/transpose combinators) under the same window a named
// value track gets (starting at time 0, one unit per step), not the window
// of the enclosing score node.
func (g *ValueGenerator) generateTrackAt(path string, track *Ast[ValueTrack]) (*ValueIR, error) {
	span := valueSpan{T0: RatZero(), T1: RatOne(), Path: path}
	ir, _, err := g.generateTrack(track, &span)
	return ir, err
}

// ConstValueIR returns a ValueIR that evaluates to v at every point in
// time, for callers that want a default value track without a named
// definition to fall back on.
func ConstValueIR(v float64) *ValueIR {
	c := RatInt(int64(v))
	if float64(int64(v)) != v {
		c = NewRat(int64(v*1e9), 1e9)
	}
	return &ValueIR{Kind: IRLinear, LT0: RatZero(), LT1: RatInf(), V0: c, V1: c}
}

// SymbolValueIR returns a ValueIR that defers to the named builtin symbol
// (e.g. "note.len") at eval time, for callers that want a default value
// track bound to a per-note measurement rather than a constant.
func SymbolValueIR(sym string) *ValueIR {
	return &ValueIR{Kind: IRSymbol, Sym: sym}
}

type valueSpan struct {
	T0, T1 Rat
	Path   string
}

func (g *ValueGenerator) generateTrack(track *Ast[ValueTrack], span *valueSpan) (*ValueIR, Rat, error) {
	switch n := track.Node.(type) {
	case ValueTrackLiteral:
		var seq []seqEntry
		for i, v := range n.Values {
			child := *span
			dt := span.T1.Sub(span.T0)
			child.T0 = span.T0.Add(dt.MulInt(int64(i)))
			child.T1 = span.T1.Add(dt.MulInt(int64(i)))
			if err := g.generateValue(v, &child, &seq); err != nil {
				return nil, Rat{}, err
			}
		}
		t1 := span.T0.Add(span.T1.Sub(span.T0).MulInt(int64(len(n.Values))))
		return &ValueIR{Kind: IRSequence, Seq: seq}, t1, nil

	case ValueTrackSymbol:
		if def, ok := g.defs.Values[n.Key]; ok {
			child := *span
			child.Path = def.Path
			return g.generateTrack(def.Ast, &child)
		}
		if builtinValueSymbols[n.Key] {
			return &ValueIR{Kind: IRSymbol, Sym: n.Key}, span.T0, nil
		}
		return nil, Rat{}, newPosError(span.Path, track.Bgn, "undefined symbol %q", n.Key)

	case ValueTrackSequence:
		var seq []seqEntry
		t := span.T0
		for _, s := range n.Tracks {
			child := *span
			child.T0 = t
			child.T1 = t.Add(span.T1.Sub(span.T0))
			ir, t1, err := g.generateTrack(s, &child)
			if err != nil {
				return nil, Rat{}, err
			}
			seq = append(seq, seqEntry{IR: ir, T0: t})
			t = t1
		}
		return &ValueIR{Kind: IRSequence, Seq: seq}, t, nil

	case ValueTrackRepeat:
		var seq []seqEntry
		t := span.T0
		for i := int32(0); i < n.N; i++ {
			child := *span
			child.T0 = t
			child.T1 = t.Add(span.T1.Sub(span.T0))
			ir, t1, err := g.generateTrack(n.Track, &child)
			if err != nil {
				return nil, Rat{}, err
			}
			seq = append(seq, seqEntry{IR: ir, T0: t})
			t = t1
		}
		return &ValueIR{Kind: IRSequence, Seq: seq}, t, nil

	case ValueTrackStretch:
		child := *span
		child.T1 = span.T0.Add(n.Ratio.Mul(span.T1.Sub(span.T0)))
		return g.generateTrack(n.Track, &child)

	case ValueTrackBinaryOp:
		lhs, tl, err := g.generateTrack(n.Lhs, span)
		if err != nil {
			return nil, Rat{}, err
		}
		rhs, tr, err := g.generateTrack(n.Rhs, span)
		if err != nil {
			return nil, Rat{}, err
		}
		t := tl
		if tr.Gt(t) {
			t = tr
		}
		return &ValueIR{Kind: IRBinaryOp, Lhs: lhs, Rhs: rhs, Op: n.Op}, t, nil

	case ValueTrackBranch:
		cond, tc, err := g.generateTrack(n.Cond, span)
		if err != nil {
			return nil, Rat{}, err
		}
		then, tt, err := g.generateTrack(n.Then, span)
		if err != nil {
			return nil, Rat{}, err
		}
		els, te, err := g.generateTrack(n.Else, span)
		if err != nil {
			return nil, Rat{}, err
		}
		t := tc
		if tt.Gt(t) {
			t = tt
		}
		if te.Gt(t) {
			t = te
		}
		return &ValueIR{Kind: IRBranch, Cond: cond, Then: then, Else: els}, t, nil
	}
	return nil, Rat{}, fmt.Errorf("memol: unhandled value track node %T", track.Node)
}

func (g *ValueGenerator) generateValue(v *Ast[Value], span *valueSpan, dst *[]seqEntry) error {
	switch n := v.Node.(type) {
	case ValueLine:
		*dst = append(*dst, seqEntry{
			IR: &ValueIR{Kind: IRLinear, LT0: span.T0, LT1: span.T1, V0: n.V0, V1: n.V1},
			T0: span.T0,
		})
		return nil
	case ValueGroup:
		var tot int32
		for _, it := range n.Items {
			tot += it.Weight
		}
		acc := int32(0)
		dt := span.T1.Sub(span.T0)
		for _, it := range n.Items {
			child := *span
			child.T0 = span.T0.Add(dt.Mul(NewRat(int64(acc), int64(tot))))
			child.T1 = span.T0.Add(dt.Mul(NewRat(int64(acc+it.Weight), int64(tot))))
			if err := g.generateValue(it.Value, &child, dst); err != nil {
				return err
			}
			acc += it.Weight
		}
		return nil
	}
	return fmt.Errorf("memol: unhandled value node %T", v.Node)
}
