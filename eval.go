package memol

import "math"

// Evaluator walks a ValueIR tree and samples it at a point in time.
// Construct it with NewEvaluator or NewEvaluatorWithRandom; the zero value
// has no symbol table, so AddSymbol on it panics. Symbol overrides (for
// "note.len"/"note.cnt"/"note.nth" and any caller-supplied extras) are
// registered via AddSymbol.
type Evaluator struct {
	syms map[string]func(Rat) float64
	rng  *Random
}

// NewEvaluator returns an Evaluator with the builtin "gaussian" symbol
// bound to a fresh PRNG stream at NewRandom's fixed default seed.
func NewEvaluator() *Evaluator {
	return NewEvaluatorWithRandom(NewRandom())
}

// NewEvaluatorWithRandom is like NewEvaluator but lets the caller supply
// the PRNG stream "gaussian" draws from, so a whole generation pass can
// share one deterministic sequence.
func NewEvaluatorWithRandom(rng *Random) *Evaluator {
	e := &Evaluator{syms: map[string]func(Rat) float64{}, rng: rng}
	e.syms["gaussian"] = func(Rat) float64 { return e.rng.NextGauss() }
	return e
}

// AddSymbol registers (or overrides) a named value callback, e.g. binding
// "note.len"/"note.cnt"/"note.nth" to the enclosing note's measurements.
func (e *Evaluator) AddSymbol(name string, fn func(Rat) float64) {
	e.syms[name] = fn
}

// Eval samples ir at time t.
func (e *Evaluator) Eval(ir *ValueIR, t Rat) float64 {
	if ir == nil {
		return 0
	}
	switch ir.Kind {
	case IRLinear:
		ct := t
		if ct.Lt(ir.LT0) {
			ct = ir.LT0
		}
		if ct.Gt(ir.LT1) {
			ct = ir.LT1
		}
		if ir.LT1.Eq(ir.LT0) {
			return ir.V0.Float64()
		}
		frac := ct.Sub(ir.LT0).Div(ir.LT1.Sub(ir.LT0)).Float64()
		return ir.V0.Float64() + (ir.V1.Float64()-ir.V0.Float64())*frac

	case IRSymbol:
		if fn, ok := e.syms[ir.Sym]; ok {
			return fn(t)
		}
		return 0

	case IRSequence:
		if len(ir.Seq) == 0 {
			return 0
		}
		i := bsearchBoundary(ir.Seq, func(s seqEntry) bool { return s.T0.Le(t) })
		if i == 0 {
			i = 1
		}
		return e.Eval(ir.Seq[i-1].IR, t)

	case IRBinaryOp:
		l := e.Eval(ir.Lhs, t)
		r := e.Eval(ir.Rhs, t)
		return evalBinaryOp(ir.Op, l, r)

	case IRBranch:
		c := e.Eval(ir.Cond, t)
		then := e.Eval(ir.Then, t)
		els := e.Eval(ir.Else, t)
		return c*then + (1-c)*els
	}
	return 0
}

func evalBinaryOp(op BinaryOp, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		return l / r
	case OpEq:
		return boolF(l == r)
	case OpNe:
		return boolF(l != r)
	case OpLe:
		return boolF(l <= r)
	case OpGe:
		return boolF(l >= r)
	case OpLt:
		return boolF(l < r)
	case OpGt:
		return boolF(l > r)
	case OpOr:
		return 1 - (1-l)*(1-r)
	}
	return math.NaN()
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
