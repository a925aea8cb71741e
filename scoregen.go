package memol

import "fmt"

// FlatNote is one entry of a score IR: a timed, possibly-rest note.
type FlatNote struct {
	T0, T1 Rat
	NNum   *int32 // nil encodes a rest placeholder.
}

// ScoreIR is the flat, unordered sequence of notes a score compiles to.
// The MIDI assembler is responsible for sorting and pairing note-on/off.
type ScoreIR struct {
	Notes []FlatNote
}

// scoreSpan is the immutable context threaded through score generation: the
// time window a node's children subdivide, whether the node is under a
// tie, and the symbol table in scope for pitch lookups.
type scoreSpan struct {
	T0, T1 Rat
	Tied   bool
	Syms   map[rune][]FlatNote
}

// scoreState is the mutable register carried across sibling notes within
// one Score node: the octave register, the last resolved note (for "%"),
// and in-flight ties keyed by resolved pitch.
type scoreState struct {
	NNum int32
	Note *Ast[Note]
	Ties map[int32]Rat
}

// defaultPitchSyms is the built-in "_" symbol: the diatonic set spanning
// all time, canonical note numbers for A..G. There is no "*" alias.
func defaultPitchSyms() map[rune][]FlatNote {
	open := func(n int32) FlatNote { return FlatNote{T0: RatZero(), T1: RatInf(), NNum: &n} }
	return map[rune][]FlatNote{
		'_': {open(69), open(71), open(60), open(62), open(64), open(65), open(67)},
	}
}

// ScoreGenerator walks a Definition's score AST into flat note sequences.
type ScoreGenerator struct {
	defs *Definition
}

func NewScoreGenerator(defs *Definition) *ScoreGenerator {
	return &ScoreGenerator{defs: defs}
}

// Generate compiles the named score definition, or returns (nil, nil) if no
// such definition exists.
func (g *ScoreGenerator) Generate(path, key string) (*ScoreIR, error) {
	s, ok := g.defs.Scores[key]
	if !ok {
		return nil, nil
	}
	span := scoreSpan{T0: RatZero(), T1: RatOne(), Syms: defaultPitchSyms()}
	dst := &ScoreIR{}
	if _, err := g.generateScore(path, s, &span, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func (g *ScoreGenerator) generateScore(path string, score *Ast[Score], span *scoreSpan, dst *ScoreIR) (Rat, error) {
	switch n := score.Node.(type) {
	case ScoreScore:
		state := &scoreState{NNum: 60, Ties: map[int32]Rat{}}
		for i, note := range n.Notes {
			child := *span
			child.T0 = span.T0.Add(span.T1.Sub(span.T0).MulInt(int64(i)))
			child.T1 = span.T1.Add(span.T1.Sub(span.T0).MulInt(int64(i)))
			if err := g.generateNote(path, note, &child, state, dst); err != nil {
				return Rat{}, err
			}
		}
		if len(state.Ties) != 0 {
			return Rat{}, newPosError(path, score.End, "unpaired tie")
		}
		return span.T0.Add(span.T1.Sub(span.T0).MulInt(int64(len(n.Notes)))), nil

	case ScoreSymbol:
		s, ok := g.defs.Scores[n.Key]
		if !ok {
			return Rat{}, newPosError(path, score.Bgn, "undefined symbol %q", n.Key)
		}
		return g.generateScore(path, s, span, dst)

	case ScoreWith:
		dstRhs := &ScoreIR{}
		if _, err := g.generateScore(path, n.Rhs, span, dstRhs); err != nil {
			return Rat{}, err
		}
		syms := make(map[rune][]FlatNote, len(span.Syms)+1)
		for k, v := range span.Syms {
			syms[k] = v
		}
		syms[n.Key] = dstRhs.Notes
		child := *span
		child.Syms = syms
		return g.generateScore(path, n.Lhs, &child, dst)

	case ScoreParallel:
		t := span.T0
		for _, s := range n.Scores {
			end, err := g.generateScore(path, s, span, dst)
			if err != nil {
				return Rat{}, err
			}
			if end.Gt(t) {
				t = end
			}
		}
		return t, nil

	case ScoreSequence:
		t := span.T0
		for _, s := range n.Scores {
			child := *span
			child.T0 = t
			child.T1 = t.Add(span.T1.Sub(span.T0))
			end, err := g.generateScore(path, s, &child, dst)
			if err != nil {
				return Rat{}, err
			}
			t = end
		}
		return t, nil

	case ScoreRepeat:
		t := span.T0
		for i := int32(0); i < n.N; i++ {
			child := *span
			child.T0 = t
			child.T1 = t.Add(span.T1.Sub(span.T0))
			end, err := g.generateScore(path, n.Score, &child, dst)
			if err != nil {
				return Rat{}, err
			}
			t = end
		}
		return t, nil

	case ScoreStretch:
		child := *span
		child.T1 = span.T0.Add(n.Ratio.Mul(span.T1.Sub(span.T0)))
		return g.generateScore(path, n.Score, &child, dst)

	case scoreSlice:
		scratch := &ScoreIR{}
		child := *span
		child.T0 = span.T0.Sub(n.T0)
		child.T1 = span.T1.Sub(n.T0)
		if _, err := g.generateScore(path, n.Score, &child, scratch); err != nil {
			return Rat{}, err
		}
		hi := span.T0.Add(n.T1.Sub(n.T0))
		for _, fn := range scratch.Notes {
			if fn.T0.Ge(span.T0) && fn.T0.Lt(hi) {
				dst.Notes = append(dst.Notes, fn)
			}
		}
		return hi, nil

	case scoreFilter:
		scratch := &ScoreIR{}
		end, err := g.generateScore(path, n.Then, span, scratch)
		if err != nil {
			return Rat{}, err
		}
		vg := NewValueGenerator(g.defs)
		ir, err := vg.generateTrackAt(path, n.Cond)
		if err != nil {
			return Rat{}, err
		}
		ev := NewEvaluator()
		for _, fn := range scratch.Notes {
			if ev.Eval(ir, fn.T0) >= 0.5 {
				dst.Notes = append(dst.Notes, fn)
			}
		}
		return end, nil

	case scoreTranspose:
		scratch := &ScoreIR{}
		end, err := g.generateScore(path, n.Score, span, scratch)
		if err != nil {
			return Rat{}, err
		}
		vg := NewValueGenerator(g.defs)
		ir, err := vg.generateTrackAt(path, n.N)
		if err != nil {
			return Rat{}, err
		}
		ev := NewEvaluator()
		for _, fn := range scratch.Notes {
			if fn.NNum != nil {
				shift := int32(roundFloat(ev.Eval(ir, fn.T0)))
				nn := *fn.NNum + shift
				fn.NNum = &nn
			}
			dst.Notes = append(dst.Notes, fn)
		}
		return end, nil

	case scoreChordSymbol:
		_, notes := ParseChord(n.Text)
		voiced := notes
		if len(notes) > 1 {
			voiced = VoiceClosedWithCenter(notes, 60)
		}
		for _, p := range voiced {
			pp := int32(p)
			if span.Tied {
				continue // a bare chord symbol cannot itself be tied across a boundary.
			}
			dst.Notes = append(dst.Notes, FlatNote{T0: span.T0, T1: span.T1, NNum: &pp})
		}
		return span.T1, nil

	default:
		return Rat{}, fmt.Errorf("memol: unhandled score node %T", n)
	}
}

func (g *ScoreGenerator) generateNote(path string, note *Ast[Note], span *scoreSpan, state *scoreState, dst *ScoreIR) error {
	switch n := note.Node.(type) {
	case NoteLetter:
		nnum, err := g.getNNum(path, note, span, n.Sym, n.Ord)
		if err != nil {
			return err
		}
		if nnum == nil {
			dst.Notes = append(dst.Notes, FlatNote{T0: span.T0, T1: span.T1, NNum: nil})
			return nil
		}
		pitch := int32(idiv(int64(state.NNum), 12))*12 + int32(imod(int64(*nnum+n.Sign), 12))
		switch n.Dir {
		case DirLower:
			if pitch > state.NNum {
				pitch -= 12
			}
		case DirUpper:
			if pitch < state.NNum {
				pitch += 12
			}
		}
		t0 := span.T0
		if v, ok := state.Ties[pitch]; ok {
			t0 = v
			delete(state.Ties, pitch)
		}
		if span.Tied {
			state.Ties[pitch] = t0
		} else {
			dst.Notes = append(dst.Notes, FlatNote{T0: t0, T1: span.T1, NNum: &pitch})
		}
		state.NNum = pitch
		state.Note = note
		return nil

	case NoteRest:
		dst.Notes = append(dst.Notes, FlatNote{T0: span.T0, T1: span.T1, NNum: nil})
		return nil

	case *NoteRepeat:
		rn := n.ResolvedTo
		if rn == nil {
			rn = state.Note
			if rn == nil {
				return newPosError(path, note.Bgn, "previous note does not exist")
			}
			n.ResolvedTo = rn
		}
		return g.generateNote(path, rn, span, state, dst)

	case NoteOctave:
		state.NNum += n.Oct * 12
		return nil

	case NoteOctaveByNote:
		nnum, err := g.getNNum(path, note, span, n.Sym, n.Ord)
		if err != nil {
			return err
		}
		if nnum != nil {
			state.NNum = *nnum + n.Sign
		}
		return nil

	case NoteChord:
		var delTies, newTiesK []int32
		var newTiesV []Rat
		baseNNum := state.NNum
		for i, child := range n.Notes {
			s := &scoreState{NNum: state.NNum, Note: state.Note, Ties: map[int32]Rat{}}
			for k, v := range state.Ties {
				s.Ties[k] = v
			}
			if err := g.generateNote(path, child, span, s, dst); err != nil {
				return err
			}
			for k := range state.Ties {
				if v, ok := s.Ties[k]; !ok || !v.Lt(span.T0) {
					delTies = append(delTies, k)
				}
			}
			for k, v := range s.Ties {
				if v.Ge(span.T0) {
					newTiesK = append(newTiesK, k)
					newTiesV = append(newTiesV, v)
				}
			}
			if i == 0 {
				baseNNum = s.NNum
			}
		}
		state.NNum = baseNNum
		state.Note = note
		for _, k := range delTies {
			if _, ok := state.Ties[k]; !ok {
				return newPosError(path, note.Bgn, "unpaired tie")
			}
			delete(state.Ties, k)
		}
		for i, k := range newTiesK {
			if _, ok := state.Ties[k]; ok {
				return newPosError(path, note.End, "unpaired tie")
			}
			state.Ties[k] = newTiesV[i]
		}
		return nil

	case NoteGroup:
		var tot int32
		for _, it := range n.Notes {
			tot += it.Weight
		}
		if tot == 0 {
			return newPosError(path, note.End, "zero length group")
		}
		acc := int32(0)
		dt := span.T1.Sub(span.T0)
		for _, it := range n.Notes {
			child := *span
			child.T0 = span.T0.Add(dt.Mul(NewRat(int64(acc), int64(tot))))
			child.T1 = span.T0.Add(dt.Mul(NewRat(int64(acc+it.Weight), int64(tot))))
			child.Tied = acc+it.Weight == tot && span.Tied // only the last slot carries the tie onward.
			if err := g.generateNote(path, it.Note, &child, state, dst); err != nil {
				return err
			}
			acc += it.Weight
		}
		return nil

	case NoteTie:
		child := *span
		child.Tied = true
		return g.generateNote(path, n.Note, &child, state, dst)

	default:
		return fmt.Errorf("memol: unhandled note node %T", n)
	}
}

func (g *ScoreGenerator) getNNum(path string, note *Ast[Note], span *scoreSpan, sym rune, ord int32) (*int32, error) {
	fs, ok := span.Syms[sym]
	if !ok {
		return nil, newPosError(path, note.Bgn, "note does not exist")
	}
	n := int32(0)
	for _, f := range fs {
		if f.T0.Le(span.T0) && span.T0.Lt(f.T1) {
			if n == ord {
				return f.NNum, nil
			}
			n++
		}
	}
	return nil, newPosError(path, note.Bgn, "note does not exist")
}

func roundFloat(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}
