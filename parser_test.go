package memol

import "testing"

func TestParseDefinitionScoreAndValue(t *testing.T) {
	def, err := ParseDefinition("t", `score main = [c e g]; value velocity = (0.8);`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if _, ok := def.Scores["main"]; !ok {
		t.Fatalf("def.Scores missing %q", "main")
	}
	if _, ok := def.Values["velocity"]; !ok {
		t.Fatalf("def.Values missing %q", "velocity")
	}
}

func TestParseNoteListAndChord(t *testing.T) {
	def, err := ParseDefinition("t", `score main = [c (c e g) .];`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	sc, ok := def.Scores["main"].Node.(ScoreScore)
	if !ok {
		t.Fatalf("main.Node = %T, want ScoreScore", def.Scores["main"].Node)
	}
	if len(sc.Notes) != 3 {
		t.Fatalf("len(notes) = %d, want 3", len(sc.Notes))
	}
	if _, ok := sc.Notes[0].Node.(NoteLetter); !ok {
		t.Errorf("notes[0] = %T, want NoteLetter", sc.Notes[0].Node)
	}
	if _, ok := sc.Notes[1].Node.(NoteChord); !ok {
		t.Errorf("notes[1] = %T, want NoteChord", sc.Notes[1].Node)
	}
	if _, ok := sc.Notes[2].Node.(NoteRest); !ok {
		t.Errorf("notes[2] = %T, want NoteRest", sc.Notes[2].Node)
	}
}

func TestParseNoteTieAndRepeat(t *testing.T) {
	def, err := ParseDefinition("t", `score main = [c^ %];`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	sc := def.Scores["main"].Node.(ScoreScore)
	if _, ok := sc.Notes[0].Node.(NoteTie); !ok {
		t.Errorf("notes[0] = %T, want NoteTie", sc.Notes[0].Node)
	}
	if _, ok := sc.Notes[1].Node.(*NoteRepeat); !ok {
		t.Errorf("notes[1] = %T, want *NoteRepeat", sc.Notes[1].Node)
	}
}

func TestParseScoreSequenceParallelRepeatStretch(t *testing.T) {
	def, err := ParseDefinition("t", `score main = ({[c] , [e]} * 2 @ 3/2);`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	seq, ok := def.Scores["main"].Node.(ScoreSequence)
	if !ok {
		t.Fatalf("main.Node = %T, want ScoreSequence", def.Scores["main"].Node)
	}
	if len(seq.Scores) != 1 {
		t.Fatalf("len(seq.Scores) = %d, want 1", len(seq.Scores))
	}
	stretch, ok := seq.Scores[0].Node.(ScoreStretch)
	if !ok {
		t.Fatalf("seq.Scores[0] = %T, want ScoreStretch", seq.Scores[0].Node)
	}
	if !stretch.Ratio.Eq(NewRat(3, 2)) {
		t.Errorf("stretch.Ratio = %v, want 3/2", stretch.Ratio)
	}
	rep, ok := stretch.Score.Node.(ScoreRepeat)
	if !ok {
		t.Fatalf("stretch.Score = %T, want ScoreRepeat", stretch.Score.Node)
	}
	if rep.N != 2 {
		t.Errorf("rep.N = %d, want 2", rep.N)
	}
	if _, ok := rep.Score.Node.(ScoreParallel); !ok {
		t.Errorf("rep.Score = %T, want ScoreParallel", rep.Score.Node)
	}
}

func TestParseScoreWithBinding(t *testing.T) {
	def, err := ParseDefinition("t", `score main = [c] /x = [e];`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	w, ok := def.Scores["main"].Node.(ScoreWith)
	if !ok {
		t.Fatalf("main.Node = %T, want ScoreWith", def.Scores["main"].Node)
	}
	if w.Key != 'x' {
		t.Errorf("w.Key = %q, want 'x'", w.Key)
	}
}

func TestParseScoreSliceFilterTransposeChord(t *testing.T) {
	def, err := ParseDefinition("t", `score main = filter((1), transpose((2), slice(chord("C"), 0, 1)));`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	f, ok := def.Scores["main"].Node.(scoreFilter)
	if !ok {
		t.Fatalf("main.Node = %T, want scoreFilter", def.Scores["main"].Node)
	}
	tr, ok := f.Then.Node.(scoreTranspose)
	if !ok {
		t.Fatalf("f.Then = %T, want scoreTranspose", f.Then.Node)
	}
	sl, ok := tr.Score.Node.(scoreSlice)
	if !ok {
		t.Fatalf("tr.Score = %T, want scoreSlice", tr.Score.Node)
	}
	cs, ok := sl.Score.Node.(scoreChordSymbol)
	if !ok {
		t.Fatalf("sl.Score = %T, want scoreChordSymbol", sl.Score.Node)
	}
	if cs.Text != "C" {
		t.Errorf("cs.Text = %q, want C", cs.Text)
	}
}

func TestParseValueExprBinaryOpsAndBranch(t *testing.T) {
	def, err := ParseDefinition("t", `value x = branch((1), add((1), (2)), (0));`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	br, ok := def.Values["x"].Ast.Node.(ValueTrackBranch)
	if !ok {
		t.Fatalf("x.Node = %T, want ValueTrackBranch", def.Values["x"].Ast.Node)
	}
	bop, ok := br.Then.Node.(ValueTrackBinaryOp)
	if !ok {
		t.Fatalf("br.Then = %T, want ValueTrackBinaryOp", br.Then.Node)
	}
	if bop.Op != OpAdd {
		t.Errorf("bop.Op = %v, want OpAdd", bop.Op)
	}
}

func TestParseValueItemRampAndGroup(t *testing.T) {
	def, err := ParseDefinition("t", `value x = ({0..1:2 2:1});`)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	lit := def.Values["x"].Ast.Node.(ValueTrackLiteral)
	grp, ok := lit.Values[0].Node.(ValueGroup)
	if !ok {
		t.Fatalf("lit.Values[0] = %T, want ValueGroup", lit.Values[0].Node)
	}
	if len(grp.Items) != 2 {
		t.Fatalf("len(grp.Items) = %d, want 2", len(grp.Items))
	}
	ramp, ok := grp.Items[0].Value.Node.(ValueLine)
	if !ok {
		t.Fatalf("grp.Items[0] = %T, want ValueLine", grp.Items[0].Value.Node)
	}
	if !ramp.V0.Eq(RatZero()) || !ramp.V1.Eq(RatInt(1)) {
		t.Errorf("ramp = %v..%v, want 0..1", ramp.V0, ramp.V1)
	}
	if grp.Items[0].Weight != 2 {
		t.Errorf("grp.Items[0].Weight = %d, want 2", grp.Items[0].Weight)
	}
}

func TestParseDefinitionErrorOnUnknownKeyword(t *testing.T) {
	if _, err := ParseDefinition("t", `bogus main = [c];`); err == nil {
		t.Errorf("expected an error for an unrecognized top-level keyword")
	}
}

func TestParseDefinitionErrorOnUnterminatedSequence(t *testing.T) {
	if _, err := ParseDefinition("t", `score main = ([c];`); err == nil {
		t.Errorf("expected an error for an unterminated sequence")
	}
}
