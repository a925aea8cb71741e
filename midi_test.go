package memol

import (
	"math"
	"testing"
)

func nnum(n int32) *int32 { return &n }

func TestAssemblerAddScoreProducesOnOffPair(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{{T0: RatZero(), T1: RatOne(), NNum: nnum(60)}}}
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), ConstValueIR(1.0))
	events := a.Generate()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Time != 0 || events[0].Prio != 1 {
		t.Errorf("events[0] = %+v, want note-on at t=0 prio=1", events[0])
	}
	if events[1].Time != 1 || events[1].Prio != -1 {
		t.Errorf("events[1] = %+v, want note-off at t=1 prio=-1", events[1])
	}
}

func TestAssemblerRestNoteProducesNoEvents(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{{T0: RatZero(), T1: RatOne(), NNum: nil}}}
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), ConstValueIR(1.0))
	if events := a.Generate(); len(events) != 0 {
		t.Errorf("len(events) = %d, want 0 for a rest", len(events))
	}
}

func TestAssemblerSkipsNotesOutsideWindow(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{{T0: RatInt(2), T1: RatInt(3), NNum: nnum(60)}}}
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), ConstValueIR(1.0))
	if events := a.Generate(); len(events) != 0 {
		t.Errorf("len(events) = %d, want 0 for a note outside [begin,end)", len(events))
	}
}

func TestAssemblerVelocityClamps(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{{T0: RatZero(), T1: RatOne(), NNum: nnum(60)}}}
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddScore(0, score, ConstValueIR(2.0), ConstValueIR(0.0), ConstValueIR(1.0))
	events := a.Generate()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	// byte 2 of a note-on message is velocity.
	if v := events[0].Msg[2]; v != 127 {
		t.Errorf("velocity = %d, want clamped to 127", v)
	}
}

func TestAssemblerStableSortsOffBeforeOnAtSameInstant(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{
		{T0: RatZero(), T1: RatOne(), NNum: nnum(60)},
		{T0: RatOne(), T1: RatInt(2), NNum: nnum(62)},
	}}
	a := NewAssembler(NewRandom(), 0, 2, 1)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), ConstValueIR(1.0))
	events := a.Generate()
	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}
	// at t=1 the first note's note-off (prio -1) must precede the second
	// note's note-on (prio +1).
	var offIdx, onIdx int = -1, -1
	for i, ev := range events {
		if ev.Time != 1 {
			continue
		}
		if ev.Prio < 0 {
			offIdx = i
		} else if ev.Prio > 0 {
			onIdx = i
		}
	}
	if offIdx < 0 || onIdx < 0 || offIdx > onIdx {
		t.Errorf("events at t=1 = %+v, want note-off before note-on", events)
	}
}

func TestAssemblerAddCCEmitsOnlyOnChange(t *testing.T) {
	ir := &ValueIR{Kind: IRSequence, Seq: []seqEntry{
		{IR: ConstValueIR(0.0), T0: RatZero()},
		{IR: ConstValueIR(1.0), T0: RatInt(2)},
	}}
	a := NewAssembler(NewRandom(), 0, 3, 1)
	a.AddCC(0, 64, ir)
	events := a.Generate()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2 (one per value change)", len(events))
	}
	if events[0].Msg[2] != 0 {
		t.Errorf("first CC value = %d, want 0", events[0].Msg[2])
	}
	if events[1].Msg[2] != 127 {
		t.Errorf("second CC value = %d, want 127", events[1].Msg[2])
	}
}

func TestAssemblerAddTempoDoublesSpeed(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{{T0: RatZero(), T1: RatOne(), NNum: nnum(60)}}}
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), ConstValueIR(1.0))
	a.AddTempo(ConstValueIR(2.0))
	events := a.Generate()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Time != 0 {
		t.Errorf("note-on time = %v, want 0", events[0].Time)
	}
	if events[1].Time != 0.5 {
		t.Errorf("note-off time = %v, want 0.5 (tempo=2 halves duration)", events[1].Time)
	}
}

func TestAssemblerAddTempoCalledTwicePanics(t *testing.T) {
	a := NewAssembler(NewRandom(), 0, 1, 1)
	a.AddTempo(ConstValueIR(1.0))
	defer func() {
		if recover() == nil {
			t.Errorf("calling AddTempo twice did not panic")
		}
	}()
	a.AddTempo(ConstValueIR(1.0))
}

// TestAssemblerDefaultDurationBindsNoteLen exercises scenario 3 from the
// worked examples: a triad subdivided into thirds must each keep its own
// 1/3-beat duration under the default duration track (note.len), not a
// single global length.
func TestAssemblerDefaultDurationBindsNoteLen(t *testing.T) {
	third := NewRat(1, 3)
	score := &ScoreIR{Notes: []FlatNote{
		{T0: RatZero(), T1: third, NNum: nnum(60)},
		{T0: third, T1: third.Mul(RatInt(2)), NNum: nnum(64)},
		{T0: third.Mul(RatInt(2)), T1: RatOne(), NNum: nnum(67)},
	}}
	a := NewAssembler(NewRandom(), 0, 3, 3)
	a.AddScore(0, score, ConstValueIR(1.0), ConstValueIR(0.0), SymbolValueIR("note.len"))
	events := a.Generate()
	if len(events) != 6 {
		t.Fatalf("len(events) = %d, want 6 (on/off for 3 notes)", len(events))
	}
	wantOn := []float64{0, 1.0 / 3, 2.0 / 3}
	wantOff := []float64{1.0 / 3, 2.0 / 3, 1}
	var gotOn, gotOff []float64
	for _, ev := range events {
		if ev.Prio > 0 {
			gotOn = append(gotOn, ev.Time)
		} else {
			gotOff = append(gotOff, ev.Time)
		}
	}
	for i := range wantOn {
		if math.Abs(gotOn[i]-wantOn[i]) > 1e-9 {
			t.Errorf("on[%d] = %v, want %v", i, gotOn[i], wantOn[i])
		}
		if math.Abs(gotOff[i]-wantOff[i]) > 1e-9 {
			t.Errorf("off[%d] = %v, want %v", i, gotOff[i], wantOff[i])
		}
	}
}

// TestAssemblerBindsNoteNthAndNoteCnt checks that a value track referencing
// note.nth/note.cnt sees this note's 0-based index and the channel's total
// sounding-note count, not a stuck/zero value.
func TestAssemblerBindsNoteNthAndNoteCnt(t *testing.T) {
	score := &ScoreIR{Notes: []FlatNote{
		{T0: RatZero(), T1: RatOne(), NNum: nnum(60)},
		{T0: RatOne(), T1: RatInt(2), NNum: nnum(62)},
		{T0: RatInt(2), T1: RatInt(3), NNum: nnum(64)},
	}}
	velIR := &ValueIR{Kind: IRBinaryOp, Op: OpDiv, Lhs: SymbolValueIR("note.nth"), Rhs: SymbolValueIR("note.cnt")}
	a := NewAssembler(NewRandom(), 0, 3, 1)
	a.AddScore(0, score, velIR, ConstValueIR(0.0), ConstValueIR(1.0))
	events := a.Generate()
	var onVel []uint8
	for _, ev := range events {
		if ev.Prio > 0 {
			onVel = append(onVel, ev.Msg[2])
		}
	}
	want := []uint8{clampByte(roundFloat(0.0 / 3.0 * 127)), clampByte(roundFloat(1.0 / 3.0 * 127)), clampByte(roundFloat(2.0 / 3.0 * 127))}
	if len(onVel) != 3 {
		t.Fatalf("len(onVel) = %d, want 3", len(onVel))
	}
	for i := range want {
		if onVel[i] != want[i] {
			t.Errorf("onVel[%d] = %d, want %d (note.nth=%d, note.cnt=3)", i, onVel[i], want[i], i)
		}
	}
}

func TestClampByte(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{64, 64},
		{127, 127},
		{500, 127},
	}
	for _, c := range cases {
		if got := clampByte(c.in); got != c.want {
			t.Errorf("clampByte(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
