package memol

import (
	"sort"

	"gitlab.com/gomidi/midi/v2"
)

// MidiEvent is one scheduled MIDI message: a raw 1-4 byte message tagged
// with a floating-point time (in seconds once Assemble's tempo map has been
// applied) and a priority used to break ties at the same time so note-offs
// dispatch before note-ons land on the same instant.
type MidiEvent struct {
	Time float64
	Prio int16
	Msg  []byte
}

// Assembler collects MidiEvent values from one or more score/value IR pairs
// and produces the sorted, tempo-mapped event list a player or SMF writer
// consumes.
type Assembler struct {
	ev       *Evaluator
	events   []MidiEvent
	timeline []float64
	bgn, end int64
	tick     int64
}

// NewAssembler creates an assembler covering the tick range [bgn, end) at
// the given ticks-per-beat resolution, sharing rng across every track added
// to it so "gaussian" draws form one continuous stream.
func NewAssembler(rng *Random, bgn, end, tick int64) *Assembler {
	return &Assembler{
		ev:   NewEvaluatorWithRandom(rng),
		bgn:  bgn,
		end:  end,
		tick: tick,
	}
}

// AddScore schedules note-on/note-off pairs for one channel's flat note
// sequence, sampling velocity/offset/duration value tracks per note.
// Offsets are memoized per (time, pitch) so a note's tie-shared boundary
// samples the same jitter on both ends.
func (a *Assembler) AddScore(ch int, score *ScoreIR, velIR, ofsIR, durIR *ValueIR) {
	type offKey struct {
		t    Rat
		nnum int32
	}
	offset := map[offKey]float64{}
	offsetAt := func(t Rat, nnum int32) float64 {
		k := offKey{t: t, nnum: nnum}
		if v, ok := offset[k]; ok {
			return v
		}
		v := a.ev.Eval(ofsIR, t)
		offset[k] = v
		return v
	}

	bgnT := NewRat(a.bgn, a.tick)
	endT := NewRat(a.end, a.tick)

	cnt := 0
	for _, f := range score.Notes {
		if f.NNum != nil {
			cnt++
		}
	}

	// note.len/note.nth/note.cnt are set per-note before dur/offset/velocity
	// are evaluated, mirroring the Rust original's Cell-backed note_len.
	var noteLen, noteNth, noteCnt float64
	noteCnt = float64(cnt)
	a.ev.AddSymbol("note.len", func(Rat) float64 { return noteLen })
	a.ev.AddSymbol("note.nth", func(Rat) float64 { return noteNth })
	a.ev.AddSymbol("note.cnt", func(Rat) float64 { return noteCnt })

	nth := 0
	for _, f := range score.Notes {
		if f.NNum == nil {
			continue
		}
		nnum := *f.NNum
		noteNth = float64(nth)
		nth++
		// accept note-off messages exactly at the window's end.
		if f.T0.Lt(bgnT) || endT.Lt(f.T1) {
			continue
		}

		noteLen = f.T1.Sub(f.T0).Float64()
		dt := a.ev.Eval(durIR, f.T0)
		d0 := offsetAt(f.T0, nnum)
		d1 := offsetAt(f.T1, nnum)
		t0 := f.T0.Float64() + d0
		var t1 float64
		if dt == noteLen {
			// avoid event-order inversion from floating point error when
			// the duration track is exactly "full length".
			t1 = f.T1.Float64() + d1
		} else {
			frac := dt / noteLen
			t1 = (1-frac)*(f.T0.Float64()+d0) + frac*(f.T1.Float64()+d1)
		}
		if t0 >= t1 {
			continue
		}

		vel := clampByte(roundFloat(a.ev.Eval(velIR, f.T0) * 127.0))
		a.events = append(a.events, MidiEvent{Time: t0, Prio: 1, Msg: midi.NoteOn(uint8(ch), uint8(nnum), vel).Bytes()})
		a.events = append(a.events, MidiEvent{Time: t1, Prio: -1, Msg: midi.NoteOff(uint8(ch), uint8(nnum)).Bytes()})
	}
}

// AddCC samples ir once per tick across the assembler's window and emits a
// control-change event each time the rounded value changes.
func (a *Assembler) AddCC(ch, cc int, ir *ValueIR) {
	prev := int16(-1)
	for i := a.bgn; i < a.end; i++ {
		t := NewRat(i, a.tick)
		v := clampByte(roundFloat(a.ev.Eval(ir, t) * 127.0))
		if int16(v) != prev {
			a.events = append(a.events, MidiEvent{Time: t.Float64(), Prio: 0, Msg: midi.ControlChange(uint8(ch), uint8(cc), v).Bytes()})
			prev = int16(v)
		}
	}
}

// AddTempo builds the assembler's tempo map from a beats-per-second(ish)
// value track: ir(t) is read as a tempo in beats per unit time, integrated
// tick-by-tick into a monotonic seconds timeline that Generate later warps
// every event's time through.
func (a *Assembler) AddTempo(ir *ValueIR) {
	if len(a.timeline) != 0 {
		panic("memol: AddTempo called more than once")
	}
	s := 0.0
	for i := int64(0); i < a.end+1; i++ {
		a.timeline = append(a.timeline, s)
		s += 1.0 / (float64(a.tick) * a.ev.Eval(ir, NewRat(i, a.tick)))
	}
	a.timeline = append(a.timeline, s)
}

// Generate sorts the collected events by (time, priority) and, if a tempo
// map was built, remaps every event's time through it.
func (a *Assembler) Generate() []MidiEvent {
	sort.SliceStable(a.events, func(i, j int) bool {
		if a.events[i].Time != a.events[j].Time {
			return a.events[i].Time < a.events[j].Time
		}
		return a.events[i].Prio < a.events[j].Prio
	})
	if len(a.timeline) > 0 {
		last := len(a.timeline) - 2
		for i := range a.events {
			ev := &a.events[i]
			ft := ev.Time * float64(a.tick)
			idx := int(ft)
			if idx < 0 {
				idx = 0
			}
			if idx > last {
				idx = last
			}
			f0 := a.timeline[idx]
			f1 := a.timeline[idx+1]
			frac := ft - float64(idx)
			ev.Time = (1-frac)*f0 + frac*f1
		}
	}
	return a.events
}

func clampByte(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 127 {
		return 127
	}
	return uint8(f)
}
