package memol

import (
	"sync"

	"github.com/huandu/go-clone/generic"
)

// TransportState mirrors the handful of states a host transport can be in;
// only the Rolling/Stopped distinction matters to the dispatch loop below.
type TransportState int

const (
	TransportStopped TransportState = iota
	TransportRolling
)

// Position is a point-in-time snapshot of a host's transport, sampled once
// per process cycle.
type Position struct {
	Frame     uint64
	FrameRate float64
}

// EventBuffer is the per-cycle output the host hands the player to write
// MIDI bytes into, offset in frames from the start of the cycle.
type EventBuffer interface {
	Clear()
	Write(offsetFrames uint32, msg []byte)
}

// Host abstracts the realtime callback contract a transport backend (JACK,
// a software clock driving rtmidi, ...) exposes to the player: a process
// callback invoked once per audio cycle with a ready-to-write EventBuffer,
// and transport control/query methods.
type Host interface {
	Activate(process func(size uint32, buf EventBuffer), sync func() bool) error
	Query() (Position, TransportState)
	Start()
	Stop()
	Locate(frame uint64)
	CurrentFrame() uint64
	Close() error
}

type playerShared struct {
	events  []MidiEvent
	changed bool
}

// Player dispatches a precompiled MIDI event list to a realtime Host,
// following the same dispatch-window algorithm regardless of backend: each
// cycle it binary-searches the sorted event list for the frame range the
// cycle covers and writes every event in that range into the cycle's
// EventBuffer.
type Player struct {
	host Host

	mu     sync.Mutex
	shared playerShared
}

// NewPlayer wires a Player to host and activates its realtime callbacks.
// The player starts with no events and the transport stopped.
func NewPlayer(host Host) (*Player, error) {
	p := &Player{host: host}
	if err := host.Activate(p.process, p.sync); err != nil {
		return nil, &HostError{Op: "Activate", Err: err}
	}
	return p, nil
}

// SetData replaces the event list the player dispatches from. The events
// must already be sorted by (time, priority), the convention Assembler's
// Generate produces; the player converts seconds to frames against each
// cycle's sampled frame rate.
func (p *Player) SetData(events []MidiEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared.events = clone.Clone(events)
	p.shared.changed = true
}

func (p *Player) Play()               { p.host.Start() }
func (p *Player) Stop()               { p.host.Stop(); p.markChanged() }
func (p *Player) Locate(frame uint64) { p.host.Locate(frame) }

func (p *Player) markChanged() {
	p.mu.Lock()
	p.shared.changed = true
	p.mu.Unlock()
}

// Location returns the transport's current position as an exact ratio of
// frame over frame rate.
func (p *Player) Location() Rat {
	pos, _ := p.host.Query()
	frame := p.host.CurrentFrame()
	return NewRat(int64(frame), int64(pos.FrameRate))
}

// IsPlaying reports whether the host transport is currently rolling.
func (p *Player) IsPlaying() bool {
	_, state := p.host.Query()
	return state == TransportRolling
}

// process is the realtime callback registered with the host. It must not
// block: a contended mutex (another goroutine mid-SetData) simply skips the
// cycle, matching the original's try_lock-and-bail behavior.
func (p *Player) process(size uint32, buf EventBuffer) {
	buf.Clear()

	if !p.mu.TryLock() {
		return
	}
	defer p.mu.Unlock()

	if p.shared.changed {
		writeAllNoteOff(buf)
		p.shared.changed = false
	}

	pos, state := p.host.Query()
	if state != TransportRolling {
		return
	}

	frameOf := func(ev MidiEvent) uint64 {
		return uint64(roundFloat(ev.Time * pos.FrameRate))
	}
	events := p.shared.events
	ibgn := bsearchBoundary(events, func(ev MidiEvent) bool {
		return framePrioLess(frameOf(ev), ev.Prio, pos.Frame, -1<<15)
	})
	iend := bsearchBoundary(events, func(ev MidiEvent) bool {
		return framePrioLess(frameOf(ev), ev.Prio, pos.Frame+uint64(size), -1<<15)
	})
	for _, ev := range events[ibgn:iend] {
		offset := frameOf(ev) - pos.Frame
		buf.Write(uint32(offset), ev.Msg)
	}

	if iend == len(events) {
		p.host.Stop()
		p.shared.changed = true
	}
}

// sync is the realtime callback a host invokes before allowing the
// transport to start rolling; like process it must not block.
func (p *Player) sync() bool {
	if !p.mu.TryLock() {
		return false
	}
	defer p.mu.Unlock()
	p.shared.changed = true
	return true // ready to roll.
}

// framePrioLess orders (frame, prio) pairs the way the dispatch window
// comparison does: strictly less-than on frame, then on priority.
func framePrioLess(frame uint64, prio int16, cmpFrame uint64, cmpPrio int32) bool {
	if frame != cmpFrame {
		return frame < cmpFrame
	}
	return int32(prio) < cmpPrio
}

// writeAllNoteOff sends an "all notes off" CC (0x7b) on every channel, used
// whenever the event list changes mid-playback so stale held notes don't
// ring out.
func writeAllNoteOff(buf EventBuffer) {
	for ch := byte(0); ch < 16; ch++ {
		buf.Write(0, []byte{0xb0 + ch, 0x7b, 0x00})
	}
}
