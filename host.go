package memol

import (
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/go-memol/memol/internal/logging"
)

var hostLog = logging.New("memol/host: ", logging.LevelWarn)

// DefaultFrameRate is the virtual sample rate the software-clock host uses
// to convert between wall-clock time and the frame numbers Player's
// dispatch window is expressed in. It has no bearing on audio fidelity
// since this backend emits MIDI bytes directly rather than samples; it only
// needs to be fine-grained enough that event timing error stays musically
// inaudible.
const DefaultFrameRate = 44100

// cycleDuration is how often the software clock advances and dispatches a
// process cycle.
const cycleDuration = 10 * time.Millisecond

// rtmidiHost drives Player off a software clock and an rtmidi output port,
// for systems without a JACK server. It implements Host.
type rtmidiHost struct {
	out drivers.Out

	mu      sync.Mutex
	rolling bool
	frame   uint64 // current transport position, in frames.

	stopCh chan struct{}
	wg     sync.WaitGroup

	activated int32
}

// NewRtmidiHost opens the named MIDI output port (or the first available
// one if name is empty) and returns a Host backed by it.
func NewRtmidiHost(name string) (Host, error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, &HostError{Op: "Outs", Err: err}
	}
	var out drivers.Out
	for _, o := range outs {
		if name == "" || o.String() == name {
			out = o
			break
		}
	}
	if out == nil {
		return nil, &HostError{Op: "Outs", Err: errNoSuchPort(name)}
	}
	if err := out.Open(); err != nil {
		return nil, &HostError{Op: "Open", Err: err}
	}
	return &rtmidiHost{out: out, stopCh: make(chan struct{})}, nil
}

type errNoSuchPort string

func (e errNoSuchPort) Error() string { return "no such MIDI output port: " + string(e) }

func (h *rtmidiHost) Activate(process func(size uint32, buf EventBuffer), sync func() bool) error {
	if !atomic.CompareAndSwapInt32(&h.activated, 0, 1) {
		return &HostError{Op: "Activate", Err: errAlreadyActivated{}}
	}
	size := uint32(DefaultFrameRate * cycleDuration.Seconds())
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(cycleDuration)
		defer ticker.Stop()
		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				buf := &rtmidiBuffer{out: h.out}
				process(size, buf)
				h.mu.Lock()
				if h.rolling {
					h.frame += uint64(size)
				}
				h.mu.Unlock()
			}
		}
	}()
	return nil
}

type errAlreadyActivated struct{}

func (errAlreadyActivated) Error() string { return "host already activated" }

func (h *rtmidiHost) Query() (Position, TransportState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state := TransportStopped
	if h.rolling {
		state = TransportRolling
	}
	return Position{Frame: h.frame, FrameRate: DefaultFrameRate}, state
}

func (h *rtmidiHost) Start() {
	h.mu.Lock()
	h.rolling = true
	h.mu.Unlock()
}

func (h *rtmidiHost) Stop() {
	h.mu.Lock()
	h.rolling = false
	h.mu.Unlock()
}

func (h *rtmidiHost) Locate(frame uint64) {
	h.mu.Lock()
	h.frame = frame
	h.mu.Unlock()
}

func (h *rtmidiHost) CurrentFrame() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

func (h *rtmidiHost) Close() error {
	if atomic.LoadInt32(&h.activated) == 1 {
		close(h.stopCh)
		h.wg.Wait()
	}
	return h.out.Close()
}

// rtmidiBuffer fans EventBuffer.Write straight out to the MIDI port: there
// is no sub-cycle timing to honor on this backend, so events scheduled
// anywhere within a cycle go out immediately at the start of it.
type rtmidiBuffer struct {
	out drivers.Out
}

func (b *rtmidiBuffer) Clear() {}

func (b *rtmidiBuffer) Write(_ uint32, msg []byte) {
	if err := b.out.Send(msg); err != nil {
		hostLog.Warnf("send: %v", err)
	}
}
