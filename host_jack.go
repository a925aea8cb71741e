//go:build jack
// +build jack

package memol

import (
	"github.com/xthexder/go-jack"
)

// jackHost drives Player directly off a JACK server's process/sync
// callbacks and a registered MIDI output port, the same contract the
// original player used.
type jackHost struct {
	client *jack.Client
	port   *jack.Port

	process func(size uint32, buf EventBuffer)
	sync    func() bool
}

// NewJackHost opens a JACK client named name, registers a single raw MIDI
// output port named "out", and returns a Host backed by it.
func NewJackHost(name string) (Host, error) {
	client, status := jack.ClientOpen(name, jack.NoStartServer)
	if status != 0 || client == nil {
		return nil, &HostError{Op: "ClientOpen", Err: jackStatusError(status)}
	}
	port := client.PortRegister("out", jack.DEFAULT_MIDI_TYPE, jack.PortIsOutput, 0)
	if port == nil {
		client.Close()
		return nil, &HostError{Op: "PortRegister", Err: jackStatusError(0)}
	}
	return &jackHost{client: client, port: port}, nil
}

func (h *jackHost) Activate(process func(size uint32, buf EventBuffer), sync func() bool) error {
	h.process = process
	h.sync = sync
	h.client.SetProcessCallback(h.onProcess)
	h.client.SetSyncCallback(h.onSync)
	if code := h.client.Activate(); code != 0 {
		return jackStatusError(code)
	}
	return nil
}

func (h *jackHost) onProcess(nframes uint32) int {
	buf := &jackBuffer{port: h.port, nframes: nframes}
	h.process(nframes, buf)
	return 0
}

func (h *jackHost) onSync(state jack.TransportState, pos *jack.Position) int {
	if h.sync() {
		return 1
	}
	return 0
}

func (h *jackHost) Query() (Position, TransportState) {
	state, pos := h.client.TransportQuery()
	ts := TransportStopped
	if state == jack.Rolling {
		ts = TransportRolling
	}
	return Position{Frame: uint64(pos.Frame), FrameRate: float64(pos.FrameRate)}, ts
}

func (h *jackHost) Start()                { h.client.TransportStart() }
func (h *jackHost) Stop()                 { h.client.TransportStop() }
func (h *jackHost) Locate(frame uint64)   { h.client.TransportLocate(uint32(frame)) }
func (h *jackHost) CurrentFrame() uint64  { return uint64(h.client.GetCurrentTransportFrame()) }
func (h *jackHost) Close() error          { return h.client.Close() }

type jackBuffer struct {
	port    *jack.Port
	nframes uint32
	buf     *jack.PortBuffer
}

func (b *jackBuffer) ensure() *jack.PortBuffer {
	if b.buf == nil {
		b.buf = b.port.GetBuffer(b.nframes)
		jack.MidiClearBuffer(b.buf)
	}
	return b.buf
}

func (b *jackBuffer) Clear() { b.ensure() }

func (b *jackBuffer) Write(offsetFrames uint32, msg []byte) {
	jack.MidiEventWrite(b.ensure(), offsetFrames, msg)
}

type jackStatusError int

func (e jackStatusError) Error() string { return "jack error" }
