package memol

import (
	"encoding/binary"
	"io"
)

// deltaTime appends t as a variable-length quantity (7 bits per byte, MSB
// set on every byte but the last) to buf, the Standard MIDI File delta-time
// encoding.
func deltaTime(buf []byte, t uint32) []byte {
	for _, shift := range [3]uint{21, 14, 7} {
		if t>>shift != 0 {
			buf = append(buf, byte((t>>shift)&0x7f|0x80))
		}
	}
	return append(buf, byte(t&0x7f))
}

// WriteSMF writes events as a format-0, single-track Standard MIDI File to
// w. unit is the file's division field (ticks per quarter note); event
// times are assumed to already be in seconds at 120 beats per minute, so a
// quarter note is half a second and one tick is 1/(2*unit) seconds.
func WriteSMF(w io.Writer, events []MidiEvent, unit uint16) error {
	var content []byte
	t := 0.0
	for _, ev := range events {
		dt := (2.0 * float64(unit)) * (ev.Time - t)
		content = deltaTime(content, uint32(roundFloat(dt)))
		content = append(content, ev.Msg...)
		t = ev.Time
	}

	var hdr [14]byte
	copy(hdr[0:4], "MThd")
	binary.BigEndian.PutUint32(hdr[4:8], 6)
	binary.BigEndian.PutUint16(hdr[8:10], 0) // format type.
	binary.BigEndian.PutUint16(hdr[10:12], 1) // track count.
	binary.BigEndian.PutUint16(hdr[12:14], unit)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	if _, err := w.Write([]byte("MTrk")); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(content))+4)
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return err
	}
	_, err := w.Write([]byte{0x00, 0xff, 0x2f, 0x00}) // track end marker.
	return err
}
