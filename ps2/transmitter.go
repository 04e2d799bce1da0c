package ps2

import "github.com/ps2drv/ps2kbd/diag"

// transmitter is the per-edge state machine driving a host-to-device
// byte. Armed by the direction switcher (switcher.go) once per
// host-initiated byte; after bit 11 it hands the clock line back to the
// receiver.
type transmitter struct {
	counter int  // 0..11
	out     byte // byte being sent
	parity  bool // running parity, same convention as receiver.parity

	platform Platform
	diag     diag.Sink

	// rearm is called after bit 11 to re-arm the receiver and hand the
	// clock interrupt back to it.
	rearm func()
}

func newTransmitter(p Platform, d diag.Sink, rearm func()) *transmitter {
	if d == nil {
		d = diag.Nop
	}
	return &transmitter{platform: p, diag: d, rearm: rearm}
}

// load prepares the transmitter for a new byte. Must be called with the
// clock interrupt still uninstalled, as part of the direction switcher's
// step 3.
func (t *transmitter) load(b byte) {
	t.counter = 0
	t.out = b
	t.parity = false
}

// onFallingEdge is the clock-edge ISR body, stepping the frame through
// start, 8 data bits, parity and stop.
func (t *transmitter) onFallingEdge() {
	switch {
	case t.counter == 0:
		// The host already holds data low (request-to-send); this edge
		// is the device sampling the start bit. Nothing to drive.

	case t.counter >= 1 && t.counter <= 8:
		bit := t.counter - 1
		v := t.out&(1<<uint(bit)) != 0
		if v {
			t.parity = !t.parity
		}
		t.drive(v)

	case t.counter == 9:
		// Odd-parity complement, same convention as the receiver.
		t.drive(!t.parity)

	case t.counter == 10:
		// Release data; the device drives the stop bit.
		t.platform.ConfigureDataInput()

	case t.counter == 11:
		if t.platform.SampleData() != Low {
			t.diag.SendFrameError()
		}
		t.rearm()
		return
	}
	t.counter++
}

func (t *transmitter) drive(high bool) {
	if high {
		// Open-collector: "high" is simply not driving low, so release
		// the line. It may still be held low by the request-to-send or
		// by the previous bit.
		t.platform.ConfigureDataInput()
		return
	}
	t.platform.DriveDataLow()
}
