package ps2

import "github.com/ps2drv/ps2kbd/diag"

// receiver is the per-edge state machine decoding a device-to-host
// frame. Its fields are mutated from the interrupt handler, and from the
// foreground only by the recovery, send and re-arm paths in sequencer.go
// and switcher.go, which the platform's CriticalSection must guard.
type receiver struct {
	counter     int  // 0..10: start, 8 data bits, parity, stop
	accum       byte // in-progress byte, bit k-1 set by data bit k
	parity      bool // running parity over accumulated data bits; true == odd count of 1s so far
	framingErr  bool // single-bit latch; cleared only by foreground recovery
	lastEdgeUs  uint32
	lastFailUs  uint32

	out  *buffer
	diag diag.Sink
}

func newReceiver(out *buffer, d diag.Sink) *receiver {
	if d == nil {
		d = diag.Nop
	}
	return &receiver{out: out, diag: d}
}

// reset puts the receiver back to bit counter 0 with a clear framing
// latch. Used when arming/re-arming and by the spurious-glitch recovery
// path.
func (r *receiver) reset() {
	r.counter = 0
	r.accum = 0
	r.parity = false
	r.framingErr = false
}

// onFallingEdge steps the frame decode by one clock edge. data is the
// level sampled at entry (the platform must sample before calling this,
// since the valid window is only ~30µs) and nowUs is the edge's
// microsecond timestamp.
func (r *receiver) onFallingEdge(data Level, nowUs uint32) {
	r.lastEdgeUs = nowUs

	switch {
	case r.counter == 0:
		// Start bit. A framing error latched by a previous frame is only
		// implicitly cleared here when the start bit reads 0; otherwise
		// it remains set.
		if data != Low {
			r.framingErr = true
			r.lastFailUs = nowUs
			r.diag.PacketDidNotStartWithZero()
		} else {
			r.framingErr = false
		}
		r.accum = 0
		r.parity = false
		r.counter++

	case r.counter >= 1 && r.counter <= 8:
		bit := r.counter - 1
		if data == High {
			r.accum |= 1 << uint(bit)
			r.parity = !r.parity
		}
		r.counter++

	case r.counter == 9:
		// Parity bit: expected value is the complement needed to make the
		// 9-bit group odd. r.parity is true iff the data bits already
		// contain an odd count of ones, in which case the parity bit
		// itself must be 0 to keep the total odd.
		expected := !r.parity
		if (data == High) != expected {
			r.framingErr = true
			r.lastFailUs = nowUs
			r.diag.ParityError()
		}
		r.counter++

	case r.counter == 10:
		if data != High {
			r.framingErr = true
			r.lastFailUs = nowUs
			r.diag.PacketDidNotEndWithOne()
		}
		if !r.framingErr {
			if r.out.push(r.accum) {
				r.diag.BufferOverflow()
			}
			r.diag.ReceivedByte(r.accum)
		}
		r.counter = 0
		r.accum = 0
	}
}

// bitCounter reports the in-progress bit counter, used by the recovery
// path to distinguish a partial frame from a spurious glitch. Foreground
// callers must hold the platform's critical section.
func (r *receiver) bitCounter() int {
	return r.counter
}

// lastFailureUs returns the microsecond timestamp of the most recent
// detected framing failure. Foreground callers must hold the critical
// section.
func (r *receiver) lastFailureUs() uint32 {
	return r.lastFailUs
}

// hasFramingError reports the latch state. Foreground callers must hold
// the critical section.
func (r *receiver) hasFramingError() bool {
	return r.framingErr
}

// clearFramingError implements the foreground half of a read-and-clear
// protocol: a concurrent ISR-side set during the clear window re-latches
// the flag, so callers must re-check on the next poll rather than assume
// the clear is durable.
func (r *receiver) clearFramingError() {
	r.framingErr = false
}
