package ps2

import "time"

// sendData invokes the direction switcher with b, then waits up to the
// configured ACK timeout for the next received byte. It reports success
// iff that byte is the ACK sentinel. On failure it re-arms the receiver,
// leaving the queue in a consistent state for the next call.
func (d *Device) sendData(b byte) bool {
	d.state = StateInhibiting
	if err := d.beginSend(b); err != nil {
		d.state = StateListening
		return false
	}
	d.state = StateTransmitting
	d.diag.SentByte(b)

	d.state = StateAwaitingAck
	resp := d.expectResponseUntyped(d.cfg.AckTimeout)
	d.state = StateListening
	if resp.Kind == KindACK {
		d.popOne()
		return true
	}
	d.diag.NoResponse(ReplyACK)
	d.rearmReceiver()
	return false
}

// sendCommand sends cmd alone, aborting (and returning false) on the
// first non-ACK reply.
func (d *Device) sendCommand(cmd byte) bool {
	return d.sendData(cmd)
}

// sendCommandArg sends cmd followed by a single argument byte, aborting
// on the first non-ACK reply.
func (d *Device) sendCommandArg(cmd, arg byte) bool {
	if !d.sendData(cmd) {
		return false
	}
	return d.sendData(arg)
}

// sendCommandBytes sends cmd followed by each of bytes in order,
// aborting on the first non-ACK reply.
func (d *Device) sendCommandBytes(cmd byte, bytes []byte) bool {
	if !d.sendData(cmd) {
		return false
	}
	for _, b := range bytes {
		if !d.sendData(b) {
			return false
		}
	}
	return true
}

// expectResponseUntyped is the foreground wait for the next queued byte.
// It repeatedly peeks the buffer under a critical section; if the buffer
// is empty and the framing-error flag is set, it returns Garbled and
// clears the flag. Otherwise it returns the peeked value, or None on
// timeout. The wait uses the millisecond clock with a wraparound-safe
// comparison.
func (d *Device) expectResponseUntyped(timeout time.Duration) ScanCode {
	start := d.platform.Millis()
	stop := start + uint32(timeout.Milliseconds())
	for {
		var result ScanCode
		var gotIt bool
		d.platform.CriticalSection(func() {
			v := d.out.peek()
			if v.IsNone() && d.rx.hasFramingError() {
				d.rx.clearFramingError()
				result = Garbled
				gotIt = true
				return
			}
			if !v.IsNone() {
				result = v
				gotIt = true
			}
		})
		if gotIt {
			return result
		}
		now := d.platform.Millis()
		if !millisBefore(now, stop) {
			return None
		}
	}
}

// millisBefore implements a wraparound-safe "now < stop" comparison: the
// loop continues while now has not yet reached stop, including across a
// wrap of the millisecond counter.
func millisBefore(now, stop uint32) bool {
	return int32(now-stop) < 0
}

// popOne removes the byte expectResponseUntyped just peeked. Used by
// callers (sendData, expectResponseTyped) that have decided to consume
// it.
func (d *Device) popOne() ScanCode {
	var v ScanCode
	d.platform.CriticalSection(func() {
		v = d.out.pop()
	})
	return v
}

// expectResponseTyped waits for a specific expected byte: on a match it
// pops the byte and returns true; on a mismatch it leaves the byte
// queued and returns false; on None or Garbled it returns false.
func (d *Device) expectResponseTyped(expected byte, timeout time.Duration) bool {
	resp := d.expectResponseUntyped(timeout)
	v, ok := resp.RawByte()
	if !ok {
		if resp.IsNone() {
			d.diag.NoResponse(expected)
		}
		return false
	}
	if v != expected {
		d.diag.IncorrectResponse(v, expected)
		return false
	}
	d.popOne()
	return true
}

// ReadScanCode is the application's primary entry point. It pops one
// byte; on an empty buffer with a latched framing error it drives the
// recovery decision below; on a stray BAT sentinel it consumes it and
// returns the next queued byte instead.
func (d *Device) ReadScanCode() ScanCode {
	v := d.popOne()
	if v.IsNone() {
		return d.recoverFromEmpty()
	}
	return d.filterStrayBAT(v)
}

func (d *Device) recoverFromEmpty() ScanCode {
	var framingErr bool
	var lastFailUs uint32
	var bitCounter int
	d.platform.CriticalSection(func() {
		framingErr = d.rx.hasFramingError()
		lastFailUs = d.rx.lastFailureUs()
		bitCounter = d.rx.bitCounter()
	})
	if !framingErr {
		return None
	}

	now := d.platform.Micros()
	if microsSince(lastFailUs, now) < d.cfg.GlitchSettleMicros {
		// Too soon to interrupt the keyboard; it may still be mid-frame.
		return None
	}

	if bitCounter > d.cfg.ResendBitThreshold {
		d.sendCommand(CmdResend)
	} else {
		d.platform.CriticalSection(func() {
			d.rx.clearFramingError()
			d.rx.reset()
		})
		d.diag.ClockLineGlitch(bitCounter)
	}
	return Garbled
}

// microsSince computes now-last with wraparound tolerance, matching the
// monotonic, wraparound-tolerant contract required of the platform's
// microsecond clock.
func microsSince(last, now uint32) uint32 {
	return now - last
}

func (d *Device) filterStrayBAT(v ScanCode) ScanCode {
	switch v.Kind {
	case KindSelfTestFailed:
		d.diag.StartupFailure()
		return d.popOneOrNext()
	case KindSelfTestPassed:
		return d.popOneOrNext()
	default:
		return v
	}
}

// popOneOrNext returns the next queued byte after a stray BAT sentinel
// has already been consumed by the caller's prior pop, or None if the
// buffer is now empty.
func (d *Device) popOneOrNext() ScanCode {
	return d.popOne()
}
