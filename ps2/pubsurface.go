package ps2

import "time"

// This file implements the driver's named public-surface operations. All
// of them are foreground-only; none may be called from interrupt context
// (the package enforces this simply by never calling them from
// onFallingEdgeReceive/transmitter.onFallingEdge).

// AwaitStartup waits for the self-test-passed sentinel, returning whether
// it arrived before the configured startup timeout (default 750ms).
// Failure is reported only through the diagnostics sink.
func (d *Device) AwaitStartup() bool {
	ok := d.waitForSentinel(KindSelfTestPassed, d.cfg.StartupTimeout)
	if !ok {
		d.diag.StartupFailure()
	}
	return ok
}

func (d *Device) waitForSentinel(want Kind, timeout time.Duration) bool {
	start := d.platform.Millis()
	stop := start + uint32(timeout.Milliseconds())
	for {
		var v ScanCode
		d.platform.CriticalSection(func() {
			v = d.out.pop()
		})
		if v.Kind == want {
			return true
		}
		now := d.platform.Millis()
		if !millisBefore(now, stop) {
			return false
		}
	}
}

// Reset sends the reset command (0xFF), clears the buffer, and waits for
// self-test-passed.
func (d *Device) Reset() bool {
	if !d.sendCommand(CmdReset) {
		return false
	}
	d.platform.CriticalSection(func() {
		d.out.clear()
	})
	return d.waitForSentinel(KindSelfTestPassed, d.cfg.ResetTimeout)
}

// SendLedStatus sends the set-LEDs command followed by a 3-bit mask: bit
// 0 scroll-lock, bit 1 num-lock, bit 2 caps-lock.
func (d *Device) SendLedStatus(mask byte) bool {
	return d.sendCommandArg(CmdSetLEDs, mask&0b111)
}

// ReadID sends read-id (0xF2), reads two reply bytes MSB-first, and
// returns 0xFFFF if either is missing.
func (d *Device) ReadID() uint16 {
	if !d.sendCommand(CmdReadID) {
		return 0xFFFF
	}
	msb := d.expectResponseUntyped(d.cfg.AckTimeout)
	mv, ok := msb.RawByte()
	if !ok {
		return 0xFFFF
	}
	d.popOne()
	lsb := d.expectResponseUntyped(d.cfg.AckTimeout)
	lv, ok := lsb.RawByte()
	if !ok {
		return 0xFFFF
	}
	d.popOne()
	return uint16(mv)<<8 | uint16(lv)
}

// GetScanCodeSet sends set-scan-code-set with argument 0 and reads the
// reply byte, which must be one of {1,2,3}.
func (d *Device) GetScanCodeSet() (int, bool) {
	if !d.sendCommandArg(CmdSetScanCodeSet, 0) {
		return 0, false
	}
	resp := d.expectResponseUntyped(d.cfg.AckTimeout)
	v, ok := resp.RawByte()
	if !ok {
		return 0, false
	}
	d.popOne()
	switch v {
	case 1, 2, 3:
		return int(v), true
	default:
		return 0, false
	}
}

// SetScanCodeSet sends set-scan-code-set with argument n. n must be 1, 2
// or 3.
func (d *Device) SetScanCodeSet(n int) bool {
	return d.sendCommandArg(CmdSetScanCodeSet, byte(n))
}

// Echo sends the echo command. No ACK is expected: the keyboard replies
// with echo (0xEE) directly.
func (d *Device) Echo() bool {
	d.state = StateInhibiting
	if err := d.beginSend(CmdEcho); err != nil {
		d.state = StateListening
		return false
	}
	d.state = StateTransmitting
	d.diag.SentByte(CmdEcho)

	d.state = StateAwaitingAck
	ok := d.expectResponseTyped(ReplyEcho, d.cfg.AckTimeout)
	d.state = StateListening
	return ok
}

// SetTypematicRateAndDelay sends set-typematic with a byte whose low five
// bits are rate5 (0=fastest...31=slowest) and whose next two bits are
// delay2 (0=250ms, 1=500ms, 2=750ms, 3=1000ms); bit 7 is always zero.
func (d *Device) SetTypematicRateAndDelay(rate5, delay2 byte) bool {
	arg := (rate5 & 0x1F) | ((delay2 & 0x3) << 5)
	return d.sendCommandArg(CmdSetTypematic, arg)
}

// Enable and Disable send commands 0xF4/0xF5.
func (d *Device) Enable() bool  { return d.sendCommand(CmdEnable) }
func (d *Device) Disable() bool { return d.sendCommand(CmdDisable) }

// ResetToDefaults sends command 0xF6.
func (d *Device) ResetToDefaults() bool {
	return d.sendCommand(CmdUseDefaults)
}

// EnableBreakAndTypematic, DisableBreakAndTypematic, DisableBreakCodes
// and DisableTypematic send commands 0xFA/0xF9/0xF7/0xF8, meaningful only
// under scan-code-set 3; other sets silently accept-then-ignore them.
func (d *Device) EnableBreakAndTypematic() bool  { return d.sendCommand(CmdEnableBreakAndTypematicAll) }
func (d *Device) DisableBreakAndTypematic() bool { return d.sendCommand(CmdDisableBreakAndTypematicAll) }
func (d *Device) DisableBreakCodes() bool        { return d.sendCommand(CmdDisableBreakAll) }
func (d *Device) DisableTypematic() bool         { return d.sendCommand(CmdDisableTypematicAll) }

// DisableBreakCodesFor, DisableTypematicFor and DisableBreakAndTypematicFor
// send commands 0xFB/0xFC/0xFD followed by the given key list; the
// keyboard is left disabled afterwards and the caller must call Enable
// again.
func (d *Device) DisableBreakCodesFor(keys []byte) bool {
	return d.sendCommandBytes(CmdDisableBreakForSpecific, keys)
}

func (d *Device) DisableTypematicFor(keys []byte) bool {
	return d.sendCommandBytes(CmdDisableTypematicForSpecific, keys)
}

func (d *Device) DisableBreakAndTypematicFor(keys []byte) bool {
	return d.sendCommandBytes(CmdDisableBreakAndTypematicFor, keys)
}
