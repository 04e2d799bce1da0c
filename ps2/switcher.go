package ps2

// beginSend executes the request-to-send inhibit sequence, arms the
// transmitter with b, and returns once the keyboard is free to generate
// the clock edges that will drive it. It is foreground-only and the
// driver enforces single-outstanding transmissions: the caller (the
// command sequencer) must not call beginSend again until the previous
// transmission's 12 bits have completed and the receiver has been
// re-armed.
func (d *Device) beginSend(b byte) error {
	// 1. Uninstall the clock-edge interrupt.
	d.platform.UninstallClockInterrupt()

	// 2. Drive clock low and inhibit for the configured duration.
	if err := d.platform.DriveClockLow(); err != nil {
		return err
	}
	d.platform.BusyWaitMicros(d.cfg.InhibitDuration)

	// 3. Load the transmitter state; clear framing-error and the output
	// buffer.
	d.tx.load(b)
	d.platform.CriticalSection(func() {
		d.rx.clearFramingError()
		d.out.clear()
	})

	// 4. Install the transmitter interrupt handler on the clock pin.
	if err := d.platform.InstallClockInterrupt(d.tx.onFallingEdge); err != nil {
		return err
	}

	// 5. Drive data low (request-to-send).
	if err := d.platform.DriveDataLow(); err != nil {
		return err
	}

	// 6. Release clock.
	return d.platform.ConfigureClockInput()
}

// rearmReceiver clears framing-error, resets the bit counter/accumulator
// /parity, clears the output buffer, and installs the receiver interrupt
// handler. Called by the transmitter after bit 11, and by the recovery
// path in sequencer.go.
func (d *Device) rearmReceiver() {
	d.platform.CriticalSection(func() {
		d.rx.reset()
		d.out.clear()
	})
	d.platform.InstallClockInterrupt(d.onFallingEdgeReceive)
}

// onFallingEdgeReceive samples the data line and timestamps the edge
// before handing it to the receiver state machine: it samples the data
// pin once, immediately, since the valid window is narrow.
func (d *Device) onFallingEdgeReceive() {
	data := d.platform.SampleData()
	now := d.platform.Micros()
	d.rx.onFallingEdge(data, now)
}
