// Package ps2 implements a host-side PS/2 keyboard wire protocol driver:
// the interrupt-driven frame receiver and transmitter, the
// request-to-send direction switcher, the lock-free output buffer
// bridging interrupt and foreground contexts, and the command/response
// sequencer and public surface layered on top.
//
// The package is hardware-agnostic: it consumes a Platform implementation
// for pin I/O, interrupt installation and timing, and knows nothing about
// any particular microcontroller or host adapter. See hostps2/periphgpio
// and hostps2/ftdibb for concrete bindings.
package ps2

import (
	"fmt"

	"github.com/ps2drv/ps2kbd/diag"
)

// State names the driver's lifecycle. It exists for diagnostics/logging
// only; a framing error never changes it.
type State int

const (
	StateUninitialised State = iota
	StateListening
	StateInhibiting
	StateTransmitting
	StateAwaitingAck
)

func (s State) String() string {
	switch s {
	case StateUninitialised:
		return "uninitialised"
	case StateListening:
		return "listening"
	case StateInhibiting:
		return "inhibiting"
	case StateTransmitting:
		return "transmitting"
	case StateAwaitingAck:
		return "awaiting-ack"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Device is a driver instance bound to one set of clock/data pins. It
// takes exclusive ownership of those pins and of the clock-edge interrupt
// vector for its lifetime; construct exactly one Device per physical
// keyboard port.
type Device struct {
	platform Platform
	cfg      Config
	diag     diag.Sink

	out *buffer
	rx  *receiver
	tx  *transmitter

	state State
}

// New constructs a Device bound to platform. It does not touch any pin or
// interrupt until Begin is called. sink may be nil, in which case
// diag.Nop is used.
func New(platform Platform, cfg Config, sink diag.Sink) *Device {
	if sink == nil {
		sink = diag.Nop
	}
	out := newBuffer(cfg.BufferCapacity)
	d := &Device{
		platform: platform,
		cfg:      cfg,
		diag:     sink,
		out:      out,
		rx:       newReceiver(out, sink),
	}
	d.tx = newTransmitter(platform, sink, d.rearmReceiver)
	return d
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return fmt.Sprintf("ps2(%s)", d.state)
}

// Begin configures both pins as input with pull-up and arms the receiver.
// It must be called exactly once before any other Device method.
func (d *Device) Begin() error {
	if err := d.platform.ConfigureDataInput(); err != nil {
		return fmt.Errorf("ps2: begin: data pin: %w", err)
	}
	if err := d.platform.ConfigureClockInput(); err != nil {
		return fmt.Errorf("ps2: begin: clock pin: %w", err)
	}
	d.rearmReceiver()
	d.state = StateListening
	return nil
}
