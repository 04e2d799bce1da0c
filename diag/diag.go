// Package diag defines a passive diagnostics sink: a unified visibility
// mechanism for a driver that never raises and never blocks its caller.
// Every method must be callable from both interrupt context and the
// foreground, and must itself never block: Sink's methods have no error
// return at all.
package diag

// Sink receives driver events. A no-op default (Nop) must always be
// available so a driver can be constructed without a sink; an optional
// buffered Recorder accumulates events into a ring for later offline
// dump.
type Sink interface {
	PacketDidNotStartWithZero()
	ParityError()
	PacketDidNotEndWithOne()
	SendFrameError()
	BufferOverflow()
	ClockLineGlitch(bitsReceived int)
	IncorrectResponse(got, expected byte)
	NoResponse(expected byte)
	NoTranslationForKey(isExtended bool, code byte)
	StartupFailure()
	SentByte(b byte)
	ReceivedByte(b byte)
}

// Nop is the no-op default sink.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) PacketDidNotStartWithZero()                     {}
func (nopSink) ParityError()                                   {}
func (nopSink) PacketDidNotEndWithOne()                        {}
func (nopSink) SendFrameError()                                {}
func (nopSink) BufferOverflow()                                {}
func (nopSink) ClockLineGlitch(bitsReceived int)               {}
func (nopSink) IncorrectResponse(got, expected byte)           {}
func (nopSink) NoResponse(expected byte)                       {}
func (nopSink) NoTranslationForKey(isExtended bool, code byte) {}
func (nopSink) StartupFailure()                                {}
func (nopSink) SentByte(b byte)                                {}
func (nopSink) ReceivedByte(b byte)                            {}

var _ Sink = Nop

// Multi fans events out to more than one Sink, in call order. Grounded
// on the same "plural composition of a single-purpose interface" shape
// as io.MultiWriter, applied to this package's Sink instead.
type Multi []Sink

func (m Multi) PacketDidNotStartWithZero() {
	for _, s := range m {
		s.PacketDidNotStartWithZero()
	}
}

func (m Multi) ParityError() {
	for _, s := range m {
		s.ParityError()
	}
}

func (m Multi) PacketDidNotEndWithOne() {
	for _, s := range m {
		s.PacketDidNotEndWithOne()
	}
}

func (m Multi) SendFrameError() {
	for _, s := range m {
		s.SendFrameError()
	}
}

func (m Multi) BufferOverflow() {
	for _, s := range m {
		s.BufferOverflow()
	}
}

func (m Multi) ClockLineGlitch(bitsReceived int) {
	for _, s := range m {
		s.ClockLineGlitch(bitsReceived)
	}
}

func (m Multi) IncorrectResponse(got, expected byte) {
	for _, s := range m {
		s.IncorrectResponse(got, expected)
	}
}

func (m Multi) NoResponse(expected byte) {
	for _, s := range m {
		s.NoResponse(expected)
	}
}

func (m Multi) NoTranslationForKey(isExtended bool, code byte) {
	for _, s := range m {
		s.NoTranslationForKey(isExtended, code)
	}
}

func (m Multi) StartupFailure() {
	for _, s := range m {
		s.StartupFailure()
	}
}

func (m Multi) SentByte(b byte) {
	for _, s := range m {
		s.SentByte(b)
	}
}

func (m Multi) ReceivedByte(b byte) {
	for _, s := range m {
		s.ReceivedByte(b)
	}
}

var _ Sink = Multi(nil)
