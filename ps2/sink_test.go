package ps2

import "github.com/ps2drv/ps2kbd/diag"

// recordingSink is a diag.Sink test double: each event type has an
// optional callback, left nil for events a given test doesn't care
// about.
type recordingSink struct {
	onPacketDidNotStartWithZero func()
	onParityError               func()
	onPacketDidNotEndWithOne    func()
	onSendFrameError            func()
	onBufferOverflow            func()
	onClockLineGlitch           func(bitsReceived int)
	onIncorrectResponse         func(got, expected byte)
	onNoResponse                func(expected byte)
	onNoTranslationForKey       func(isExtended bool, code byte)
	onStartupFailure            func()
	onSentByte                  func(b byte)
	onReceivedByte              func(b byte)
}

func (s *recordingSink) PacketDidNotStartWithZero() {
	if s.onPacketDidNotStartWithZero != nil {
		s.onPacketDidNotStartWithZero()
	}
}

func (s *recordingSink) ParityError() {
	if s.onParityError != nil {
		s.onParityError()
	}
}

func (s *recordingSink) PacketDidNotEndWithOne() {
	if s.onPacketDidNotEndWithOne != nil {
		s.onPacketDidNotEndWithOne()
	}
}

func (s *recordingSink) SendFrameError() {
	if s.onSendFrameError != nil {
		s.onSendFrameError()
	}
}

func (s *recordingSink) BufferOverflow() {
	if s.onBufferOverflow != nil {
		s.onBufferOverflow()
	}
}

func (s *recordingSink) ClockLineGlitch(bitsReceived int) {
	if s.onClockLineGlitch != nil {
		s.onClockLineGlitch(bitsReceived)
	}
}

func (s *recordingSink) IncorrectResponse(got, expected byte) {
	if s.onIncorrectResponse != nil {
		s.onIncorrectResponse(got, expected)
	}
}

func (s *recordingSink) NoResponse(expected byte) {
	if s.onNoResponse != nil {
		s.onNoResponse(expected)
	}
}

func (s *recordingSink) NoTranslationForKey(isExtended bool, code byte) {
	if s.onNoTranslationForKey != nil {
		s.onNoTranslationForKey(isExtended, code)
	}
}

func (s *recordingSink) StartupFailure() {
	if s.onStartupFailure != nil {
		s.onStartupFailure()
	}
}

func (s *recordingSink) SentByte(b byte) {
	if s.onSentByte != nil {
		s.onSentByte(b)
	}
}

func (s *recordingSink) ReceivedByte(b byte) {
	if s.onReceivedByte != nil {
		s.onReceivedByte(b)
	}
}

var _ diag.Sink = (*recordingSink)(nil)
