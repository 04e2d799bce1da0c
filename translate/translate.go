// Package translate names the contract between the driver and whatever
// consumes its decoded scan codes. It holds no translation table: turning
// a scan code into ASCII or a HID usage code is out of scope, left to a
// caller built on top of these two interfaces.
package translate

import "github.com/ps2drv/ps2kbd/ps2"

// ScanCodeReader is the read side a translator pulls from. *ps2.Device
// satisfies it; tests can substitute a fake that replays a fixed
// sequence.
type ScanCodeReader interface {
	ReadScanCode() ps2.ScanCode
}

// Sink is what a translator feeds decoded scan codes to. A caller
// interested only in raw bytes can implement it directly; a caller
// building a key-event stream wraps it with its own state (e.g. tracking
// the extended-prefix and break-prefix bytes, or the pause-key multi-byte
// sequence 0xE1 0x14 0x77, across calls).
type Sink interface {
	HandleScanCode(ps2.ScanCode)
}

// Null is a Sink that discards every scan code.
var Null Sink = nullSink{}

type nullSink struct{}

func (nullSink) HandleScanCode(ps2.ScanCode) {}

var _ Sink = Null
