package ps2

import "time"

// Level is the sampled or driven state of an open-collector line. High is
// the pulled-up, undriven state.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Platform is the capability set the core protocol engine consumes from
// its host environment. It is the only boundary between the
// hardware-agnostic core and a concrete microcontroller or bitbang
// adapter; see hostps2/periphgpio and hostps2/ftdibb for two concrete
// implementations, grounded respectively on periph.io/x/periph's GPIO
// registry and on periph.io/x/extra/hostextra/d2xx's FTDI bitbang mode.
//
// From interrupt context the receiver's handler calls only SampleData and
// Micros. The transmitter's handler also calls ConfigureDataInput,
// DriveDataLow and SampleData, and on its last bit re-arms the receiver
// through CriticalSection and InstallClockInterrupt. No other method is
// called from interrupt context.
type Platform interface {
	// ConfigureDataInput and ConfigureClockInput configure their pin as
	// input with an internal pull-up,
	// matching the PS/2 bus's open-collector idle-high convention.
	ConfigureDataInput() error
	ConfigureClockInput() error

	// DriveDataLow and DriveClockLow assert the line low (the only level
	// the host ever actively drives on an open-collector bus).
	DriveDataLow() error
	DriveClockLow() error

	// SampleData and SampleClock read the instantaneous line level.
	// SampleData must be fast: the keyboard's data-valid window is only
	// about 30µs wide.
	SampleData() Level
	SampleClock() Level

	// InstallClockInterrupt arms handler to run on every falling edge of
	// the clock line, replacing any previously installed handler.
	// UninstallClockInterrupt disarms it. Neither blocks past the
	// installation/removal itself.
	InstallClockInterrupt(handler func()) error
	UninstallClockInterrupt()

	// Micros and Millis are monotonic, wraparound-tolerant clocks.
	Micros() uint32
	Millis() uint32

	// BusyWaitMicros blocks the calling goroutine for approximately d,
	// used only for the ~100-120µs inhibit pulse of the direction
	// switcher. d is always under a millisecond.
	BusyWaitMicros(d time.Duration)

	// CriticalSection runs fn with interrupts disabled (or, on a
	// goroutine-based emulation, with the clock interrupt handler
	// excluded). fn must be short: it brackets the multi-variable
	// head/tail reads in pop/peek/clear and the multi-field resets on the
	// error-recovery path.
	CriticalSection(fn func())
}

// Config holds construction-time tunables. Zero value is not valid; use
// DefaultConfig.
type Config struct {
	// BufferCapacity is the output ring buffer's slot count; a
	// compile-time or construction-time constant, typically 1, 4 or 16.
	BufferCapacity int

	// InhibitDuration is how long the direction switcher holds clock low
	// before asserting request-to-send (≥100µs; 120µs recommended).
	InhibitDuration time.Duration

	// AckTimeout bounds sendData's wait for the immediate ACK reply
	// (≈10ms).
	AckTimeout time.Duration

	// StartupTimeout bounds awaitStartup's wait for the BAT sentinel
	// (default 750ms).
	StartupTimeout time.Duration

	// ResetTimeout bounds reset's wait for the BAT sentinel after sending
	// the reset command (default 1000ms).
	ResetTimeout time.Duration

	// GlitchSettleMicros is the "time since the last framing failure"
	// threshold below which recovery defers rather than resending.
	GlitchSettleMicros uint32

	// ResendBitThreshold is the in-progress bit count above which
	// recovery treats an empty read as a real, partially-received frame
	// rather than a spurious clock glitch.
	ResendBitThreshold int
}

// DefaultConfig returns reasonable defaults for all tunables.
func DefaultConfig() Config {
	return Config{
		BufferCapacity:     4,
		InhibitDuration:    120 * time.Microsecond,
		AckTimeout:         10 * time.Millisecond,
		StartupTimeout:     750 * time.Millisecond,
		ResetTimeout:       1000 * time.Millisecond,
		GlitchSettleMicros: 200,
		ResendBitThreshold: 3,
	}
}
