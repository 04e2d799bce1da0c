package ps2

import "time"

// fakePlatform is an in-process stand-in for a microcontroller's pins,
// clock interrupt and timers: single-goroutine, so CriticalSection need
// not actually disable anything, and InstallClockInterrupt just records
// the handler for the test to invoke directly.
type fakePlatform struct {
	dataLevel  Level
	clockLevel Level

	dataInput  bool
	clockInput bool
	dataLow    bool
	clockLow   bool

	clockHandler func()

	micros uint32
	millis uint32

	// millisTick, when nonzero, is added to millis on every Millis() call,
	// simulating real time passing across a polling loop's iterations
	// without an actual sleep. Used to drive the millisecond counter
	// through a wraparound deterministically.
	millisTick uint32

	configureErr error
	driveErr     error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		dataLevel:  High,
		clockLevel: High,
		dataInput:  true,
		clockInput: true,
	}
}

func (p *fakePlatform) ConfigureDataInput() error {
	if p.configureErr != nil {
		return p.configureErr
	}
	p.dataInput = true
	p.dataLow = false
	return nil
}

func (p *fakePlatform) ConfigureClockInput() error {
	if p.configureErr != nil {
		return p.configureErr
	}
	p.clockInput = true
	p.clockLow = false
	return nil
}

func (p *fakePlatform) DriveDataLow() error {
	if p.driveErr != nil {
		return p.driveErr
	}
	p.dataInput = false
	p.dataLow = true
	return nil
}

func (p *fakePlatform) DriveClockLow() error {
	if p.driveErr != nil {
		return p.driveErr
	}
	p.clockInput = false
	p.clockLow = true
	return nil
}

// SampleData returns the level the test has set directly (simulating the
// keyboard's drive) unless the host itself is driving data low.
func (p *fakePlatform) SampleData() Level {
	if p.dataLow {
		return Low
	}
	return p.dataLevel
}

func (p *fakePlatform) SampleClock() Level {
	return p.clockLevel
}

func (p *fakePlatform) InstallClockInterrupt(handler func()) error {
	p.clockHandler = handler
	return nil
}

func (p *fakePlatform) UninstallClockInterrupt() {
	p.clockHandler = nil
}

func (p *fakePlatform) Micros() uint32 { return p.micros }

func (p *fakePlatform) Millis() uint32 {
	p.millis += p.millisTick
	return p.millis
}

func (p *fakePlatform) BusyWaitMicros(d time.Duration) {
	p.micros += uint32(d.Microseconds())
}

func (p *fakePlatform) CriticalSection(fn func()) {
	fn()
}

// advance moves both clocks forward by d, useful for timeout tests.
func (p *fakePlatform) advance(d time.Duration) {
	p.micros += uint32(d.Microseconds())
	p.millis += uint32(d.Milliseconds())
}

// edge fires the currently installed clock handler, first setting the
// data line to the level the keyboard would be driving for this bit.
func (p *fakePlatform) edge(data Level) {
	p.dataLevel = data
	if p.clockHandler != nil {
		p.clockHandler()
	}
}

var _ Platform = (*fakePlatform)(nil)
