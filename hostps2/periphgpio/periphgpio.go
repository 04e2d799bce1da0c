// Package periphgpio implements ps2.Platform directly on top of two
// native GPIO pins, for running the driver on a Raspberry Pi or similar
// SBC. The clock line's falling edge is watched by a single background
// goroutine started on the first InstallClockInterrupt call; Install and
// Uninstall only swap which handler that goroutine invokes, the same way
// swapping a real microcontroller's interrupt vector doesn't reconfigure
// the pin itself.
package periphgpio

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
	_ "periph.io/x/periph/host/bcm283x" // registers Raspberry Pi pins under gpioreg

	"github.com/ps2drv/ps2kbd/ps2"
)

// Platform drives a PS/2 bus over two periph.io GPIO pins.
type Platform struct {
	dataPin  gpio.PinIO
	clockPin gpio.PinIO
	start    time.Time

	mu       sync.Mutex
	handler  func()
	watching bool
}

// Open looks up dataPinName and clockPinName in periph's GPIO registry
// (e.g. "GPIO17", "GPIO27" on a Raspberry Pi's bcm283x pins) and
// initializes periph's host drivers if they have not run yet.
func Open(dataPinName, clockPinName string) (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphgpio: %w", err)
	}
	data := gpioreg.ByName(dataPinName)
	if data == nil {
		return nil, fmt.Errorf("periphgpio: no such pin %q", dataPinName)
	}
	clock := gpioreg.ByName(clockPinName)
	if clock == nil {
		return nil, fmt.Errorf("periphgpio: no such pin %q", clockPinName)
	}
	return &Platform{dataPin: data, clockPin: clock, start: time.Now()}, nil
}

// ConfigureDataInput implements ps2.Platform.
func (p *Platform) ConfigureDataInput() error {
	return p.dataPin.In(gpio.PullUp, gpio.NoEdge)
}

// ConfigureClockInput implements ps2.Platform.
func (p *Platform) ConfigureClockInput() error {
	return p.clockPin.In(gpio.PullUp, gpio.FallingEdge)
}

// DriveDataLow implements ps2.Platform.
func (p *Platform) DriveDataLow() error {
	return p.dataPin.Out(gpio.Low)
}

// DriveClockLow implements ps2.Platform.
func (p *Platform) DriveClockLow() error {
	return p.clockPin.Out(gpio.Low)
}

// SampleData implements ps2.Platform.
func (p *Platform) SampleData() ps2.Level {
	return ps2.Level(p.dataPin.Read())
}

// SampleClock implements ps2.Platform.
func (p *Platform) SampleClock() ps2.Level {
	return ps2.Level(p.clockPin.Read())
}

// InstallClockInterrupt implements ps2.Platform. The first call starts
// the edge-watching goroutine; later calls just rearm the handler it
// invokes.
func (p *Platform) InstallClockInterrupt(handler func()) error {
	p.mu.Lock()
	p.handler = handler
	already := p.watching
	p.watching = true
	p.mu.Unlock()
	if !already {
		go p.watchClock()
	}
	return nil
}

// UninstallClockInterrupt implements ps2.Platform.
func (p *Platform) UninstallClockInterrupt() {
	p.mu.Lock()
	p.handler = nil
	p.mu.Unlock()
}

// watchClock blocks on the clock pin's falling edge for the lifetime of
// the Platform, invoking whichever handler is currently armed. Holding mu
// across the call keeps a handler's field accesses mutually exclusive
// with CriticalSection, the same guarantee a real interrupt-disable
// region gives the foreground.
func (p *Platform) watchClock() {
	for p.clockPin.WaitForEdge(-1) {
		p.mu.Lock()
		if h := p.handler; h != nil {
			h()
		}
		p.mu.Unlock()
	}
}

// Micros implements ps2.Platform.
func (p *Platform) Micros() uint32 {
	return uint32(time.Since(p.start).Microseconds())
}

// Millis implements ps2.Platform.
func (p *Platform) Millis() uint32 {
	return uint32(time.Since(p.start).Milliseconds())
}

// BusyWaitMicros implements ps2.Platform, using the same host.Nanospin
// spin-wait the bitbang I2C driver uses for its half-cycle delay: d is
// always sub-millisecond, too short for time.Sleep's scheduler-dependent
// wakeup to resolve reliably.
func (p *Platform) BusyWaitMicros(d time.Duration) {
	host.Nanospin(d)
}

// CriticalSection implements ps2.Platform by excluding the clock-watching
// goroutine for the duration of fn.
func (p *Platform) CriticalSection(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

var _ ps2.Platform = (*Platform)(nil)
