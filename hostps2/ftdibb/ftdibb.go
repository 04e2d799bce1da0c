// Package ftdibb implements ps2.Platform over an FTDI FT232R/FT232H's
// synchronous bit-bang GPIO, letting the driver run against a real
// keyboard from a desktop host through a USB-TTL breakout instead of a
// microcontroller's native pins.
//
// periph.io/x/extra/hostextra/d2xx exposes these pins as ordinary
// gpio.PinIO values, but its own doc comment on syncPin says edge
// triggering is not supported: WaitForEdge always returns false. This
// package compensates with a dedicated polling goroutine that samples
// the clock line and synthesizes a falling-edge callback on every
// High-to-Low transition it observes.
package ftdibb

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/extra/hostextra/d2xx"
	"periph.io/x/periph/conn/gpio"

	"github.com/ps2drv/ps2kbd/ps2"
)

// PollInterval is how often the background goroutine samples the clock
// line for a synthesized falling edge. The keyboard clock idles around
// 10-16kHz, so a sample well under one bit period is needed to not miss
// an edge.
const PollInterval = 10 * time.Microsecond

// Platform drives a PS/2 bus over two pins of an FTDI device's
// synchronous bit-bang header.
type Platform struct {
	dev      d2xx.Dev
	dataPin  gpio.PinIO
	clockPin gpio.PinIO
	start    time.Time

	mu      sync.Mutex
	handler func()
	polling bool
	stop    chan struct{}
}

// Open finds dataPinName and clockPinName (e.g. "D0", "D1") on dev's
// header, matching the convention hostextra/d2xx/driver.go uses to
// register a device's GPIO header under gpioreg. It does not configure
// the pins; ConfigureDataInput and ConfigureClockInput do that.
func Open(dev d2xx.Dev, dataPinName, clockPinName string) (*Platform, error) {
	var dataPin, clockPin gpio.PinIO
	for _, pin := range dev.Header() {
		switch pin.Name() {
		case dataPinName:
			dataPin = pin
		case clockPinName:
			clockPin = pin
		}
	}
	if dataPin == nil {
		return nil, fmt.Errorf("ftdibb: no such pin %q on %s", dataPinName, dev)
	}
	if clockPin == nil {
		return nil, fmt.Errorf("ftdibb: no such pin %q on %s", clockPinName, dev)
	}
	p := &Platform{dev: dev, dataPin: dataPin, clockPin: clockPin, start: time.Now()}
	return p, nil
}

// ConfigureDataInput implements ps2.Platform.
func (p *Platform) ConfigureDataInput() error {
	return p.dataPin.In(gpio.PullUp, gpio.NoEdge)
}

// ConfigureClockInput implements ps2.Platform.
func (p *Platform) ConfigureClockInput() error {
	return p.clockPin.In(gpio.PullUp, gpio.NoEdge)
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

// InstallClockInterrupt implements ps2.Platform, starting the polling
// goroutine on first use and just rearming the handler on later calls.
func (p *Platform) InstallClockInterrupt(handler func()) error {
	p.mu.Lock()
	p.handler = handler
	already := p.polling
	if !already {
		p.polling = true
		p.stop = make(chan struct{})
	}
	p.mu.Unlock()
	if !already {
		go p.pollClock()
	}
	return nil
}

// UninstallClockInterrupt implements ps2.Platform.
func (p *Platform) UninstallClockInterrupt() {
	p.mu.Lock()
	p.handler = nil
	p.mu.Unlock()
}

// Close stops the polling goroutine. It is not part of ps2.Platform: the
// core protocol engine has no notion of tearing down its platform.
func (p *Platform) Close() {
	p.mu.Lock()
	stop := p.stop
	p.polling = false
	p.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

func (p *Platform) pollClock() {
	p.mu.Lock()
	stop := p.stop
	p.mu.Unlock()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	last := gpio.High
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		level := p.clockPin.Read()
		falling := last == gpio.High && level == gpio.Low
		last = level
		if !falling {
			continue
		}
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

// BusyWaitMicros implements ps2.Platform. USB round trips to the FTDI
// chip already dwarf the requested delay, so a plain spin is as good as
// anything finer-grained.
func (p *Platform) BusyWaitMicros(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// CriticalSection implements ps2.Platform by excluding the polling
// goroutine for the duration of fn.
func (p *Platform) CriticalSection(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

var _ ps2.Platform = (*Platform)(nil)
