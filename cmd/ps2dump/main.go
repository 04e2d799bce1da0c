// ps2dump opens a PS/2 keyboard port on one of two backends, watches it
// for a while, and renders what the diagnostics recorder saw: sent and
// received bytes, framing errors, glitches, and anything else the
// driver's diag.Sink surfaced along the way.
//
// It never calls into translate: there is no scan-code-to-key table
// here, only raw wire-level visibility.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/maruel/ansi256"

	"github.com/ps2drv/ps2kbd/diag"
	"github.com/ps2drv/ps2kbd/hostps2/ftdibb"
	"github.com/ps2drv/ps2kbd/hostps2/periphgpio"
	"github.com/ps2drv/ps2kbd/ps2"

	extraD2xx "periph.io/x/extra/hostextra/d2xx"
	"periph.io/x/periph/host"
)

func mainImpl() error {
	backend := flag.String("backend", "periphgpio", "platform backend: periphgpio or ftdibb")
	dataPin := flag.String("data-pin", "GPIO17", "data pin name (periphgpio) or header pin name (ftdibb)")
	clockPin := flag.String("clock-pin", "GPIO27", "clock pin name (periphgpio) or header pin name (ftdibb)")
	adapter := flag.Int("adapter", 0, "index into d2xx.All() to use, for -backend=ftdibb")
	listAdapters := flag.Bool("list-adapters", false, "list FTDI adapters found on the USB bus and exit")
	run := flag.Duration("run", 5*time.Second, "how long to watch the port before dumping")
	capacity := flag.Int("record", 256, "diagnostics recorder ring buffer capacity")
	verbose := flag.Bool("v", false, "log every driver event live, in addition to the final dump")
	noColor := flag.Bool("no-color", false, "disable ANSI colorization of the dump")
	flag.Parse()

	log.SetFlags(log.Lmicroseconds)
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	if *listAdapters {
		return listFTDIAdapters()
	}

	platform, closer, err := openPlatform(*backend, *dataPin, *clockPin, *adapter)
	if err != nil {
		return err
	}
	defer closer()

	recorder := diag.NewRecorder(*capacity)
	sink := diag.Sink(recorder)
	if *verbose {
		sink = diag.Multi{recorder, logSink{}}
	}

	cfg := ps2.DefaultConfig()
	d := ps2.New(platform, cfg, sink)
	if err := d.Begin(); err != nil {
		return fmt.Errorf("ps2dump: begin: %w", err)
	}

	fmt.Printf("Watching for %s on backend %q (data=%s clock=%s)...\n", *run, *backend, *dataPin, *clockPin)
	deadline := time.Now().Add(*run)
	for time.Now().Before(deadline) {
		code := d.ReadScanCode()
		if code.IsNone() {
			time.Sleep(time.Millisecond)
			continue
		}
		log.Printf("scan code: %s", code)
	}

	w := dumpWriter(*noColor)
	dump(w, recorder.Dump())
	return nil
}

func openPlatform(backend, dataPin, clockPin string, adapterIndex int) (ps2.Platform, func(), error) {
	switch backend {
	case "periphgpio":
		p, err := periphgpio.Open(dataPin, clockPin)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	case "ftdibb":
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("ps2dump: host.Init: %w", err)
		}
		all := extraD2xx.All()
		if adapterIndex < 0 || adapterIndex >= len(all) {
			return nil, nil, fmt.Errorf("ps2dump: adapter index %d out of range, found %d device(s)", adapterIndex, len(all))
		}
		dev := all[adapterIndex]
		p, err := ftdibb.Open(dev, dataPin, clockPin)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("ps2dump: unknown backend %q, want periphgpio or ftdibb", backend)
	}
}

func listFTDIAdapters() error {
	adapters, err := ftdibb.Discover()
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		fmt.Println("No FTDI adapters found.")
		return nil
	}
	for i, a := range adapters {
		fmt.Printf("[%d] %s\n", i, a)
	}
	return nil
}

func dumpWriter(noColor bool) *eventWriter {
	colorize := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	return &eventWriter{w: colorable.NewColorableStdout(), colorize: colorize}
}

func dump(w *eventWriter, events []diag.Event) {
	fmt.Printf("%d event(s) recorded:\n", len(events))
	for _, e := range events {
		w.writeEvent(e)
	}
}

// eventWriter renders one diag.Event per line, prefixed by an
// ansi256-colorized block keyed by EventKind, the same "colorize by
// value" idiom devices/screen.go uses for pixels.
type eventWriter struct {
	w        io.Writer
	colorize bool
}

func (w *eventWriter) writeEvent(e diag.Event) {
	label, c := describeEvent(e)
	if w.colorize {
		fmt.Fprintf(w.w, "%s\033[0m %s\n", ansi256.Default.Block(c), label)
		return
	}
	fmt.Fprintln(w.w, label)
}

// describeEvent renders one Event as a human-readable label and assigns
// it a color: red for protocol errors, overflow and startup failure,
// yellow for clock glitches and unexpected or missing responses, green
// for sent bytes, cyan for received bytes, white for everything else.
func describeEvent(e diag.Event) (string, color.NRGBA) {
	red := color.NRGBA{R: 220, A: 255}
	yellow := color.NRGBA{R: 200, G: 170, A: 255}
	green := color.NRGBA{G: 180, A: 255}
	cyan := color.NRGBA{G: 160, B: 180, A: 255}
	white := color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	switch e.Kind {
	case diag.EventPacketDidNotStartWithZero:
		return "packet did not start with 0", red
	case diag.EventParityError:
		return "parity error", red
	case diag.EventPacketDidNotEndWithOne:
		return "packet did not end with 1", red
	case diag.EventSendFrameError:
		return "send frame error (missing ack)", red
	case diag.EventBufferOverflow:
		return "output buffer overflow, oldest byte dropped", red
	case diag.EventClockLineGlitch:
		return fmt.Sprintf("clock line glitch recovered, %d bit(s) were in progress", e.BitsReceived), yellow
	case diag.EventIncorrectResponse:
		return fmt.Sprintf("incorrect response: got %#02x, expected %#02x", e.Byte, e.Expected), yellow
	case diag.EventNoResponse:
		return fmt.Sprintf("no response, expected %#02x", e.Expected), yellow
	case diag.EventNoTranslationForKey:
		return fmt.Sprintf("no translation for key %#02x (extended=%v)", e.Byte, e.IsExtended), white
	case diag.EventStartupFailure:
		return "startup failure: self-test failed or its passed sentinel never arrived", red
	case diag.EventSentByte:
		return fmt.Sprintf("sent %#02x", e.Byte), green
	case diag.EventReceivedByte:
		return fmt.Sprintf("received %#02x", e.Byte), cyan
	default:
		return fmt.Sprintf("unknown event kind %d", e.Kind), white
	}
}

// logSink forwards every driver event to the standard logger, for -v.
type logSink struct{}

func (logSink) PacketDidNotStartWithZero() { log.Println("packet did not start with 0") }
func (logSink) ParityError()               { log.Println("parity error") }
func (logSink) PacketDidNotEndWithOne()    { log.Println("packet did not end with 1") }
func (logSink) SendFrameError()            { log.Println("send frame error") }
func (logSink) BufferOverflow()            { log.Println("buffer overflow") }
func (logSink) ClockLineGlitch(bitsReceived int) {
	log.Printf("clock line glitch, %d bit(s) in progress", bitsReceived)
}
func (logSink) IncorrectResponse(got, expected byte) {
	log.Printf("incorrect response: got %#02x, expected %#02x", got, expected)
}
func (logSink) NoResponse(expected byte) { log.Printf("no response, expected %#02x", expected) }
func (logSink) NoTranslationForKey(isExtended bool, code byte) {
	log.Printf("no translation for key %#02x (extended=%v)", code, isExtended)
}
func (logSink) StartupFailure()     { log.Println("startup failure") }
func (logSink) SentByte(b byte)     { log.Printf("sent %#02x", b) }
func (logSink) ReceivedByte(b byte) { log.Printf("received %#02x", b) }

var _ diag.Sink = logSink{}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ps2dump: %s.\n", err)
		os.Exit(1)
	}
}
