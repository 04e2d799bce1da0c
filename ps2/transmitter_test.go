package ps2

import "testing"

func TestTransmitterDrivesBitsInOrder(t *testing.T) {
	p := newFakePlatform()
	rearmed := false
	tx := newTransmitter(p, nil, func() { rearmed = true })
	tx.load(0x3A)

	// Bit 0: device samples the start bit the host is already holding low;
	// the transmitter drives nothing.
	tx.onFallingEdge()

	var drivenLow []bool
	for bit := 0; bit < 8; bit++ {
		p.dataLow = false
		p.dataInput = true
		tx.onFallingEdge()
		drivenLow = append(drivenLow, !p.dataInput)
	}
	for bit := 0; bit < 8; bit++ {
		want := 0x3A&(1<<uint(bit)) == 0 // low asserted iff bit is 0
		if drivenLow[bit] != want {
			t.Fatalf("bit %d: drove low = %v, want %v", bit, drivenLow[bit], want)
		}
	}

	// Parity bit, then bit 10 (host releases data; device drives stop high).
	tx.onFallingEdge()
	p.dataLevel = High
	tx.onFallingEdge()

	if rearmed {
		t.Fatalf("rearm called before bit 11")
	}
	tx.onFallingEdge() // bit 11: sample ack, rearm
	if !rearmed {
		t.Fatalf("rearm not called after bit 11")
	}
}

func TestTransmitterParityIsOdd(t *testing.T) {
	p := newFakePlatform()
	tx := newTransmitter(p, nil, func() {})
	tx.load(0x01) // single bit set: one "1" among data bits

	tx.onFallingEdge() // start
	for bit := 0; bit < 8; bit++ {
		p.dataLow = false
		p.dataInput = true
		tx.onFallingEdge()
	}
	// One data bit was 1 (odd count already), so the parity bit itself
	// must be 0 (driven low) to keep the 9-bit group's total odd.
	p.dataLow = false
	p.dataInput = true
	tx.onFallingEdge()
	if p.dataInput {
		t.Fatalf("parity bit released for a single-set-bit byte, want driven low")
	}
}

func TestTransmitterFlagsMissingAck(t *testing.T) {
	p := newFakePlatform()
	var sawFrameError bool
	sink := &recordingSink{onSendFrameError: func() { sawFrameError = true }}
	tx := newTransmitter(p, sink, func() {})
	tx.load(0x00)
	for i := 0; i < 10; i++ {
		tx.onFallingEdge()
	}
	tx.onFallingEdge()  // stop bit: host releases data
	p.dataLevel = High  // device should ack with a low pulse; force the violation
	tx.onFallingEdge()  // ack sample
	if !sawFrameError {
		t.Fatalf("SendFrameError not reported for a missing ack pulse")
	}
}
