package ps2

import "testing"

func TestBufferPushPop(t *testing.T) {
	b := newBuffer(4)
	if v := b.pop(); !v.IsNone() {
		t.Fatalf("pop on empty buffer = %v, want none", v)
	}
	b.push(0x1C)
	b.push(0x32)
	if v := b.peek(); v.RawByteOrFatal(t) != 0x1C {
		t.Fatalf("peek = %v, want 0x1C", v)
	}
	if v := b.pop(); v.RawByteOrFatal(t) != 0x1C {
		t.Fatalf("pop = %v, want 0x1C", v)
	}
	if v := b.pop(); v.RawByteOrFatal(t) != 0x32 {
		t.Fatalf("pop = %v, want 0x32", v)
	}
	if v := b.pop(); !v.IsNone() {
		t.Fatalf("pop after draining = %v, want none", v)
	}
}

func TestBufferFIFOOrder(t *testing.T) {
	b := newBuffer(8)
	want := []byte{1, 2, 3, 4, 5}
	for _, v := range want {
		b.push(v)
	}
	for _, w := range want {
		got := b.pop()
		if v := got.RawByteOrFatal(t); v != w {
			t.Fatalf("pop = %#02x, want %#02x", v, w)
		}
	}
}

func TestBufferOverflowDropsOldest(t *testing.T) {
	b := newBuffer(2)
	b.push(1)
	b.push(2)
	overflowed := b.push(3)
	if !overflowed {
		t.Fatalf("push into full buffer did not report overflow")
	}
	if got := b.overflowCount(); got != 1 {
		t.Fatalf("overflowCount = %d, want 1", got)
	}
	// oldest (1) was dropped; 2 and 3 remain in order.
	if v := b.pop(); v.RawByteOrFatal(t) != 2 {
		t.Fatalf("pop = %v, want 2", v)
	}
	if v := b.pop(); v.RawByteOrFatal(t) != 3 {
		t.Fatalf("pop = %v, want 3", v)
	}
}

func TestBufferCapacityOne(t *testing.T) {
	b := newBuffer(1)
	b.push(0xAA)
	if v := b.pop(); v.RawByteOrFatal(t) != 0xAA {
		t.Fatalf("pop = %v, want 0xAA", v)
	}
	if v := b.pop(); !v.IsNone() {
		t.Fatalf("pop after single-slot drain = %v, want none", v)
	}
}

func TestBufferClear(t *testing.T) {
	b := newBuffer(4)
	b.push(1)
	b.push(2)
	b.clear()
	if v := b.pop(); !v.IsNone() {
		t.Fatalf("pop after clear = %v, want none", v)
	}
}

// RawByteOrFatal is a test-only convenience that fails the test if s has
// no raw byte, otherwise returns it.
func (s ScanCode) RawByteOrFatal(t *testing.T) byte {
	t.Helper()
	v, ok := s.RawByte()
	if !ok {
		t.Fatalf("ScanCode %v has no raw byte", s)
	}
	return v
}
