package bitfield

import "testing"

func TestFieldSingleByte(t *testing.T) {
	data := []byte{0xaf, 0x00}

	f, err := New(0, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := f.Get(data)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 5 { // 0xaf = 10101111, top 3 bits = 101 = 5
		t.Errorf("Get() = %d, want 5", got)
	}

	if err := f.Set(data, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ = f.Get(data)
	if got != 7 {
		t.Errorf("after Set(7), Get() = %d, want 7", got)
	}
	// the bottom 5 bits of byte 0 must be untouched
	if data[0]&0x1f != 0xaf&0x1f {
		t.Errorf("Set clobbered bits outside the field: got %08b", data[0])
	}
}

func TestFieldSpanningBytes(t *testing.T) {
	// a 12-bit field starting at bit 4: spans bytes 0 and 1.
	f, err := New(4, 12)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := make([]byte, 2)
	if err := f.Set(data, 0xabc); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := f.Get(data)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 0xabc {
		t.Errorf("Get() = %#x, want 0xabc", got)
	}
}

func TestFieldRoundTripAllWidths(t *testing.T) {
	for width := 0; width <= 32; width++ {
		for offset := 0; offset < 16; offset++ {
			f, err := New(offset, width)
			if err != nil {
				t.Fatalf("New(%d,%d): %v", offset, width, err)
			}
			data := make([]byte, (offset+width)/8+2)
			val := f.Max()
			if err := f.Set(data, val); err != nil {
				t.Fatalf("Set(%d,%d,%d): %v", offset, width, val, err)
			}
			got, err := f.Get(data)
			if err != nil {
				t.Fatalf("Get(%d,%d): %v", offset, width, err)
			}
			if got != val {
				t.Errorf("offset=%d width=%d: round-trip got %d, want %d", offset, width, got, val)
			}
		}
	}
}

func TestFieldPreservesNeighboringFields(t *testing.T) {
	// lay out header-like bitrate_index(4) + samplerate_index(2) + padded(1)
	// + private(1) within one byte and verify each field is independent.
	data := make([]byte, 1)
	brIdx, _ := New(0, 4)
	srIdx, _ := New(4, 2)
	padded, _ := New(6, 1)
	private, _ := New(7, 1)

	brIdx.Set(data, 0xb)
	srIdx.Set(data, 0x2)
	padded.Set(data, 1)
	private.Set(data, 0)

	if v, _ := brIdx.Get(data); v != 0xb {
		t.Errorf("brIdx = %d, want 0xb", v)
	}
	if v, _ := srIdx.Get(data); v != 0x2 {
		t.Errorf("srIdx = %d, want 0x2", v)
	}
	if v, _ := padded.Get(data); v != 1 {
		t.Errorf("padded = %d, want 1", v)
	}
	if v, _ := private.Get(data); v != 0 {
		t.Errorf("private = %d, want 0", v)
	}
}

func TestNewRejectsOutOfRange(t *testing.T) {
	if _, err := New(-1, 4); err == nil {
		t.Error("New(-1, 4) should fail")
	}
	if _, err := New(0, 33); err == nil {
		t.Error("New(0, 33) should fail")
	}
}

func TestSetRejectsOverflow(t *testing.T) {
	f, _ := New(0, 4)
	data := make([]byte, 1)
	if err := f.Set(data, 16); err == nil {
		t.Error("Set(16) into a 4-bit field should fail")
	}
}

func TestGetRejectsShortData(t *testing.T) {
	f, _ := New(20, 12)
	if _, err := f.Get(make([]byte, 2)); err == nil {
		t.Error("Get should fail when data is too short for the field")
	}
}
