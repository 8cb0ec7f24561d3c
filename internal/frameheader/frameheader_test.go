package frameheader

import (
	"testing"

	"github.com/agmoss/mp3frame/internal/consts"
)

// rawHeader packs the fields raw, mirroring the 32-bit layout documented in
// mp3bits.py, for constructing test inputs without going through Encode.
func rawHeader(version, layer, protection, bitrateIdx, srIdx, padded, private, mode, modeExt, copyr, orig, emphasis int) []byte {
	b := make([]byte, 4)
	b[0] = 0xff
	b[1] = byte(0xe0 | (version << 3) | (layer << 1) | protection)
	b[2] = byte((bitrateIdx << 4) | (srIdx << 2) | (padded << 1) | private)
	b[3] = byte((mode << 6) | (modeExt << 4) | (copyr << 3) | (orig << 2) | emphasis)
	return b
}

func TestDecodeRejectsBadSync(t *testing.T) {
	data := rawHeader(3, 1, 1, 9, 0, 0, 0, 0, 0, 0, 0, 0)
	data[0] = 0x00
	if _, err := Decode(data); err == nil {
		t.Error("Decode should reject a header without the syncword")
	}
}

func TestDecodeFieldsMPEG1Layer3Stereo(t *testing.T) {
	data := rawHeader(3, 1, 1, 9, 0, 1, 0, 0, 0, 0, 1, 0)
	h, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if h.Version() != consts.Version1 {
		t.Errorf("Version() = %v, want Version1", h.Version())
	}
	if h.Layer() != consts.Layer3 {
		t.Errorf("Layer() = %v, want Layer3", h.Layer())
	}
	if h.Protected() {
		t.Error("Protected() should be false when protection_bit=1")
	}
	if h.BitrateIndex() != 9 {
		t.Errorf("BitrateIndex() = %d, want 9", h.BitrateIndex())
	}
	if !h.Padded() {
		t.Error("Padded() should be true")
	}
	if h.ChannelMode() != consts.ModeStereo {
		t.Errorf("ChannelMode() = %v, want ModeStereo", h.ChannelMode())
	}
	if h.Original() != 1 {
		t.Errorf("Original() = %d, want 1", h.Original())
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	data := rawHeader(2, 2, 0, 5, 1, 1, 1, 3, 2, 1, 1, 1)
	h, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := h.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := h.Bytes()
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("round-trip byte %d = %#x, want %#x", i, got[i], data[i])
		}
	}
}

func TestFrameSizeScenarioS1(t *testing.T) {
	// spec.md S1: [0xFF,0xFB,0x90,0x00] -> MPEG1 L3 128kbps 44100Hz stereo,
	// unprotected, unpadded -> frame_size 417.
	h, err := Decode([]byte{0xff, 0xfb, 0x90, 0x00})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	size, err := h.FrameSize()
	if err != nil {
		t.Fatalf("FrameSize: %v", err)
	}
	if size != 417 {
		t.Errorf("FrameSize() = %d, want 417", size)
	}
	br, err := h.Bitrate()
	if err != nil {
		t.Fatalf("Bitrate: %v", err)
	}
	if br != 128 {
		t.Errorf("Bitrate() = %d, want 128", br)
	}
	sr, err := h.SampleRate()
	if err != nil {
		t.Fatalf("SampleRate: %v", err)
	}
	if sr != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", sr)
	}
	if h.Protected() {
		t.Error("Protected() should be false (unprotected frame, protection_bit=1)")
	}
}

func TestSideInfoSizeOnlyForLayer3(t *testing.T) {
	l3 := rawHeader(3, 1, 1, 9, 0, 0, 0, 0, 0, 0, 0, 0)
	h, _ := Decode(l3)
	if got := h.SideInfoSize(); got != 32 {
		t.Errorf("SideInfoSize() for MPEG1 L3 stereo = %d, want 32", got)
	}

	l2 := rawHeader(3, 2, 1, 9, 0, 0, 0, 0, 0, 0, 0, 0)
	h2, _ := Decode(l2)
	if got := h2.SideInfoSize(); got != 0 {
		t.Errorf("SideInfoSize() for layer 2 = %d, want 0", got)
	}
}

func TestVersionAndLayerLabels(t *testing.T) {
	h, _ := Decode(rawHeader(0, 1, 1, 5, 0, 0, 0, 0, 0, 0, 0, 0)) // version 2.5
	if h.VersionLabel() != "2.5" {
		t.Errorf("VersionLabel() = %q, want %q", h.VersionLabel(), "2.5")
	}
	if h.LayerLabel() != "3" {
		t.Errorf("LayerLabel() = %q, want %q", h.LayerLabel(), "3")
	}
}
