// Package frameheader decodes and encodes the 32-bit MPEG audio frame
// header: syncword plus the eleven bitfields that follow it.
package frameheader

import (
	"github.com/agmoss/mp3frame/internal/bitfield"
	"github.com/agmoss/mp3frame/internal/consts"
	"github.com/agmoss/mp3frame/internal/tables"
)

var (
	fSync            bitfield.Field
	fVersion         bitfield.Field
	fLayer           bitfield.Field
	fProtection      bitfield.Field
	fBitrateIndex    bitfield.Field
	fSamplerateIndex bitfield.Field
	fPadded          bitfield.Field
	fPrivate         bitfield.Field
	fChannelMode     bitfield.Field
	fModeExtension   bitfield.Field
	fCopyright       bitfield.Field
	fOriginal        bitfield.Field
	fEmphasis        bitfield.Field
)

func mustField(offset, width int) bitfield.Field {
	f, err := bitfield.New(offset, width)
	if err != nil {
		panic(err)
	}
	return f
}

func init() {
	fSync = mustField(0, 11)
	fVersion = mustField(11, 2)
	fLayer = mustField(13, 2)
	fProtection = mustField(15, 1)
	fBitrateIndex = mustField(16, 4)
	fSamplerateIndex = mustField(20, 2)
	fPadded = mustField(22, 1)
	fPrivate = mustField(23, 1)
	fChannelMode = mustField(24, 2)
	fModeExtension = mustField(26, 2)
	fCopyright = mustField(28, 1)
	fOriginal = mustField(29, 1)
	fEmphasis = mustField(30, 2)
}

const syncMask = 0xffe00000

// FrameHeader is the 4-byte MPEG audio frame header, held as its raw
// encoding. Field accessors read out of raw on every call (rather than
// caching decoded values) so that mutating Set* methods and re-encoding
// always agree with each other; there is no separate "decoded" state to
// fall out of sync.
type FrameHeader [4]byte

// Decode reads 4 bytes into a FrameHeader. It fails with DataError if the
// leading 11 bits are not all 1; no other field is validated.
func Decode(data []byte) (FrameHeader, error) {
	var h FrameHeader
	if len(data) < 4 {
		return h, &consts.DataError{Op: "frameheader.Decode", Msg: "fewer than 4 bytes available"}
	}
	copy(h[:], data[:4])
	v, _ := fSync.Get(h[:])
	if v != 0x7ff {
		return h, &consts.DataError{Op: "frameheader.Decode", Msg: "invalid sync"}
	}
	return h, nil
}

// Bytes returns the header's raw 4-byte encoding.
func (h FrameHeader) Bytes() []byte {
	b := make([]byte, 4)
	copy(b, h[:])
	return b
}

func (h FrameHeader) Version() consts.Version {
	v, _ := fVersion.Get(h[:])
	return consts.Version(v)
}

func (h FrameHeader) Layer() consts.Layer {
	v, _ := fLayer.Get(h[:])
	return consts.Layer(v)
}

// ProtectionBit is 0 when a CRC follows the header (the field's name is
// traditionally inverted: 0 = protected).
func (h FrameHeader) ProtectionBit() int {
	v, _ := fProtection.Get(h[:])
	return int(v)
}

func (h FrameHeader) Protected() bool {
	return h.ProtectionBit() == 0
}

func (h FrameHeader) BitrateIndex() int {
	v, _ := fBitrateIndex.Get(h[:])
	return int(v)
}

func (h FrameHeader) SamplerateIndex() consts.SamplingFrequency {
	v, _ := fSamplerateIndex.Get(h[:])
	return consts.SamplingFrequency(v)
}

func (h FrameHeader) Padded() bool {
	v, _ := fPadded.Get(h[:])
	return v != 0
}

func (h FrameHeader) Private() int {
	v, _ := fPrivate.Get(h[:])
	return int(v)
}

func (h FrameHeader) ChannelMode() consts.Mode {
	v, _ := fChannelMode.Get(h[:])
	return consts.Mode(v)
}

func (h FrameHeader) ModeExtension() int {
	v, _ := fModeExtension.Get(h[:])
	return int(v)
}

func (h FrameHeader) Copyright() int {
	v, _ := fCopyright.Get(h[:])
	return int(v)
}

func (h FrameHeader) Original() int {
	v, _ := fOriginal.Get(h[:])
	return int(v)
}

func (h FrameHeader) Emphasis() int {
	v, _ := fEmphasis.Get(h[:])
	return int(v)
}

// Setters mutate the header in place and return the header for chaining,
// mirroring the teacher's value-receiver accessor style while still
// allowing field-by-field construction. Set* never validates range (that
// happens when the fields are packed back during Decode/Encode's sync
// check) except through the bitfield width itself, which rejects values
// that don't fit.

func (h *FrameHeader) SetVersion(v consts.Version) error    { return fVersion.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetLayer(v consts.Layer) error        { return fLayer.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetProtectionBit(v int) error         { return fProtection.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetBitrateIndex(v int) error          { return fBitrateIndex.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetSamplerateIndex(v consts.SamplingFrequency) error {
	return fSamplerateIndex.Set(h[:], uint32(v))
}
func (h *FrameHeader) SetPadded(v bool) error {
	var n uint32
	if v {
		n = 1
	}
	return fPadded.Set(h[:], n)
}
func (h *FrameHeader) SetPrivate(v int) error       { return fPrivate.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetChannelMode(v consts.Mode) error {
	return fChannelMode.Set(h[:], uint32(v))
}
func (h *FrameHeader) SetModeExtension(v int) error { return fModeExtension.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetCopyright(v int) error     { return fCopyright.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetOriginal(v int) error       { return fOriginal.Set(h[:], uint32(v)) }
func (h *FrameHeader) SetEmphasis(v int) error       { return fEmphasis.Set(h[:], uint32(v)) }

// Encode writes the syncword and rewrites the header's raw bytes from its
// field values, failing with UsageError if any field is out of its
// declared range (the version/layer/bitrate/samplerate reserved values are
// in-range bit patterns, so Encode doesn't reject them — Decode's callers
// are expected to check for Reserved separately via the derived
// accessors below).
func (h *FrameHeader) Encode() error {
	if err := fSync.Set(h[:], 0x7ff); err != nil {
		return &consts.UsageError{Op: "frameheader.Encode", Msg: err.Error()}
	}
	return nil
}

// FrameSize returns the frame's size in bytes, or (0, nil) for free-format.
func (h FrameHeader) FrameSize() (int, error) {
	return tables.FrameSize(h.Version(), h.Layer(), h.BitrateIndex(), h.SamplerateIndex(), h.Padded())
}

// SideInfoSize returns the layer-3 side_info size for this header, or 0 for
// layers 1 and 2.
func (h FrameHeader) SideInfoSize() int {
	if h.Layer() != consts.Layer3 {
		return 0
	}
	return tables.SideInfoSize(h.Version(), h.ChannelMode())
}

// Bitrate returns the bitrate in kbps, or 0 for a free-format frame.
func (h FrameHeader) Bitrate() (int, error) {
	return tables.Bitrate(h.Version(), h.Layer(), h.BitrateIndex())
}

// SampleRate returns the sample rate in Hz.
func (h FrameHeader) SampleRate() (int, error) {
	return tables.SampleRate(h.Version(), h.SamplerateIndex())
}

// SamplesPerFrame returns the number of audio samples carried by a frame
// with this header's version and layer.
func (h FrameHeader) SamplesPerFrame() (int, error) {
	return tables.SamplesPerFrame(h.Version(), h.Layer())
}

// SampleSize returns the number of bytes represented by one "sample unit"
// in the frame-size formula (4 for layer 1, 1 otherwise).
func (h FrameHeader) SampleSize() (int, error) {
	return tables.SampleSize(h.Layer())
}

// HeaderAndCRCSize is 4, plus 2 if a CRC follows the header.
func (h FrameHeader) HeaderAndCRCSize() int {
	if h.Protected() {
		return 6
	}
	return 4
}

// VersionLabel and LayerLabel are human-readable accessors used for
// diagnostics (cmd/mp3scan's summary line), not decode logic.
func (h FrameHeader) VersionLabel() string { return h.Version().String() }
func (h FrameHeader) LayerLabel() string   { return h.Layer().String() }
