// Package tables holds the static MPEG audio lookup tables and the pure
// arithmetic that sits on top of them: bitrate/samplerate/frame-size lookups
// and the CRC-16 used to protect frame headers.
package tables

import "github.com/agmoss/mp3frame/internal/consts"

// bitrate tables, in kbps; index 0 means free-format, index 15 is reserved
// (represented as -1 here since Go has no table-friendly None).
var (
	brV1L1 = [16]int{-1, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, -1}
	brV1L2 = [16]int{-1, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1}
	brV1L3 = [16]int{-1, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1}
	brV2L1 = [16]int{-1, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, -1}
	brV2L2 = [16]int{-1, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1}
	brV2L3 = brV2L2
)

// brTables is indexed [version_index][layer_index]; a nil entry means the
// (version,layer) pair is reserved.
var brTables = [4][4]*[16]int{
	consts.Version2_5:      {nil, &brV2L3, &brV2L2, &brV2L1},
	consts.VersionReserved: {nil, nil, nil, nil},
	consts.Version2:        {nil, &brV2L3, &brV2L2, &brV2L1},
	consts.Version1:        {nil, &brV1L3, &brV1L2, &brV1L1},
}

// srTable is indexed [version_index][samplerate_index]; 0 means reserved.
var srTable = [4][4]int{
	consts.Version2_5:      {11025, 12000, 8000, 0},
	consts.VersionReserved: {0, 0, 0, 0},
	consts.Version2:        {22050, 24000, 16000, 0},
	consts.Version1:        {44100, 48000, 32000, 0},
}

// spfTable is indexed [version_index][layer_index]; 0 means reserved.
var spfTable = [4][4]int{
	consts.Version2_5:      {0, 576, 1152, 384},
	consts.VersionReserved: {0, 0, 0, 0},
	consts.Version2:        {0, 576, 1152, 384},
	consts.Version1:        {0, 1152, 1152, 384},
}

func checkVersion(op string, version consts.Version) error {
	if version < 0 || version > 3 {
		return &consts.UsageError{Op: op, Msg: "version index out of range"}
	}
	return nil
}

func checkLayer(op string, layer consts.Layer) error {
	if layer < 0 || layer > 3 {
		return &consts.UsageError{Op: op, Msg: "layer index out of range"}
	}
	return nil
}

// SamplesPerFrame returns the number of audio samples in each frame.
func SamplesPerFrame(version consts.Version, layer consts.Layer) (int, error) {
	if err := checkVersion("SamplesPerFrame", version); err != nil {
		return 0, err
	}
	if err := checkLayer("SamplesPerFrame", layer); err != nil {
		return 0, err
	}
	spf := spfTable[version][layer]
	if spf == 0 {
		return 0, &consts.ReservedError{Op: "SamplesPerFrame", Msg: "reserved MPEG version or layer"}
	}
	return spf, nil
}

// SampleRate returns the number of audio samples per second (per channel).
func SampleRate(version consts.Version, samplerateIndex consts.SamplingFrequency) (int, error) {
	if samplerateIndex < 0 || samplerateIndex > 3 {
		return 0, &consts.UsageError{Op: "SampleRate", Msg: "samplerate index out of range"}
	}
	if err := checkVersion("SampleRate", version); err != nil {
		return 0, err
	}
	sr := srTable[version][samplerateIndex]
	if sr == 0 {
		return 0, &consts.ReservedError{Op: "SampleRate", Msg: "reserved MPEG version or samplerate"}
	}
	return sr, nil
}

// Bitrate returns the bitrate in kbps, or (0, nil) for a free-format frame.
func Bitrate(version consts.Version, layer consts.Layer, bitrateIndex int) (int, error) {
	if version == consts.VersionReserved || layer == consts.LayerReserved || bitrateIndex == 15 {
		return 0, &consts.ReservedError{Op: "Bitrate", Msg: "reserved version, layer, or bitrate"}
	}
	if bitrateIndex < 0 || bitrateIndex > 15 {
		return 0, &consts.UsageError{Op: "Bitrate", Msg: "bitrate index out of range"}
	}
	table := brTables[version][layer]
	if table == nil {
		return 0, &consts.ReservedError{Op: "Bitrate", Msg: "reserved version/layer combination"}
	}
	br := table[bitrateIndex]
	if br < 0 {
		return 0, nil // free-format
	}
	return br, nil
}

// SampleSize returns the number of bytes per audio sample used by the
// frame-size formula: 4 for layer 1, 1 for layers 2 and 3.
func SampleSize(layer consts.Layer) (int, error) {
	switch layer {
	case consts.Layer3, consts.Layer2:
		return 1, nil
	case consts.Layer1:
		return 4, nil
	case consts.LayerReserved:
		return 0, &consts.ReservedError{Op: "SampleSize", Msg: "reserved MPEG layer"}
	default:
		return 0, &consts.UsageError{Op: "SampleSize", Msg: "layer index out of range"}
	}
}

// sizeMultiplier returns (mult, sampleSize) per the frame-size formula. The
// source's frame_size function sets ss=1 unconditionally right after
// computing the layer-specific values, contradicting the layer-1 case
// elsewhere; per spec.md's resolution of this ambiguity we keep ss=4 for
// layer 1 (the corrected formula), not the unconditional ss=1.
func sizeMultiplier(version consts.Version, layer consts.Layer) (mult, sampleSize int) {
	switch {
	case layer == consts.Layer1:
		return 12, 4
	case layer == consts.Layer3 && version != consts.Version1:
		return 72, 1
	default:
		return 144, 1
	}
}

// FrameSize returns the size of a frame in bytes, or (0, nil) for a
// free-format frame whose size cannot be known from the header alone.
func FrameSize(version consts.Version, layer consts.Layer, bitrateIndex int, samplerateIndex consts.SamplingFrequency, padded bool) (int, error) {
	br, err := Bitrate(version, layer, bitrateIndex)
	if err != nil {
		return 0, err
	}
	if br == 0 {
		return 0, nil
	}
	sr, err := SampleRate(version, samplerateIndex)
	if err != nil {
		return 0, err
	}
	mult, ss := sizeMultiplier(version, layer)
	size := (mult*br*1000)/sr*ss
	if padded {
		size += ss
	}
	return size, nil
}

// MinBitrateIndex finds the smallest bitrate_index that yields a frame of at
// least targetBytes, preferring the unpadded size when it alone clears the
// threshold. Returns ok=false if no bitrate is sufficient.
func MinBitrateIndex(version consts.Version, layer consts.Layer, samplerateIndex consts.SamplingFrequency, targetBytes int) (index int, padded bool, size int, kbps int, ok bool) {
	sr, err := SampleRate(version, samplerateIndex)
	if err != nil {
		return 0, false, 0, 0, false
	}
	table := brTables[version][layer]
	if table == nil {
		return 0, false, 0, 0, false
	}
	mult, ss := sizeMultiplier(version, layer)

	for idx, br := range table {
		if br <= 0 {
			continue
		}
		n := ((mult*br*1000)/sr) + 1 // include padding
		sz := n * ss
		if sz < targetBytes {
			continue
		}
		base := sz - ss
		if base >= targetBytes {
			return idx, false, base, br, true
		}
		return idx, true, sz, br, true
	}
	return 0, false, 0, 0, false
}

// sideInfoSize is indexed [lsf][mono].
var sideInfoSize = [2][2]int{
	{32, 17}, // MPEG1: stereo, mono
	{17, 9},  // MPEG2/2.5: stereo, mono
}

// SideInfoSize returns the size, in bytes, of the layer-3 side_info
// structure for the given version and channel mode.
func SideInfoSize(version consts.Version, mode consts.Mode) int {
	lsf := boolIdx(version.LSF())
	mono := boolIdx(mode.Mono())
	return sideInfoSize[lsf][mono]
}

// sideInfoBitOffsets is indexed [lsf][mono]; each entry lists the bit offset
// (from the start of side_info) of each granule's part2_3_length field.
var sideInfoBitOffsets = [2][2][]int{
	{{20, 79, 138, 197}, {18, 77}}, // MPEG1: stereo, mono
	{{10, 73}, {9}},                // MPEG2/2.5: stereo, mono
}

// SideInfoBitOffsets returns the bit offset of each granule's
// part2_3_length field within the side_info structure.
func SideInfoBitOffsets(version consts.Version, mode consts.Mode) []int {
	lsf := boolIdx(version.LSF())
	mono := boolIdx(mode.Mono())
	return sideInfoBitOffsets[lsf][mono]
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// l2AllocTableSel picks the layer-2 bit allocation table used by the CRC
// residual calculation, indexed [samplerate_index][bitrate_index]. Only
// verified for MPEG1, per the original implementation.
var l2AllocTableSel = [3][15]int{
	{1, 2, 2, 0, 0, 0, 1, 1, 1, 1, 1, -1, -1, -1, -1}, // 44100/22050/11025 Hz
	{0, 2, 2, 0, 0, 0, 0, 0, 0, 0, 0, -1, -1, -1, -1}, // 48000/24000/12000 Hz
	{1, 3, 3, 0, 0, 0, 1, 1, 1, 1, 1, -1, -1, -1, -1}, // 32000/16000/8000 Hz
}

// protectedBits[layer][mono] (layer 1 and 3), or
// protectedBits[layer][tableSel][mono] (layer 2); -1 means unknown (LSF
// modes aren't in the de-facto table carried over from the original).
var protectedBitsL3 = [2]int{256, 136} // stereo, mono
var protectedBitsL1 = [2]int{256, 128} // stereo, mono
var protectedBitsL2 = [4][2]int{
	{284, 142},
	{308, 154},
	{84, 42},
	{124, 62},
}

// ProtectedBitCount returns the number of audio_data bits protected by the
// CRC for the given header fields. Use ProtectedByteCount for layer 1/3
// when a whole-byte count is enough.
func ProtectedBitCount(version consts.Version, layer consts.Layer, bitrateIndex int, samplerateIndex consts.SamplingFrequency, mode consts.Mode) (int, error) {
	mono := boolIdx(mode.Mono())
	switch layer {
	case consts.Layer3:
		return protectedBitsL3[mono], nil
	case consts.Layer1:
		if version.LSF() {
			return 0, &consts.UsageError{Op: "ProtectedBitCount", Msg: "protected bit count unknown for layer 1 LSF modes"}
		}
		return protectedBitsL1[mono], nil
	case consts.Layer2:
		if version.LSF() {
			return 0, &consts.UsageError{Op: "ProtectedBitCount", Msg: "protected bit count unknown for layer 2 LSF modes"}
		}
		sel := l2AllocTableSel[samplerateIndex][bitrateIndex]
		if sel < 0 {
			return 0, &consts.UsageError{Op: "ProtectedBitCount", Msg: "no allocation table for this bitrate"}
		}
		return protectedBitsL2[sel][mono], nil
	default:
		return 0, &consts.ReservedError{Op: "ProtectedBitCount", Msg: "reserved layer"}
	}
}

// ProtectedByteCount is ProtectedBitCount for layer 1 or 3, where the
// protected region is always a whole number of bytes. It fails for layer 2,
// whose protected region is not byte-aligned in general.
func ProtectedByteCount(version consts.Version, layer consts.Layer, mode consts.Mode) (int, error) {
	if layer == consts.Layer2 {
		return 0, &consts.UsageError{Op: "ProtectedByteCount", Msg: "can't use ProtectedByteCount for layer 2, use ProtectedBitCount"}
	}
	bits, err := ProtectedBitCount(version, layer, 0, 0, mode)
	if err != nil {
		return 0, err
	}
	return bits / 8, nil
}

// CRC-16/IBM (polynomial 0x8005, init 0xFFFF, MSB-first, no reflection, no
// final XOR), byte-table driven, with a bit-granular fallback for residual
// bits that don't fill a whole byte (layer 2).

const crcPoly = 0x8005

// crc16Bits runs the CRC over the low `bits` bits of val, MSB first.
func crc16Bits(val uint32, bits int, start uint16) uint16 {
	crc := start
	mask := uint32(1) << uint(bits)
	for bits > 0 {
		bits--
		mask >>= 1
		bit := (val & mask) != 0
		top := (crc >> 15) != 0
		if bit != top {
			crc = ((crc & 0x7fff) << 1) ^ crcPoly
		} else {
			crc = (crc & 0x7fff) << 1
		}
	}
	return crc
}

var crcTable = func() [256]uint16 {
	var t [256]uint16
	for i := range t {
		t[i] = crc16Bits(uint32(i), 8, 0)
	}
	return t
}()

// CRC16 computes the CRC of data (a sequence of whole bytes), seeded with
// start (use 0xFFFF for a fresh computation).
func CRC16(data []byte, start uint16) uint16 {
	crc := start
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>8)^b]
	}
	return crc
}

// CRC16Bits computes the CRC over the low `bits` bits of val (bits <= 8),
// for the layer-2 residual that doesn't end on a byte boundary.
func CRC16Bits(val byte, bits int, start uint16) uint16 {
	return crc16Bits(uint32(val), bits, start)
}
