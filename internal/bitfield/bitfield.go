// Package bitfield is the generic (offset, width) bit-range accessor that
// every decoded structure in this module (FrameHeader, SideInfo) is built
// from: get/set a run of up to 32 bits, MSB-first, over a mutable byte
// slice, handling the single-byte, whole-byte, and byte-spanning cases.
package bitfield

import "github.com/agmoss/mp3frame/internal/consts"

const maxBits = 32

// Field describes a bit range within a byte slice: the bit at `offset`
// (counting from the MSB of byte 0) through offset+width-1.
type Field struct {
	offset int
	width  int
	start  int
	end    int
	// startMask keeps the low (8 - offset%8) bits of the start byte;
	// endMask keeps the top (end_bits) bits of the end byte. Both are
	// precomputed once since a Field is reused across many Get/Set calls.
	startMask byte
	endMask   byte
	endBits   int
}

// New validates (offset, width) and returns a Field. Width must be in
// [0, 32]; offset must be >= 0. Out-of-range values fail with UsageError.
func New(offset, width int) (Field, error) {
	if offset < 0 {
		return Field{}, &consts.UsageError{Op: "bitfield.New", Msg: "negative offset"}
	}
	if width < 0 || width > maxBits {
		return Field{}, &consts.UsageError{Op: "bitfield.New", Msg: "width out of range"}
	}
	endOffset := offset + width
	f := Field{
		offset:    offset,
		width:     width,
		start:     offset / 8,
		end:       endOffset / 8,
		startMask: byte(0xff >> uint(offset%8)),
		endBits:   endOffset % 8,
	}
	if f.endBits != 0 {
		f.endMask = ^byte(0xff >> uint(f.endBits))
	}
	return f, nil
}

// Width returns the field's bit width.
func (f Field) Width() int { return f.width }

// Offset returns the field's starting bit offset.
func (f Field) Offset() int { return f.offset }

// Max returns the largest value this field can hold.
func (f Field) Max() uint32 {
	if f.width == 0 {
		return 0
	}
	return (uint32(1) << uint(f.width)) - 1
}

// lastByte is the index of the last byte this field touches.
func (f Field) lastByte() int {
	if f.endBits == 0 {
		return f.end - 1
	}
	return f.end
}

// Get reads the field's value out of data.
func (f Field) Get(data []byte) (uint32, error) {
	if f.width == 0 {
		return 0, nil
	}
	if f.start >= len(data) || f.lastByte() >= len(data) {
		return 0, &consts.UsageError{Op: "bitfield.Get", Msg: "field extends past end of data"}
	}

	if f.start == f.end {
		shift := 8 - f.endBits
		mask := f.startMask & f.endMask
		return uint32(data[f.start]&mask) >> uint(shift), nil
	}

	val := uint32(data[f.start] & f.startMask)
	pos := f.start + 1
	for pos < f.end {
		val = (val << 8) | uint32(data[pos])
		pos++
	}
	if f.endBits != 0 {
		val = (val << uint(f.endBits)) | uint32(data[f.end]>>uint(8-f.endBits))
	}
	return val, nil
}

// Set writes val into the field's bit range of data, preserving all bits of
// affected bytes that the field doesn't cover. Fails with UsageError if val
// exceeds the field's width or the field extends past the end of data.
func (f Field) Set(data []byte, val uint32) error {
	if f.width == 0 {
		return nil
	}
	if val > f.Max() {
		return &consts.UsageError{Op: "bitfield.Set", Msg: "value out of range for field width"}
	}
	if f.start >= len(data) || f.lastByte() >= len(data) {
		return &consts.UsageError{Op: "bitfield.Set", Msg: "field extends past end of data"}
	}

	if f.start == f.end {
		shift := 8 - f.endBits
		mask := f.startMask & f.endMask
		data[f.start] = (data[f.start] &^ mask) | (byte(val<<uint(shift)) & mask)
		return nil
	}

	if f.endBits != 0 {
		shift := 8 - f.endBits
		endShMask := f.endMask >> uint(shift)
		data[f.end] = (data[f.end] &^ f.endMask) | (byte(val&uint32(endShMask)) << uint(shift))
		val >>= uint(f.endBits)
	}
	pos := f.end - 1
	for pos > f.start {
		data[pos] = byte(val)
		val >>= 8
		pos--
	}
	data[f.start] = (data[f.start] &^ f.startMask) | (byte(val) & f.startMask)
	return nil
}
