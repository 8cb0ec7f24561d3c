// Package vbr decodes and encodes the Xing/Info and Fraunhofer VBRI headers
// that MP3 encoders tuck into the first audio frame to describe a
// variable-bitrate stream: total frame/byte counts, a seek table, and an
// encoder quality figure.
package vbr

import (
	"encoding/binary"

	"github.com/agmoss/mp3frame/internal/consts"
)

const (
	flagFrameCount = 1 << 0
	flagByteCount  = 1 << 1
	flagSeekTable  = 1 << 2
	flagQuality    = 1 << 3
)

// XingHeader is a decoded Xing or Info VBR header. CBRMode is true for an
// "Info" tag (written by CBR encoders that still want a frame/byte count
// published), false for "Xing".
type XingHeader struct {
	CBRMode      bool
	Flags        uint32
	FrameCount   *uint32
	ByteCount    *uint32
	SeekTable    []byte // exactly 100 bytes when present
	Quality      *uint32
	ExtendedData []byte
}

func tagAt(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	s := string(data[:4])
	return s, s == "Xing" || s == "Info"
}

// IsXingHeader reports whether data (a frame's body, starting right after
// its side_info if any) begins with a Xing or Info tag.
func IsXingHeader(data []byte) bool {
	_, ok := tagAt(data)
	return ok
}

// IsVBRIHeader reports whether data begins with a VBRI tag.
func IsVBRIHeader(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "VBRI"
}

// DecodeXing parses a Xing/Info header starting at data[0:]. It returns the
// number of bytes consumed from data (4-byte tag + 4-byte flags + whichever
// optional fields the flags select); ExtendedData is whatever's left after
// that.
func DecodeXing(data []byte) (*XingHeader, error) {
	tag, ok := tagAt(data)
	if !ok {
		return nil, &consts.UsageError{Op: "vbr.DecodeXing", Msg: "not a Xing/Info header"}
	}
	pos := 4
	need := func(n int) error {
		if pos+n > len(data) {
			return &consts.DataError{Op: "vbr.DecodeXing", Msg: "Xing header out of data"}
		}
		return nil
	}
	if err := need(4); err != nil {
		return nil, err
	}
	flags := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4

	h := &XingHeader{CBRMode: tag == "Info", Flags: flags}
	if flags&flagFrameCount != 0 {
		if err := need(4); err != nil {
			return nil, err
		}
		v := binary.BigEndian.Uint32(data[pos : pos+4])
		h.FrameCount = &v
		pos += 4
	}
	if flags&flagByteCount != 0 {
		if err := need(4); err != nil {
			return nil, err
		}
		v := binary.BigEndian.Uint32(data[pos : pos+4])
		h.ByteCount = &v
		pos += 4
	}
	if flags&flagSeekTable != 0 {
		if err := need(100); err != nil {
			return nil, err
		}
		h.SeekTable = append([]byte(nil), data[pos:pos+100]...)
		pos += 100
	}
	if flags&flagQuality != 0 {
		if err := need(4); err != nil {
			return nil, err
		}
		v := binary.BigEndian.Uint32(data[pos : pos+4])
		h.Quality = &v
		pos += 4
	}
	h.ExtendedData = append([]byte(nil), data[pos:]...)
	return h, nil
}

// Encode serializes the header. The flags word is recomputed from which of
// FrameCount/ByteCount/SeekTable/Quality are non-nil, overwriting whatever
// was stored in Flags.
func (h *XingHeader) Encode() ([]byte, error) {
	flags := h.Flags &^ 0xf
	if h.FrameCount != nil {
		flags |= flagFrameCount
	}
	if h.ByteCount != nil {
		flags |= flagByteCount
	}
	if h.SeekTable != nil {
		flags |= flagSeekTable
	}
	if h.Quality != nil {
		flags |= flagQuality
	}
	h.Flags = flags

	var out []byte
	if h.CBRMode {
		out = append(out, "Info"...)
	} else {
		out = append(out, "Xing"...)
	}
	out = binary.BigEndian.AppendUint32(out, flags)
	if flags&flagFrameCount != 0 {
		out = binary.BigEndian.AppendUint32(out, *h.FrameCount)
	}
	if flags&flagByteCount != 0 {
		out = binary.BigEndian.AppendUint32(out, *h.ByteCount)
	}
	if flags&flagSeekTable != 0 {
		if len(h.SeekTable) != 100 {
			return nil, &consts.UsageError{Op: "vbr.Encode", Msg: "seek table must be 100 bytes long"}
		}
		out = append(out, h.SeekTable...)
	}
	if flags&flagQuality != 0 {
		out = binary.BigEndian.AppendUint32(out, *h.Quality)
	}
	out = append(out, h.ExtendedData...)
	return out, nil
}

// VBRIHeader is a decoded Fraunhofer VBRI header. Unlike Xing, it always
// sits at a fixed 32-byte offset from the start of the frame body and
// carries no optional fields.
type VBRIHeader struct {
	Version    uint16
	Delay      uint16
	Quality    uint16
	ByteCount  uint32
	FrameCount uint32
	TOCEntries uint16
	TOCScale   uint16
	TOCEntrySz uint16
	TOCFrames  uint16
	TOC        []byte
}

// DecodeVBRI parses a VBRI header starting at data[0:] (data[:4] must be
// the "VBRI" tag itself).
func DecodeVBRI(data []byte) (*VBRIHeader, error) {
	if !IsVBRIHeader(data) {
		return nil, &consts.UsageError{Op: "vbr.DecodeVBRI", Msg: "not a VBRI header"}
	}
	if len(data) < 26 {
		return nil, &consts.DataError{Op: "vbr.DecodeVBRI", Msg: "VBRI header out of data"}
	}
	h := &VBRIHeader{
		Version:    binary.BigEndian.Uint16(data[4:6]),
		Delay:      binary.BigEndian.Uint16(data[6:8]),
		Quality:    binary.BigEndian.Uint16(data[8:10]),
		ByteCount:  binary.BigEndian.Uint32(data[10:14]),
		FrameCount: binary.BigEndian.Uint32(data[14:18]),
		TOCEntries: binary.BigEndian.Uint16(data[18:20]),
		TOCScale:   binary.BigEndian.Uint16(data[20:22]),
		TOCEntrySz: binary.BigEndian.Uint16(data[22:24]),
		TOCFrames:  binary.BigEndian.Uint16(data[24:26]),
	}
	tocLen := int(h.TOCEntries) * int(h.TOCEntrySz)
	if len(data) < 26+tocLen {
		return nil, &consts.DataError{Op: "vbr.DecodeVBRI", Msg: "VBRI TOC out of data"}
	}
	h.TOC = append([]byte(nil), data[26:26+tocLen]...)
	return h, nil
}

// Encode serializes the header back to bytes.
func (h *VBRIHeader) Encode() []byte {
	out := make([]byte, 0, 26+len(h.TOC))
	out = append(out, "VBRI"...)
	out = binary.BigEndian.AppendUint16(out, h.Version)
	out = binary.BigEndian.AppendUint16(out, h.Delay)
	out = binary.BigEndian.AppendUint16(out, h.Quality)
	out = binary.BigEndian.AppendUint32(out, h.ByteCount)
	out = binary.BigEndian.AppendUint32(out, h.FrameCount)
	out = binary.BigEndian.AppendUint16(out, h.TOCEntries)
	out = binary.BigEndian.AppendUint16(out, h.TOCScale)
	out = binary.BigEndian.AppendUint16(out, h.TOCEntrySz)
	out = binary.BigEndian.AppendUint16(out, h.TOCFrames)
	out = append(out, h.TOC...)
	return out
}
