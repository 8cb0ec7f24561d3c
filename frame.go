package mp3frame

import (
	"github.com/agmoss/mp3frame/internal/bits"
	"github.com/agmoss/mp3frame/internal/consts"
	"github.com/agmoss/mp3frame/internal/frameheader"
	"github.com/agmoss/mp3frame/internal/sideinfo"
	"github.com/agmoss/mp3frame/internal/tables"
	"github.com/agmoss/mp3frame/internal/vbr"
)

// Frame is one physical MPEG audio frame: header, CRC (if present), layer-3
// side info (if present), and the body bytes that follow.
//
// LogicalBody and AncillarySkipped are only populated when the frame comes
// from a LogicalFrameSync: LogicalBody is RawBody reassembled through the
// layer-3 bit reservoir (nil when the frame's main_data couldn't yet be
// reconstructed — see LogicalFrameAssembler), and AncillarySkipped counts
// reservoir bytes that went unclaimed by any frame.
type Frame struct {
	Header       frameheader.FrameHeader
	CRC16        *uint16
	SideInfo     *sideinfo.SideInfo
	RawBody      []byte
	Resynced     bool
	FrameNumber  int
	BytePosition int64

	LogicalBody      []byte
	AncillarySkipped int
}

// Len is the frame's total encoded size in bytes: header, optional CRC,
// optional side info, and the body.
func (f *Frame) Len() int {
	sz := f.Header.HeaderAndCRCSize()
	if f.Header.Layer() == consts.Layer3 && f.SideInfo != nil {
		sz += len(f.SideInfo.Raw())
	}
	sz += len(f.RawBody)
	return sz
}

// Encode serializes the frame, recomputing the header sync pattern and (if
// protected) the CRC. With validate true it also checks that the side info
// is the right length, that the logical body doesn't run past the frame,
// and that raw_body adds up to the header's declared frame size.
func (f *Frame) Encode(validate bool) ([]byte, error) {
	if err := f.Header.Encode(); err != nil {
		return nil, err
	}
	data := append([]byte(nil), f.Header.Bytes()...)

	needCRC := f.Header.Protected()
	if needCRC {
		data = append(data, 0, 0)
	}

	if f.Header.Layer() == consts.Layer3 {
		if f.SideInfo == nil {
			return nil, &consts.UsageError{Op: "Frame.Encode", Msg: "layer 3 frame has no side_info"}
		}
		raw := f.SideInfo.Raw()
		if validate {
			want := tables.SideInfoSize(f.Header.Version(), f.Header.ChannelMode())
			if len(raw) != want {
				return nil, &consts.UsageError{Op: "Frame.Encode", Msg: "side info is the wrong length"}
			}
			if f.SideInfo.Part2_3End() > len(f.RawBody) {
				return nil, &consts.UsageError{Op: "Frame.Encode", Msg: "logical body extends past frame"}
			}
		}
		data = append(data, raw...)
	}

	data = append(data, f.RawBody...)

	if validate {
		sz, err := f.Header.FrameSize()
		if err != nil {
			return nil, err
		}
		if sz != 0 && len(data) != sz {
			return nil, &consts.UsageError{Op: "Frame.Encode", Msg: "raw_body is the wrong length"}
		}
	}

	if needCRC {
		crc, err := f.CalcCRC()
		if err != nil {
			return nil, err
		}
		data[4] = byte(crc >> 8)
		data[5] = byte(crc)
	}
	return data, nil
}

// CalcCRC computes the frame's CRC-16 over whichever bytes the header
// declares protected, without touching CRC16 or the encoded bytes.
func (f *Frame) CalcCRC() (uint16, error) {
	hb := f.Header.Bytes()
	val := tables.CRC16(hb[2:4], 0xffff)

	switch f.Header.Layer() {
	case consts.Layer3:
		if f.SideInfo == nil {
			return 0, &consts.UsageError{Op: "Frame.CalcCRC", Msg: "layer 3 frame has no side_info"}
		}
		val = tables.CRC16(f.SideInfo.Raw(), val)

	case consts.Layer1:
		n, err := tables.ProtectedByteCount(f.Header.Version(), f.Header.Layer(), f.Header.ChannelMode())
		if err != nil {
			return 0, err
		}
		if n > len(f.RawBody) {
			return 0, &consts.DataError{Op: "Frame.CalcCRC", Msg: "raw_body shorter than the protected region"}
		}
		val = tables.CRC16(f.RawBody[:n], val)

	case consts.Layer2:
		nbits, err := tables.ProtectedBitCount(f.Header.Version(), f.Header.Layer(), f.Header.BitrateIndex(), f.Header.SamplerateIndex(), f.Header.ChannelMode())
		if err != nil {
			return 0, err
		}
		r := bits.New(f.RawBody)
		lastByte := nbits / 8
		rem := nbits % 8
		if lastByte > len(f.RawBody) {
			return 0, &consts.DataError{Op: "Frame.CalcCRC", Msg: "raw_body shorter than the protected region"}
		}
		val = tables.CRC16(f.RawBody[:lastByte], val)
		if rem > 0 {
			r.SetPos(lastByte * 8)
			lastPart := byte(r.Bits(rem))
			val = tables.CRC16Bits(lastPart, rem, val)
		}
	}
	return val, nil
}

// IdentifyVBRHeader reports whether this frame carries a Xing/Info or VBRI
// VBR header, and where it starts relative to RawBody (negative if it
// starts inside the trailing bytes of side_info, which some encoders do
// when a CRC is present).
func (f *Frame) IdentifyVBRHeader() (kind string, offset int, ok bool) {
	if f.Header.Layer() != consts.Layer3 || f.SideInfo == nil {
		return "", 0, false
	}
	raw := f.SideInfo.Raw()
	for i := 0; i < len(raw)-2; i++ {
		if raw[i] != 0 {
			return "", 0, false
		}
	}

	haveCRC := f.Header.Protected()
	bodyPos := len(raw)
	if haveCRC {
		bodyPos += 2
	}
	vbriOffset := 32 - bodyPos

	if len(f.RawBody) >= 4 {
		switch string(f.RawBody[:4]) {
		case "Xing", "Info":
			return "Xing", 0, true
		case "VBRI":
			if vbriOffset == 0 {
				return "VBRI", 0, true
			}
		}
	}

	if vbriOffset > 0 && vbriOffset+4 <= len(f.RawBody) {
		if string(f.RawBody[vbriOffset:vbriOffset+4]) == "VBRI" {
			return "VBRI", vbriOffset, true
		}
	}

	if haveCRC && len(raw) >= 2 && len(f.RawBody) >= 2 {
		ident := string(raw[len(raw)-2:]) + string(f.RawBody[:2])
		switch ident {
		case "Xing", "Info":
			return "Xing", -2, true
		case "VBRI":
			if vbriOffset == -2 {
				return "VBRI", -2, true
			}
		}
	}
	return "", 0, false
}

// DecodeVBRHeader identifies and decodes this frame's Xing/Info or VBRI
// variable-bitrate header, if it carries one. xing and vbri are both nil
// when IdentifyVBRHeader finds nothing to decode.
func (f *Frame) DecodeVBRHeader() (xing *vbr.XingHeader, vbri *vbr.VBRIHeader, err error) {
	kind, offset, ok := f.IdentifyVBRHeader()
	if !ok {
		return nil, nil, nil
	}
	body, err := f.GetBodyAtOffset(offset)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case "Xing":
		xing, err = vbr.DecodeXing(body)
		return xing, nil, err
	case "VBRI":
		vbri, err = vbr.DecodeVBRI(body)
		return nil, vbri, err
	default:
		return nil, nil, nil
	}
}

// GetBodyAtOffset returns the bytes starting at offset bytes into RawBody.
// A negative offset reaches back into the tail of side_info (layer 3
// only) — useful for VBR headers some encoders tuck partly inside it.
func (f *Frame) GetBodyAtOffset(offset int) ([]byte, error) {
	if offset >= 0 {
		if offset > len(f.RawBody) {
			return nil, &consts.UsageError{Op: "Frame.GetBodyAtOffset", Msg: "offset past end of raw_body"}
		}
		return f.RawBody[offset:], nil
	}
	if f.Header.Layer() != consts.Layer3 {
		return nil, &consts.UsageError{Op: "Frame.GetBodyAtOffset", Msg: "negative body offset only allowed for layer 3"}
	}
	raw := f.SideInfo.Raw()
	if -offset > len(raw) {
		return nil, &consts.UsageError{Op: "Frame.GetBodyAtOffset", Msg: "body offset points before side_info"}
	}
	out := append([]byte(nil), raw[len(raw)+offset:]...)
	out = append(out, f.RawBody...)
	return out, nil
}

// SetBodyAtOffset overwrites RawBody (and, for a negative offset, the tail
// of side_info) starting offset bytes in, with data.
func (f *Frame) SetBodyAtOffset(offset int, data []byte) error {
	if offset >= 0 {
		f.RawBody = append(append([]byte(nil), f.RawBody[:offset]...), data...)
		return nil
	}
	if f.Header.Layer() != consts.Layer3 {
		return &consts.UsageError{Op: "Frame.SetBodyAtOffset", Msg: "negative body offset only allowed for layer 3"}
	}
	raw := f.SideInfo.Raw()
	if -offset > len(raw) {
		return &consts.UsageError{Op: "Frame.SetBodyAtOffset", Msg: "body offset points before side_info"}
	}
	if len(data) < -offset {
		return &consts.UsageError{Op: "Frame.SetBodyAtOffset", Msg: "data too short for negative offset"}
	}
	copy(raw[len(raw)+offset:], data[:-offset])
	f.RawBody = append([]byte(nil), data[-offset:]...)
	return nil
}
