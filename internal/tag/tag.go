// Package tag identifies the trailing (or leading) comment tags that
// routinely sit next to MPEG audio data — ID3v1, ID3v2, APEv2, and both
// Lyrics3 variants — so the framing layer can skip over them instead of
// mistaking their bytes for frame sync.
package tag

import "encoding/binary"

// Kind names a recognized tag format.
type Kind int

const (
	Unknown Kind = iota
	ID3v1
	ID3v2
	APEv2
	Lyrics3v1
	Lyrics3v2
)

func (k Kind) String() string {
	switch k {
	case ID3v1:
		return "id3v1"
	case ID3v2:
		return "id3v2"
	case APEv2:
		return "apev2"
	case Lyrics3v1:
		return "lyrics3v1"
	case Lyrics3v2:
		return "lyrics3v2"
	default:
		return "unknown"
	}
}

// Result describes what Identify found at the start of data.
type Result struct {
	Kind Kind
	// Size is the tag's size in bytes, valid when Kind != Unknown.
	Size int
	// NeedMore is true when data doesn't yet hold enough bytes to decide;
	// never set once eof is true.
	NeedMore bool
}

// Identify looks for a comment tag at the start of data. eof must be true
// when data is known to run up to the end of the stream (some tags, like
// Lyrics3, can only be confirmed once their footer is visible).
//
// Checks run id3v2, id3v1, apev2, lyrics3v2, lyrics3v1, in that priority
// order, matching how these tags are actually laid out in practice: an
// id3v2 header always leads, an id3v1/Lyrics3 footer always trails.
func Identify(data []byte, eof bool) Result {
	if v2, need := id3v2Size(data); v2 > 0 {
		return Result{Kind: ID3v2, Size: v2}
	} else if need {
		return pending(eof)
	} else if v1, need := id3v1Size(data, eof, 0); v1 > 0 {
		return Result{Kind: ID3v1, Size: v1}
	} else if need {
		return pending(eof)
	} else if ape, need := apev2Size(data); ape > 0 {
		return Result{Kind: APEv2, Size: ape}
	} else if need {
		return pending(eof)
	} else if l2, need := lyrics3v2Size(data); l2 > 0 {
		return Result{Kind: Lyrics3v2, Size: l2}
	} else if need {
		return pending(eof)
	} else if l1, need := lyrics3v1Size(data, eof); l1 > 0 {
		return Result{Kind: Lyrics3v1, Size: l1}
	} else if need {
		return pending(eof)
	}
	return Result{}
}

func pending(eof bool) Result {
	if eof {
		return Result{}
	}
	return Result{NeedMore: true}
}

func startsWith(data []byte, prefix string) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if data[i] != prefix[i] {
			return false
		}
	}
	return true
}

// id3v2Size returns (size, needMore). size==0 means "not an id3v2 tag".
func id3v2Size(data []byte) (int, bool) {
	if len(data) >= 3 && !startsWith(data, "ID3") {
		return 0, false
	}
	if len(data) < 10 {
		return 0, true
	}
	// A documented quirk preserved from the tag sniffer this is based on:
	// any 0xFF in data[3] or data[4] (the version bytes) rejects the tag
	// outright, rather than only rejecting on an invalid major version.
	if data[3] == 0xff || data[4] == 0xff {
		return 0, false
	}
	for _, b := range data[6:10] {
		if b >= 0x80 {
			return 0, false
		}
	}
	flags := data[5]
	size := 10
	size += int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	if flags&0x40 != 0 {
		size += 10 // extended header
	}
	return size, false
}

// id3v1Size returns (size, needMore) for the tag assumed to start at
// data[offset:]. Used both for a leading tag scan and, with a nonzero
// offset, to detect an id3v1 tag embedded just before a Lyrics3v1 footer.
func id3v1Size(data []byte, eof bool, offset int) (int, bool) {
	tagLen := len(data) - offset
	if tagLen >= 3 && !startsWith(data[offset:], "TAG") {
		return 0, false
	}
	if tagLen == 128 && eof {
		return 128, false
	}
	if tagLen < 128 && !eof {
		return 0, true
	}
	return 0, false
}

func apev2Size(data []byte) (int, bool) {
	if len(data) >= 8 && !startsWith(data, "APETAGEX") {
		return 0, false
	}
	if len(data) < 16 {
		return 0, true
	}
	bodySize := binary.LittleEndian.Uint32(data[12:16])
	return 32 + int(bodySize), false
}

// lyricsFieldInfo parses a single Lyrics3v2 field starting at data[offset:].
// ok is false if this isn't a valid field. name is "" for the end-of-tag
// length field (a 6-digit total-length marker); otherwise it's the field's
// 3-character uppercase tag and size its declared byte length.
func lyricsFieldInfo(data []byte, offset int) (name string, size int, ok bool) {
	isUpper := func(pos int) bool {
		return data[pos] > 64 && data[pos] <= 64+26
	}
	digits := func(pos, n int) (int, bool) {
		v := 0
		for i := pos; i < pos+n; i++ {
			ch := data[i]
			if ch < '0' || ch > '9' {
				return 0, false
			}
			v = v*10 + int(ch-'0')
		}
		return v, true
	}

	if offset+3 <= len(data) && isUpper(offset) && isUpper(offset+1) && isUpper(offset+2) {
		v, okv := digits(offset+3, 5)
		if !okv {
			return "", 0, false
		}
		return string(data[offset : offset+3]), v, true
	}
	v, okv := digits(offset, 6)
	if !okv {
		return "", 0, false
	}
	return "", v, true // end-of-tag length marker
}

func lyrics3v2Size(data []byte) (int, bool) {
	if len(data) >= 11 && !startsWith(data, "LYRICSBEGIN") {
		return 0, false
	}
	pos := 11
	for pos+8 < len(data) {
		if pos >= 0x80000 {
			return 0, false // sanity check: not a valid tag
		}
		name, size, ok := lyricsFieldInfo(data, pos)
		if !ok {
			return 0, false
		}
		if name == "" { // end of tag
			if pos != size {
				return 0, false
			}
			pos += 6
			break
		}
		pos += size + 8
	}
	if pos+9 > len(data) {
		return 0, true
	}
	if startsWith(data[pos:], "LYRICS200") {
		return pos + 9, false
	}
	return 0, false
}

func lyrics3v1Size(data []byte, eof bool) (int, bool) {
	// maximum length: 5100 bytes of lyrics + 20 bytes for header and footer
	tagLen := len(data)
	if tagLen >= 11 && !startsWith(data, "LYRICSBEGIN") {
		return 0, false
	}
	if tagLen > 5120+128 {
		return 0, false
	}
	if !eof {
		return 0, true
	}
	if tagLen < 20 {
		return 0, false
	}
	if tagLen >= 128+20 {
		if sz, _ := id3v1Size(data, eof, tagLen-128); sz == 128 {
			tagLen -= 128
		}
	}
	if tagLen >= 9 && startsWith(data[tagLen-9:], "LYRICSEND") {
		return tagLen, false
	}
	return 0, false
}
