package mp3frame

import (
	"bytes"

	"github.com/agmoss/mp3frame/internal/consts"
)

// defaultSyncHeader/defaultSyncMask match an MPEG frame sync: the top 11
// bits of a 32-bit word all set.
const (
	defaultSyncHeader = 0xffe00000
	defaultSyncMask   = 0xffe00000
)

// BaseSync buffers fed bytes and finds MPEG frame syncs and comment tags
// within them. It never allocates more than it's fed; callers drive it by
// calling Feed (or FeedEOF, once, when there's no more input) and reading
// buffered data back out via Identify/Resync before Advance-ing past
// whatever they consumed.
type BaseSync struct {
	data          []byte
	bytesReturned int64
	readEOF       bool
	syncSkip      int
}

// NewBaseSync returns a BaseSync ready to be Fed.
func NewBaseSync() *BaseSync {
	return &BaseSync{}
}

// Feed appends b to the buffer. It fails with UsageError if called after
// FeedEOF.
func (s *BaseSync) Feed(b []byte) error {
	if s.readEOF {
		return &consts.UsageError{Op: "BaseSync.Feed", Msg: "fed data after FeedEOF"}
	}
	s.data = append(s.data, b...)
	return nil
}

// FeedEOF marks the input as exhausted: no more Feed calls are allowed,
// and Identify/PhysicalFrameSync.ReadItem treat the buffer's tail as final
// rather than waiting for more bytes.
func (s *BaseSync) FeedEOF() {
	s.readEOF = true
}

// Done reports whether there's nothing left to do: EOF was reached and the
// buffer is empty.
func (s *BaseSync) Done() bool {
	return s.readEOF && len(s.data) == 0
}

// Buffered returns the number of bytes currently held.
func (s *BaseSync) Buffered() int {
	return len(s.data)
}

// BytesReturned is the total number of bytes Advance has consumed so far.
func (s *BaseSync) BytesReturned() int64 {
	return s.bytesReturned
}

// Advance discards the first n bytes of the buffer, recording them as
// returned. It fails with UsageError if n is out of [0, Buffered()].
func (s *BaseSync) Advance(n int) error {
	if n < 0 || n > len(s.data) {
		return &consts.UsageError{Op: "BaseSync.Advance", Msg: "advance amount out of range"}
	}
	s.bytesReturned += int64(n)
	s.data = s.data[n:]
	s.syncSkip -= n
	if s.syncSkip < 0 {
		s.syncSkip = 0
	}
	return nil
}

func (s *BaseSync) isSyncAt(pos int, header, mask uint32) bool {
	if pos < 0 || pos+4 > len(s.data) {
		return false
	}
	d := s.data
	head := uint32(d[pos])<<24 | uint32(d[pos+1])<<16 | uint32(d[pos+2])<<8 | uint32(d[pos+3])
	return head&mask == header
}

// Resync scans forward from max(offset, the end of the last scanned
// region) for the next 4-byte window whose bits, masked by mask, equal
// header. It returns the byte position of a match, or ok=false if none is
// found yet in the buffered data (more bytes may turn up a match later).
// Bytes already ruled out are never rescanned: every call after a Feed
// resumes exactly where the last one left off.
func (s *BaseSync) Resync(offset int, header, mask uint32) (pos int, ok bool) {
	off := offset
	if s.syncSkip > off {
		off = s.syncSkip
	}
	for {
		if off > len(s.data) {
			s.syncSkip = len(s.data)
			return 0, false
		}
		idx := bytes.IndexByte(s.data[off:], 0xff)
		if idx < 0 {
			s.syncSkip = len(s.data)
			return 0, false
		}
		cand := off + idx
		if cand+4 > len(s.data) {
			s.syncSkip = cand
			return 0, false
		}
		if s.isSyncAt(cand, header, mask) {
			s.syncSkip = cand
			return cand, true
		}
		off = cand + 1
	}
}
