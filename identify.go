package mp3frame

import "github.com/agmoss/mp3frame/internal/tag"

// IdentKind is what Identify decided about the start of the buffer.
type IdentKind int

const (
	// IdentUndecided means there isn't enough buffered data yet to say;
	// Feed more and try again (or FeedEOF if there's no more).
	IdentUndecided IdentKind = iota
	// IdentSync means a frame sync starts at the buffer's head.
	IdentSync
	// IdentGarbage means the first N bytes aren't a sync or a known tag.
	IdentGarbage
	// IdentTag means a comment tag of a known kind starts at the head.
	IdentTag
)

// IdentResult is Identify's verdict. N is the byte count for IdentGarbage
// and IdentTag; TagKind is set only for IdentTag.
type IdentResult struct {
	Kind    IdentKind
	N       int
	TagKind tag.Kind
}

// Identify inspects the buffer's head without consuming anything: is it a
// frame sync, a comment tag, or garbage to be skipped before the next
// sync/tag check? A tag or garbage identification is itself final and safe
// to Advance past immediately; IdentUndecided means wait for more bytes.
func (s *BaseSync) Identify() IdentResult {
	d := s.data
	if len(d) < 4 {
		if s.readEOF && len(d) > 0 {
			return IdentResult{Kind: IdentGarbage, N: len(d)}
		}
		return IdentResult{Kind: IdentUndecided}
	}
	if s.isSyncAt(0, defaultSyncHeader, defaultSyncMask) {
		return IdentResult{Kind: IdentSync}
	}

	res := tag.Identify(d, s.readEOF)
	if res.Kind != tag.Unknown {
		return IdentResult{Kind: IdentTag, N: res.Size, TagKind: res.Kind}
	}
	if res.NeedMore {
		return IdentResult{Kind: IdentUndecided}
	}

	if pos, found := s.Resync(0, defaultSyncHeader, defaultSyncMask); found {
		return IdentResult{Kind: IdentGarbage, N: pos}
	}
	if s.syncSkip > 0 {
		return IdentResult{Kind: IdentGarbage, N: s.syncSkip}
	}
	return IdentResult{Kind: IdentUndecided}
}
