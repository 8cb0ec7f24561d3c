package mp3frame

import "errors"

// ErrNeedData is returned by the low-level ReadItem methods when the
// currently buffered bytes aren't enough to decide the next item; the
// caller should Feed more data (or FeedEOF, if there isn't any) and call
// ReadItem again. It's never returned by Items or Frames, which handle
// feeding internally.
var ErrNeedData = errors.New("mp3frame: need more data")
