package mp3frame

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/agmoss/mp3frame/internal/consts"
)

// DefaultMaxBuffer is the sync buffer cap Items/Frames enforce when the
// caller doesn't specify one: a corrupt or adversarial stream with no sync
// and no recognizable tag for this many consecutive bytes aborts the
// stream with an ImplementationLimit instead of buffering without bound.
const DefaultMaxBuffer = 4 * 1024 * 1024

// Items lazily decodes r into a sequence of Items, feeding it chunks of r
// as needed. It's a single-pass, non-restartable iterator: ranging over it
// twice reads r twice (and the second pass will see EOF immediately if r
// doesn't support seeking back). maxBuffer <= 0 uses DefaultMaxBuffer.
//
// Range stops (the loop body simply isn't invoked again) once a non-nil
// error is yielded or r is exhausted; an iteration that breaks early
// leaves r partially read, same as stopping any other stream midway.
func Items(ctx context.Context, r io.Reader, maxBuffer int) iter.Seq2[*Item, error] {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return func(yield func(*Item, error) bool) {
		sync := NewLogicalFrameSync()
		chunk := make([]byte, 32*1024)
		fedEOF := false
		for !sync.Done() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			item, err := sync.ReadItem()
			if err == nil {
				if !yield(item, nil) {
					return
				}
				continue
			}
			if err != ErrNeedData {
				yield(nil, err)
				return
			}
			if fedEOF {
				// A declared tag or frame size is never going to be
				// satisfied now: the stream ended mid-item.
				yield(nil, &consts.UnexpectedEOF{At: fmt.Sprintf("byte %d", sync.BytesReturned())})
				return
			}
			if sync.Buffered() >= maxBuffer {
				yield(nil, &consts.ImplementationLimit{Op: "Items", Msg: "sync buffer reached its maximum size with no frame, tag, or resync point found"})
				return
			}
			n, rerr := r.Read(chunk)
			if n > 0 {
				if ferr := sync.Feed(chunk[:n]); ferr != nil {
					yield(nil, ferr)
					return
				}
			}
			switch {
			case rerr == io.EOF:
				sync.FeedEOF()
				fedEOF = true
			case rerr != nil:
				yield(nil, rerr)
				return
			}
		}
	}
}

// Frames is Items filtered down to just the Frame items, with nothing
// else wrapping the decode: an error still ends iteration.
func Frames(ctx context.Context, r io.Reader, maxBuffer int) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for item, err := range Items(ctx, r, maxBuffer) {
			if err != nil {
				yield(nil, err)
				return
			}
			if item.Kind != ItemFrame {
				continue
			}
			if !yield(item.Frame, nil) {
				return
			}
		}
	}
}
