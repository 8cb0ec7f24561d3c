package mp3frame

import "github.com/agmoss/mp3frame/internal/tag"

// ItemKind tags what an Item holds.
type ItemKind int

const (
	ItemFrame ItemKind = iota
	ItemTag
	ItemGarbage
)

func (k ItemKind) String() string {
	switch k {
	case ItemFrame:
		return "frame"
	case ItemTag:
		return "tag"
	case ItemGarbage:
		return "garbage"
	default:
		return "unknown"
	}
}

// Tag is a comment tag (ID3v1, ID3v2, APEv2, or Lyrics3) found embedded in
// the stream, with its raw bytes untouched.
type Tag struct {
	Kind tag.Kind
	Raw  []byte
}

// Item is one unit of a decoded stream: a Frame, a Tag, or a run of
// Garbage bytes that didn't parse as either (a corrupted frame header, the
// trailing slack after a truncated file, noise between tags).
type Item struct {
	Kind    ItemKind
	Frame   *Frame
	Tag     *Tag
	Garbage []byte
}
