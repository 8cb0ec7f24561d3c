// Package mp3frame parses the framing structure of an MPEG-1/2/2.5
// Layer 1/2/3 ("MP3") audio stream: frame headers, layer-3 side info and
// bit reservoir, interleaved ID3/APE/Lyrics3 tags, and the free-format and
// resync edge cases real-world encoders and cutting tools produce. It does
// not decode audio; RawBody and LogicalBody are handed back as opaque
// bytes for a decoder (or a stream editor, or an analyzer) to consume.
//
// Items and Frames are the two entry points: pull-driven iterators over an
// io.Reader that yield one Item (a Frame, a Tag, or a run of Garbage) at a
// time. Lower-level types (BaseSync, PhysicalFrameSync, LogicalFrameSync)
// are exported for callers that already have their data in memory and want
// to feed it by hand instead of through an io.Reader.
package mp3frame
