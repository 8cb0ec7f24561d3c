package mp3frame

import "github.com/agmoss/mp3frame/internal/consts"

// reservoirKeepFloor and reservoirCap bound the bit reservoir: it's
// trimmed to reservoirKeepFloor bytes (or less, if a single frame's body
// already exceeds it) whenever growing by another frame would push it past
// reservoirCap, and always replaced outright by a frame body at or above
// reservoirKeepFloor (such a frame can't be referencing much further back
// than its own start).
const (
	reservoirKeepFloor = 511
	reservoirCap       = 4096
)

// LogicalFrameAssembler reconstructs each layer-3 frame's main_data out of
// the rolling bit reservoir: main_data_begin says how many bytes of a
// frame's compressed audio data actually live in *earlier* frames' bodies,
// so a frame's logical content often isn't fully present until several
// physical frames later.
type LogicalFrameAssembler struct {
	reservoir []byte
	lastEnd   int

	// AncillarySkipped is set by the most recent FrameIn call: bytes that
	// were sitting in the reservoir unclaimed by any frame (ancillary data,
	// or a reservoir invalidated by a non-layer-3 frame in between).
	AncillarySkipped int
}

// FrameIn feeds one physical frame's raw_body through the reservoir and
// returns its reconstructed logical body, or nil if the frame's main_data
// isn't fully available yet (either its declared main_data_begin reaches
// further back than the reservoir holds, or a later frame will supply the
// rest — e.g. scattered after a layer change or a dropped frame).
func (a *LogicalFrameAssembler) FrameIn(fr *Frame) []byte {
	rawBody := fr.RawBody
	unused := len(a.reservoir) - a.lastEnd

	if fr.Header.Layer() != consts.Layer3 {
		a.AncillarySkipped = unused
		if unused != 0 {
			a.reservoir = nil
			a.lastEnd = 0
		}
		return rawBody
	}

	si := fr.SideInfo
	begin := si.MainDataBegin()
	a.AncillarySkipped = unused - begin
	mainLen := si.Part2_3Bytes()

	var data []byte
	var end int
	haveEnd := false
	if begin <= len(a.reservoir) {
		end = mainLen - begin
		if end <= len(rawBody) {
			haveEnd = true
			switch {
			case end < 0:
				start := len(a.reservoir) - begin
				stop := len(a.reservoir) + end
				data = append([]byte(nil), a.reservoir[start:stop]...)
			case begin > 0:
				start := len(a.reservoir) - begin
				data = append([]byte(nil), a.reservoir[start:]...)
				data = append(data, rawBody[:end]...)
			default:
				data = append([]byte(nil), rawBody[:end]...)
			}
		}
	}

	switch {
	case len(rawBody) >= reservoirKeepFloor, len(a.reservoir) == 0:
		a.reservoir = append([]byte(nil), rawBody...)
	default:
		if len(a.reservoir)+len(rawBody) > reservoirCap {
			keep := reservoirKeepFloor - len(rawBody)
			if keep < 1 {
				keep = 1
			}
			if keep > len(a.reservoir) {
				keep = len(a.reservoir)
			}
			a.reservoir = append([]byte(nil), a.reservoir[len(a.reservoir)-keep:]...)
		}
		a.reservoir = append(a.reservoir, rawBody...)
	}

	if !haveEnd {
		a.lastEnd -= len(rawBody)
		return nil
	}
	unusedBytes := len(data) - end
	a.lastEnd = len(rawBody) - unusedBytes
	return data
}

// LogicalFrameSync wraps PhysicalFrameSync, decorating every Frame it
// yields with LogicalBody and AncillarySkipped via a LogicalFrameAssembler.
type LogicalFrameSync struct {
	PhysicalFrameSync
	assembler LogicalFrameAssembler
}

// NewLogicalFrameSync returns a LogicalFrameSync ready to be Fed.
func NewLogicalFrameSync() *LogicalFrameSync {
	return &LogicalFrameSync{PhysicalFrameSync: *NewPhysicalFrameSync()}
}

// ReadItem behaves like PhysicalFrameSync.ReadItem, except that frames
// additionally get their LogicalBody and AncillarySkipped fields filled
// in.
func (l *LogicalFrameSync) ReadItem() (*Item, error) {
	item, err := l.PhysicalFrameSync.ReadItem()
	if err != nil || item == nil {
		return item, err
	}
	if item.Kind == ItemFrame {
		item.Frame.LogicalBody = l.assembler.FrameIn(item.Frame)
		item.Frame.AncillarySkipped = l.assembler.AncillarySkipped
	}
	return item, nil
}
