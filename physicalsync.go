package mp3frame

import (
	"errors"

	"github.com/agmoss/mp3frame/internal/consts"
	"github.com/agmoss/mp3frame/internal/frameheader"
	"github.com/agmoss/mp3frame/internal/sideinfo"
)

// errMoreData and errResync are internal signals from createFrame back to
// ReadItem; they never escape this package. errMoreData means "can't tell
// yet, need more bytes, or if we're at EOF just flush what's left as
// garbage"; errResync means "this sync was bogus, drop one byte and look
// again".
var (
	errMoreData = errors.New("mp3frame: internal: need more data")
	errResync   = errors.New("mp3frame: internal: invalid frame, resync")
)

// PhysicalFrameSync turns a buffered byte stream into a sequence of Items
// (Frame/Tag/Garbage), one physical frame at a time, with no attempt to
// reassemble layer-3's bit reservoir across frames — see LogicalFrameSync
// for that.
type PhysicalFrameSync struct {
	BaseSync

	// Synced is false immediately after a resync; the next frame read
	// successfully sets it back to true.
	Synced bool
	// FramesReturned counts frames yielded so far (the next one's
	// FrameNumber).
	FramesReturned int
	// BaseFrameSize caches the unpadded size of a free-format stream once
	// discovered by scanning for the next sync: -1 means "not yet known",
	// 0 means free-format frame-size discovery is disabled, and a positive
	// value is the cached size.
	BaseFrameSize int
}

// NewPhysicalFrameSync returns a PhysicalFrameSync ready to be Fed.
func NewPhysicalFrameSync() *PhysicalFrameSync {
	return &PhysicalFrameSync{BaseSync: *NewBaseSync(), Synced: true, BaseFrameSize: -1}
}

// ReadItem returns the next Item the buffer can yield, or ErrNeedData if
// there isn't enough data buffered to decide yet (Feed more, or FeedEOF,
// and call again).
func (p *PhysicalFrameSync) ReadItem() (*Item, error) {
	if len(p.data) < 4 && !p.readEOF {
		return nil, ErrNeedData
	}
	ident := p.Identify()
	switch ident.Kind {
	case IdentUndecided:
		return nil, ErrNeedData

	case IdentTag:
		if len(p.data) < ident.N {
			return nil, ErrNeedData
		}
		raw := append([]byte(nil), p.data[:ident.N]...)
		if err := p.Advance(ident.N); err != nil {
			return nil, err
		}
		p.Synced = true
		return &Item{Kind: ItemTag, Tag: &Tag{Kind: ident.TagKind, Raw: raw}}, nil

	case IdentGarbage:
		if len(p.data) < ident.N {
			return nil, ErrNeedData
		}
		raw := append([]byte(nil), p.data[:ident.N]...)
		if err := p.Advance(ident.N); err != nil {
			return nil, err
		}
		p.Synced = false
		return &Item{Kind: ItemGarbage, Garbage: raw}, nil

	case IdentSync:
		item, err := p.createFrame()
		switch {
		case err == nil:
			return item, nil
		case errors.Is(err, errMoreData):
			if !p.readEOF {
				return nil, ErrNeedData
			}
			return p.emitGarbage(len(p.data))
		case errors.Is(err, errResync):
			return p.emitGarbage(1)
		default:
			return nil, err
		}
	}
	return nil, ErrNeedData
}

func (p *PhysicalFrameSync) emitGarbage(size int) (*Item, error) {
	ret := append([]byte(nil), p.data[:size]...)
	if err := p.Advance(size); err != nil {
		return nil, err
	}
	p.Synced = false
	return &Item{Kind: ItemGarbage, Garbage: ret}, nil
}

// createFrame assumes p.data already starts with a confirmed frame sync
// (Identify returned IdentSync). It works out the frame's size — directly
// from the header for a fixed-bitrate frame, or by scanning ahead for the
// next sync for free-format — and builds the Frame once enough bytes are
// buffered.
func (p *PhysicalFrameSync) createFrame() (*Item, error) {
	d := p.data
	header, err := frameheader.Decode(d)
	if err != nil {
		return nil, errResync
	}

	headsz := header.HeaderAndCRCSize()
	var sidesz int
	if header.Layer() == consts.Layer3 {
		sidesz = header.SideInfoSize()
	}

	sz, err := header.FrameSize()
	if err != nil {
		return nil, errResync
	}
	need := sz
	if need == 0 {
		need = headsz + sidesz
	}
	if len(d) < need {
		return nil, errMoreData
	}

	var sideObj *sideinfo.SideInfo
	if sidesz > 0 {
		sideObj, err = sideinfo.Decode(header.Version(), header.ChannelMode(), append([]byte(nil), d[headsz:headsz+sidesz]...))
		if err != nil {
			return nil, errResync
		}
	}

	if sz == 0 {
		sz, err = p.freeFormatSize(header, sideObj, headsz, sidesz)
		if err != nil {
			return nil, err
		}
	}
	if sz <= 0 {
		return nil, errResync
	}
	if len(d) < sz {
		return nil, errMoreData
	}

	rawBody := append([]byte(nil), d[headsz+sidesz:sz]...)
	var crcPtr *uint16
	if header.Protected() {
		v := uint16(d[4])<<8 | uint16(d[5])
		crcPtr = &v
	}
	fr := &Frame{
		Header:       header,
		CRC16:        crcPtr,
		SideInfo:     sideObj,
		RawBody:      rawBody,
		Resynced:     !p.Synced,
		FrameNumber:  p.FramesReturned,
		BytePosition: p.bytesReturned,
	}

	if err := p.Advance(sz); err != nil {
		return nil, err
	}
	p.FramesReturned++
	p.Synced = true
	return &Item{Kind: ItemFrame, Frame: fr}, nil
}

// freeFormatSize works out a free-format frame's size: from the cached
// BaseFrameSize if one's already known, otherwise by scanning ahead for
// the next occurrence of this stream's syncword (matching version/layer,
// ignoring the rest) and measuring the gap. 8192 bytes without a match is
// treated as "this wasn't really a sync"; at true EOF with no next sync to
// find, whatever's left becomes the last frame (minus a trailing id3v1 tag,
// if one is sitting right after it).
func (p *PhysicalFrameSync) freeFormatSize(header frameheader.FrameHeader, sideObj *sideinfo.SideInfo, headsz, sidesz int) (int, error) {
	d := p.data
	if p.BaseFrameSize >= 0 {
		sz := p.BaseFrameSize
		if header.Padded() {
			if ss, err := header.SampleSize(); err == nil {
				sz += ss
			}
		}
		return sz, nil
	}

	offset := headsz + sidesz
	if sideObj != nil {
		if end := sideObj.Part2_3End(); end > 0 {
			offset += end
		}
	}
	syncHeader := uint32(0xff)<<24 | uint32(d[1])<<16 | uint32(d[2])<<8
	pos, found := p.Resync(offset, syncHeader, 0xfffffc00)

	var sz int
	switch {
	case found:
		sz = pos
	case len(d) >= 8192:
		p.syncSkip = 0
		return 0, errResync
	case !p.readEOF:
		return 0, errMoreData
	default:
		sz = len(d)
		if sz > 128 && string(d[sz-128:sz-125]) == "TAG" {
			sz -= 128
		}
	}

	base := sz
	if header.Padded() {
		if ss, err := header.SampleSize(); err == nil {
			base -= ss
		}
	}
	p.BaseFrameSize = base
	return sz, nil
}
