// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sideinfo decodes the layer-3 side_info structure: per-granule,
// per-channel fields describing how a frame's main_data is laid out.
//
// A previous implementation of this generated a distinct class for every
// (lsf, mono, granule-offset) combination. Here a single SideInfo struct
// carries the raw bytes plus its shape (lsf, channel count, granule count,
// and the bit offset table for part2_3_length), and Granule field accessors
// are plain methods parameterized on that shape — there's one struct, not
// four generated ones.
package sideinfo

import (
	"github.com/agmoss/mp3frame/internal/bitfield"
	"github.com/agmoss/mp3frame/internal/consts"
	"github.com/agmoss/mp3frame/internal/tables"
)

// SideInfo is a view over a raw byte slice sized per (version, channel
// mode). It owns its bytes; no aliasing across frames.
type SideInfo struct {
	raw     []byte
	version consts.Version
	mode    consts.Mode
	lsf     bool
	mono    bool
	offsets []int
}

// Decode builds a SideInfo view over raw, which must already be exactly
// tables.SideInfoSize(version, mode) bytes (the caller slices it out of the
// frame before calling in).
func Decode(version consts.Version, mode consts.Mode, raw []byte) (*SideInfo, error) {
	want := tables.SideInfoSize(version, mode)
	if len(raw) != want {
		return nil, &consts.UsageError{Op: "sideinfo.Decode", Msg: "raw side_info has the wrong length"}
	}
	return &SideInfo{
		raw:     raw,
		version: version,
		mode:    mode,
		lsf:     version.LSF(),
		mono:    mode.Mono(),
		offsets: tables.SideInfoBitOffsets(version, mode),
	}, nil
}

// New allocates a blank, zeroed SideInfo of the right size for (version, mode).
func New(version consts.Version, mode consts.Mode) *SideInfo {
	si, _ := Decode(version, mode, make([]byte, tables.SideInfoSize(version, mode)))
	return si
}

// Raw returns the underlying byte slice (owned by this SideInfo).
func (s *SideInfo) Raw() []byte { return s.raw }

func (s *SideInfo) LSF() bool  { return s.lsf }
func (s *SideInfo) Mono() bool { return s.mono }

// NumChannels is 1 for mono, 2 for stereo.
func (s *SideInfo) NumChannels() int { return s.mode.NumberOfChannels() }

// NumGranules is 1 for LSF (MPEG2/2.5) streams, 2 for MPEG1.
func (s *SideInfo) NumGranules() int {
	if s.lsf {
		return 1
	}
	return 2
}

var mainDataBeginMPEG1, _ = bitfield.New(0, 9)
var mainDataBeginLSF, _ = bitfield.New(0, 8)

func (s *SideInfo) mainDataBeginField() bitfield.Field {
	if s.lsf {
		return mainDataBeginLSF
	}
	return mainDataBeginMPEG1
}

// MainDataBegin is the back-reference, in bytes, into the bit reservoir.
func (s *SideInfo) MainDataBegin() int {
	v, _ := s.mainDataBeginField().Get(s.raw)
	return int(v)
}

func (s *SideInfo) SetMainDataBegin(v int) error {
	return s.mainDataBeginField().Set(s.raw, uint32(v))
}

func (s *SideInfo) privateBitsField() (bitfield.Field, error) {
	if s.lsf {
		if s.mono {
			return bitfield.New(8, 1)
		}
		return bitfield.New(8, 2)
	}
	if s.mono {
		return bitfield.New(9, 5)
	}
	return bitfield.New(9, 3)
}

// PrivateBits returns the private_bits field (1/2 bits lsf, 3/5 bits MPEG1).
func (s *SideInfo) PrivateBits() (int, error) {
	f, err := s.privateBitsField()
	if err != nil {
		return 0, err
	}
	v, err := f.Get(s.raw)
	return int(v), err
}

// scfsiOffset returns the bit offset of a MPEG1 channel's scfsi nibble.
// Channel 0 (or the only channel, mono) sits right after private_bits;
// channel 1, in stereo layouts, follows channel 0's nibble.
func (s *SideInfo) scfsiOffset(channel int) int {
	if s.mono {
		return 14
	}
	if channel == 0 {
		return 12
	}
	return 16
}

// SCFSI returns the 4-bit scale-factor-selection-information group for a
// channel. Only meaningful for MPEG1 (non-LSF) streams.
func (s *SideInfo) SCFSI(channel int) (int, error) {
	if s.lsf {
		return 0, &consts.UsageError{Op: "sideinfo.SCFSI", Msg: "scfsi is not present in LSF side_info"}
	}
	if channel < 0 || channel >= s.NumChannels() {
		return 0, &consts.UsageError{Op: "sideinfo.SCFSI", Msg: "channel out of range"}
	}
	f, err := bitfield.New(s.scfsiOffset(channel), 4)
	if err != nil {
		return 0, err
	}
	v, err := f.Get(s.raw)
	return int(v), err
}

func (s *SideInfo) SetSCFSI(channel int, v int) error {
	if s.lsf {
		return &consts.UsageError{Op: "sideinfo.SetSCFSI", Msg: "scfsi is not present in LSF side_info"}
	}
	f, err := bitfield.New(s.scfsiOffset(channel), 4)
	if err != nil {
		return err
	}
	return f.Set(s.raw, uint32(v))
}

// granuleOffset returns the part2_3_length bit offset for (granule, channel).
// The table lists granule 0 of every channel before granule 1 of every
// channel, matching side_info_bit_offsets' layout.
func (s *SideInfo) granuleOffset(granule, channel int) (int, error) {
	idx := granule*s.NumChannels() + channel
	if idx < 0 || idx >= len(s.offsets) {
		return 0, &consts.UsageError{Op: "sideinfo.granuleOffset", Msg: "granule/channel out of range"}
	}
	return s.offsets[idx], nil
}

// Granule is a view into one (granule, channel) block of the side_info.
// It holds no data of its own; every accessor reads/writes the owning
// SideInfo's raw bytes at this block's offset.
type Granule struct {
	si     *SideInfo
	offset int
}

// Granule returns the granule/channel view. g in [0, NumGranules), ch in
// [0, NumChannels).
func (s *SideInfo) Granule(g, ch int) (Granule, error) {
	if g < 0 || g >= s.NumGranules() || ch < 0 || ch >= s.NumChannels() {
		return Granule{}, &consts.UsageError{Op: "sideinfo.Granule", Msg: "granule/channel out of range"}
	}
	off, err := s.granuleOffset(g, ch)
	if err != nil {
		return Granule{}, err
	}
	return Granule{si: s, offset: off}, nil
}

func (g Granule) field(rel, bits int) bitfield.Field {
	f, err := bitfield.New(g.offset+rel, bits)
	if err != nil {
		panic(err) // rel/bits are compile-time constants below; a failure is a programming error
	}
	return f
}

func (g Granule) Part2_3Length() int {
	v, _ := g.field(0, 12).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetPart2_3Length(v int) error { return g.field(0, 12).Set(g.si.raw, uint32(v)) }

func (g Granule) BigValues() int {
	v, _ := g.field(12, 9).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetBigValues(v int) error { return g.field(12, 9).Set(g.si.raw, uint32(v)) }

func (g Granule) GlobalGain() int {
	v, _ := g.field(21, 8).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetGlobalGain(v int) error { return g.field(21, 8).Set(g.si.raw, uint32(v)) }

func (g Granule) scalefacCompressBits() int {
	if g.si.lsf {
		return 9
	}
	return 4
}

func (g Granule) ScalefacCompress() int {
	v, _ := g.field(29, g.scalefacCompressBits()).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetScalefacCompress(v int) error {
	return g.field(29, g.scalefacCompressBits()).Set(g.si.raw, uint32(v))
}

// blockdataOffset is where blocksplit_flag and the fields that follow it
// begin, relative to the granule's own offset.
func (g Granule) blockdataOffset() int {
	return 29 + g.scalefacCompressBits()
}

func (g Granule) BlocksplitFlag() int {
	v, _ := g.field(g.blockdataOffset(), 1).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetBlocksplitFlag(v int) error {
	return g.field(g.blockdataOffset(), 1).Set(g.si.raw, uint32(v))
}

// The 22 bits after blocksplit_flag are a union: when blocksplit_flag==0
// they hold {table_select[3x5b], region_address1[4b], region_address2[3b]};
// when blocksplit_flag==1 they hold {block_type[2b], switch_point[1b],
// table_select[2x5b], subblock_gain[3x3b]}. Accessing a field that doesn't
// belong to the current blocksplit_flag fails with UsageError.
func (g Granule) blockBase() int {
	return g.blockdataOffset() + 1
}

func (g Granule) requireSplit(op string, want int) error {
	if g.BlocksplitFlag() != want {
		return &consts.UsageError{Op: op, Msg: "field not present for the current blocksplit_flag"}
	}
	return nil
}

// TableSelect returns the Huffman table-select indices: 3 entries when
// blocksplit_flag==0, 2 when it's 1.
func (g Granule) TableSelect() ([]int, error) {
	base := g.blockBase()
	if g.BlocksplitFlag() == 0 {
		out := make([]int, 3)
		for i := 0; i < 3; i++ {
			v, err := g.field(base+i*5, 5).Get(g.si.raw)
			if err != nil {
				return nil, err
			}
			out[i] = int(v)
		}
		return out, nil
	}
	out := make([]int, 2)
	for i := 0; i < 2; i++ {
		v, err := g.field(base+3+i*5, 5).Get(g.si.raw)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func (g Granule) SetTableSelect(vals []int) error {
	base := g.blockBase()
	if g.BlocksplitFlag() == 0 {
		if len(vals) != 3 {
			return &consts.UsageError{Op: "sideinfo.SetTableSelect", Msg: "expected 3 values"}
		}
		for i, v := range vals {
			if err := g.field(base+i*5, 5).Set(g.si.raw, uint32(v)); err != nil {
				return err
			}
		}
		return nil
	}
	if len(vals) != 2 {
		return &consts.UsageError{Op: "sideinfo.SetTableSelect", Msg: "expected 2 values"}
	}
	for i, v := range vals {
		if err := g.field(base+3+i*5, 5).Set(g.si.raw, uint32(v)); err != nil {
			return err
		}
	}
	return nil
}

func (g Granule) RegionAddress1() (int, error) {
	if err := g.requireSplit("sideinfo.RegionAddress1", 0); err != nil {
		return 0, err
	}
	v, err := g.field(g.blockBase()+15, 4).Get(g.si.raw)
	return int(v), err
}

func (g Granule) RegionAddress2() (int, error) {
	if err := g.requireSplit("sideinfo.RegionAddress2", 0); err != nil {
		return 0, err
	}
	v, err := g.field(g.blockBase()+19, 3).Get(g.si.raw)
	return int(v), err
}

func (g Granule) BlockType() (int, error) {
	if err := g.requireSplit("sideinfo.BlockType", 1); err != nil {
		return 0, err
	}
	v, err := g.field(g.blockBase()+0, 2).Get(g.si.raw)
	return int(v), err
}

func (g Granule) SwitchPoint() (int, error) {
	if err := g.requireSplit("sideinfo.SwitchPoint", 1); err != nil {
		return 0, err
	}
	v, err := g.field(g.blockBase()+2, 1).Get(g.si.raw)
	return int(v), err
}

func (g Granule) SubblockGain() ([3]int, error) {
	var out [3]int
	if err := g.requireSplit("sideinfo.SubblockGain", 1); err != nil {
		return out, err
	}
	for i := 0; i < 3; i++ {
		v, err := g.field(g.blockBase()+13+i*3, 3).Get(g.si.raw)
		if err != nil {
			return out, err
		}
		out[i] = int(v)
	}
	return out, nil
}

// tailOffset is where {preflag (non-lsf only), scalefac_scale,
// count1table_select} begin: 22 bits after blockdataOffset.
func (g Granule) tailOffset() int {
	return g.blockdataOffset() + 1 + 22
}

func (g Granule) Preflag() (int, error) {
	if g.si.lsf {
		return 0, &consts.UsageError{Op: "sideinfo.Preflag", Msg: "preflag is not present in LSF side_info"}
	}
	v, err := g.field(g.tailOffset(), 1).Get(g.si.raw)
	return int(v), err
}

func (g Granule) scalefacScaleOffset() int {
	if g.si.lsf {
		return g.tailOffset()
	}
	return g.tailOffset() + 1
}

func (g Granule) ScalefacScale() int {
	v, _ := g.field(g.scalefacScaleOffset(), 1).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetScalefacScale(v int) error {
	return g.field(g.scalefacScaleOffset(), 1).Set(g.si.raw, uint32(v))
}

func (g Granule) Count1TableSelect() int {
	v, _ := g.field(g.scalefacScaleOffset()+1, 1).Get(g.si.raw)
	return int(v)
}
func (g Granule) SetCount1TableSelect(v int) error {
	return g.field(g.scalefacScaleOffset()+1, 1).Set(g.si.raw, uint32(v))
}

// Part2_3Bytes is ceil(sum(part2_3_length) / 8) over every granule/channel.
func (s *SideInfo) Part2_3Bytes() int {
	total := 0
	for g := 0; g < s.NumGranules(); g++ {
		for ch := 0; ch < s.NumChannels(); ch++ {
			gr, _ := s.Granule(g, ch)
			total += gr.Part2_3Length()
		}
	}
	return (total + 7) / 8
}

// Part2_3End is Part2_3Bytes - main_data_begin; it may be negative when the
// logical frame ends inside the bit reservoir.
func (s *SideInfo) Part2_3End() int {
	return s.Part2_3Bytes() - s.MainDataBegin()
}
