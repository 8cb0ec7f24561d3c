package sideinfo

import (
	"testing"

	"github.com/agmoss/mp3frame/internal/consts"
)

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := Decode(consts.Version1, consts.ModeStereo, make([]byte, 10)); err == nil {
		t.Error("Decode should reject a raw slice of the wrong length")
	}
}

func TestMPEG1StereoShape(t *testing.T) {
	si := New(consts.Version1, consts.ModeStereo)
	if si.LSF() {
		t.Error("MPEG1 should not be LSF")
	}
	if si.NumChannels() != 2 {
		t.Errorf("NumChannels() = %d, want 2", si.NumChannels())
	}
	if si.NumGranules() != 2 {
		t.Errorf("NumGranules() = %d, want 2", si.NumGranules())
	}
}

func TestMPEG2MonoShape(t *testing.T) {
	si := New(consts.Version2, consts.ModeSingleChannel)
	if !si.LSF() {
		t.Error("MPEG2 should be LSF")
	}
	if si.NumChannels() != 1 {
		t.Errorf("NumChannels() = %d, want 1", si.NumChannels())
	}
	if si.NumGranules() != 1 {
		t.Errorf("NumGranules() = %d, want 1", si.NumGranules())
	}
}

func TestMainDataBeginRoundTrip(t *testing.T) {
	si := New(consts.Version1, consts.ModeStereo)
	if err := si.SetMainDataBegin(0x1a3); err != nil {
		t.Fatalf("SetMainDataBegin: %v", err)
	}
	if got := si.MainDataBegin(); got != 0x1a3 {
		t.Errorf("MainDataBegin() = %#x, want 0x1a3", got)
	}
}

func TestSCFSIRejectedForLSF(t *testing.T) {
	si := New(consts.Version2, consts.ModeStereo)
	if _, err := si.SCFSI(0); err == nil {
		t.Error("SCFSI should fail for an LSF side_info")
	}
}

func TestSCFSIRoundTrip(t *testing.T) {
	si := New(consts.Version1, consts.ModeStereo)
	if err := si.SetSCFSI(0, 0x9); err != nil {
		t.Fatalf("SetSCFSI(0): %v", err)
	}
	if err := si.SetSCFSI(1, 0x3); err != nil {
		t.Fatalf("SetSCFSI(1): %v", err)
	}
	if got, _ := si.SCFSI(0); got != 0x9 {
		t.Errorf("SCFSI(0) = %#x, want 0x9", got)
	}
	if got, _ := si.SCFSI(1); got != 0x3 {
		t.Errorf("SCFSI(1) = %#x, want 0x3", got)
	}
}

func TestGranuleFieldsRoundTripMPEG1Stereo(t *testing.T) {
	si := New(consts.Version1, consts.ModeStereo)
	gr, err := si.Granule(1, 0)
	if err != nil {
		t.Fatalf("Granule: %v", err)
	}
	if err := gr.SetPart2_3Length(123); err != nil {
		t.Fatalf("SetPart2_3Length: %v", err)
	}
	if err := gr.SetBigValues(200); err != nil {
		t.Fatalf("SetBigValues: %v", err)
	}
	if err := gr.SetGlobalGain(0xaa); err != nil {
		t.Fatalf("SetGlobalGain: %v", err)
	}
	if err := gr.SetScalefacCompress(7); err != nil {
		t.Fatalf("SetScalefacCompress: %v", err)
	}
	if got := gr.Part2_3Length(); got != 123 {
		t.Errorf("Part2_3Length() = %d, want 123", got)
	}
	if got := gr.BigValues(); got != 200 {
		t.Errorf("BigValues() = %d, want 200", got)
	}
	if got := gr.GlobalGain(); got != 0xaa {
		t.Errorf("GlobalGain() = %#x, want 0xaa", got)
	}
	if got := gr.ScalefacCompress(); got != 7 {
		t.Errorf("ScalefacCompress() = %d, want 7", got)
	}

	// granule 0 must be untouched by writes into granule 1.
	gr0, _ := si.Granule(0, 0)
	if got := gr0.Part2_3Length(); got != 0 {
		t.Errorf("granule 0 Part2_3Length() = %d, want 0 (unaffected by granule 1 writes)", got)
	}
}

func TestBlockdataLongBlocks(t *testing.T) {
	si := New(consts.Version1, consts.ModeSingleChannel)
	gr, _ := si.Granule(0, 0)
	if err := gr.SetBlocksplitFlag(0); err != nil {
		t.Fatalf("SetBlocksplitFlag: %v", err)
	}
	if err := gr.SetTableSelect([]int{1, 2, 3}); err != nil {
		t.Fatalf("SetTableSelect: %v", err)
	}
	got, err := gr.TableSelect()
	if err != nil {
		t.Fatalf("TableSelect: %v", err)
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("TableSelect() = %v, want [1 2 3]", got)
	}

	if _, err := gr.BlockType(); err == nil {
		t.Error("BlockType should fail when blocksplit_flag=0")
	}
	if _, err := gr.RegionAddress1(); err != nil {
		t.Errorf("RegionAddress1 should succeed when blocksplit_flag=0: %v", err)
	}
}

func TestBlockdataShortBlocks(t *testing.T) {
	si := New(consts.Version1, consts.ModeSingleChannel)
	gr, _ := si.Granule(0, 0)
	if err := gr.SetBlocksplitFlag(1); err != nil {
		t.Fatalf("SetBlocksplitFlag: %v", err)
	}
	if _, err := gr.RegionAddress1(); err == nil {
		t.Error("RegionAddress1 should fail when blocksplit_flag=1")
	}
	if _, err := gr.BlockType(); err != nil {
		t.Errorf("BlockType should succeed when blocksplit_flag=1: %v", err)
	}
	if err := gr.SetTableSelect([]int{4, 9}); err != nil {
		t.Fatalf("SetTableSelect: %v", err)
	}
	got, err := gr.TableSelect()
	if err != nil {
		t.Fatalf("TableSelect: %v", err)
	}
	if got[0] != 4 || got[1] != 9 {
		t.Errorf("TableSelect() = %v, want [4 9]", got)
	}
}

func TestPreflagAbsentForLSF(t *testing.T) {
	si := New(consts.Version2, consts.ModeSingleChannel)
	gr, _ := si.Granule(0, 0)
	if _, err := gr.Preflag(); err == nil {
		t.Error("Preflag should fail for LSF side_info")
	}
}

func TestScalefacScaleAndCount1TableSelectRoundTrip(t *testing.T) {
	si := New(consts.Version1, consts.ModeStereo)
	gr, _ := si.Granule(0, 1)
	if err := gr.SetScalefacScale(1); err != nil {
		t.Fatalf("SetScalefacScale: %v", err)
	}
	if err := gr.SetCount1TableSelect(1); err != nil {
		t.Fatalf("SetCount1TableSelect: %v", err)
	}
	if gr.ScalefacScale() != 1 {
		t.Error("ScalefacScale() = 0, want 1")
	}
	if gr.Count1TableSelect() != 1 {
		t.Error("Count1TableSelect() = 0, want 1")
	}
}

func TestPart2_3BytesAndEnd(t *testing.T) {
	si := New(consts.Version1, consts.ModeSingleChannel)
	g0, _ := si.Granule(0, 0)
	g1, _ := si.Granule(1, 0)
	g0.SetPart2_3Length(100)
	g1.SetPart2_3Length(60)
	if got := si.Part2_3Bytes(); got != 20 { // (100+60)/8 = 20
		t.Errorf("Part2_3Bytes() = %d, want 20", got)
	}
	si.SetMainDataBegin(5)
	if got := si.Part2_3End(); got != 15 {
		t.Errorf("Part2_3End() = %d, want 15", got)
	}
}
