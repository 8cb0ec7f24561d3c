package tag

import (
	"bytes"
	"testing"
)

func TestIdentifyID3v2(t *testing.T) {
	data := make([]byte, 10)
	copy(data, "ID3")
	data[3] = 3 // major version 3
	data[4] = 0
	data[5] = 0    // flags
	data[6] = 0x00 // syncsafe size = 0x7f -> 127 bytes of tag body
	data[7] = 0x00
	data[8] = 0x01
	data[9] = 0x00
	res := Identify(data, false)
	if res.Kind != ID3v2 {
		t.Fatalf("Kind = %v, want ID3v2", res.Kind)
	}
	want := 10 + (1 << 7)
	if res.Size != want {
		t.Errorf("Size = %d, want %d", res.Size, want)
	}
}

func TestIdentifyID3v2RejectsFF(t *testing.T) {
	data := make([]byte, 10)
	copy(data, "ID3")
	data[3] = 0xff
	res := Identify(data, true)
	if res.Kind == ID3v2 {
		t.Error("a version byte of 0xff must reject the id3v2 tag")
	}
}

func TestIdentifyID3v2NeedsMoreData(t *testing.T) {
	data := []byte("ID3")
	res := Identify(data, false)
	if !res.NeedMore {
		t.Error("a truncated ID3 prefix should report NeedMore")
	}
	res2 := Identify(data, true)
	if res2.NeedMore || res2.Kind != Unknown {
		t.Error("at eof, a truncated ID3 prefix can never resolve to a tag")
	}
}

func TestIdentifyID3v1(t *testing.T) {
	data := make([]byte, 128)
	copy(data, "TAG")
	res := Identify(data, true)
	if res.Kind != ID3v1 || res.Size != 128 {
		t.Errorf("got %+v, want id3v1 size 128", res)
	}
}

func TestIdentifyID3v1NeedsMoreData(t *testing.T) {
	data := make([]byte, 50)
	copy(data, "TAG")
	res := Identify(data, false)
	if !res.NeedMore {
		t.Error("a short 'TAG'-prefixed buffer not at eof should report NeedMore")
	}
}

func TestIdentifyAPEv2(t *testing.T) {
	data := make([]byte, 16)
	copy(data, "APETAGEX")
	data[12] = 100 // body size little-endian
	res := Identify(data, true)
	if res.Kind != APEv2 {
		t.Fatalf("Kind = %v, want APEv2", res.Kind)
	}
	if res.Size != 32+100 {
		t.Errorf("Size = %d, want 132", res.Size)
	}
}

func TestIdentifyLyrics3v1(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("LYRICSBEGIN")
	buf.WriteString("some lyric text here")
	buf.WriteString("LYRICSEND")
	data := buf.Bytes()
	res := Identify(data, true)
	if res.Kind != Lyrics3v1 {
		t.Fatalf("Kind = %v, want Lyrics3v1, got %+v", res.Kind, res)
	}
	if res.Size != len(data) {
		t.Errorf("Size = %d, want %d", res.Size, len(data))
	}
}

func TestIdentifyNoTag(t *testing.T) {
	data := []byte{0xff, 0xfb, 0x90, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	res := Identify(data, true)
	if res.Kind != Unknown {
		t.Errorf("Kind = %v, want Unknown for raw frame bytes", res.Kind)
	}
}

func TestLyricsFieldInfoEndMarker(t *testing.T) {
	data := []byte("000123")
	name, size, ok := lyricsFieldInfo(data, 0)
	if !ok || name != "" || size != 123 {
		t.Errorf("got (%q, %d, %v), want (\"\", 123, true)", name, size, ok)
	}
}

func TestLyricsFieldInfoNamedField(t *testing.T) {
	data := []byte("IND00010X") // name "IND", size 00010
	name, size, ok := lyricsFieldInfo(data, 0)
	if !ok || name != "IND" || size != 10 {
		t.Errorf("got (%q, %d, %v), want (\"IND\", 10, true)", name, size, ok)
	}
}
