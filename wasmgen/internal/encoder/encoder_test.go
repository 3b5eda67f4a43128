package encoder

import (
	"bytes"
	"testing"
)

func TestWriteU32(t *testing.T) {
	tests := []struct {
		in   uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xE5, 0x8E, 0x26}},
	}
	for _, tt := range tests {
		b := &Buffer{}
		b.WriteU32(tt.in)
		if !bytes.Equal(b.Bytes, tt.want) {
			t.Errorf("WriteU32(%d) = %x, want %x", tt.in, b.Bytes, tt.want)
		}
	}
}

func TestWriteI64(t *testing.T) {
	tests := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0x3F}},
		{64, []byte{0xC0, 0x00}},
		{-1, []byte{0x7F}},
		{-64, []byte{0x40}},
		{-65, []byte{0xBF, 0x7F}},
		{-123456, []byte{0xC0, 0xBB, 0x78}},
	}
	for _, tt := range tests {
		b := &Buffer{}
		b.WriteI64(tt.in)
		if !bytes.Equal(b.Bytes, tt.want) {
			t.Errorf("WriteI64(%d) = %x, want %x", tt.in, b.Bytes, tt.want)
		}
	}
}

func TestTypeIndexDeduplicates(t *testing.T) {
	m := &Module{}
	a := m.TypeIndex(FuncType{Params: []byte{ValI64}})
	b := m.TypeIndex(FuncType{Params: []byte{ValI64}, Results: []byte{ValI64}})
	c := m.TypeIndex(FuncType{Params: []byte{ValI64}})
	if a != 0 || b != 1 || c != 0 {
		t.Errorf("indices = %d %d %d, want 0 1 0", a, b, c)
	}
}

func TestEncodeEmptyModule(t *testing.T) {
	got := Encode(&Module{})
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %x, want %x", got, want)
	}
}

func TestEncodeFunction(t *testing.T) {
	m := &Module{}
	ti := m.TypeIndex(FuncType{Results: []byte{ValI64}})
	m.Funcs = []uint32{ti}
	m.Exports = []Export{{Name: "f", Kind: KindFunc, Idx: 0}}

	body := &Buffer{}
	body.I64Const(42)
	body.Op(OpEnd)
	m.Code = []Code{{Body: body.Bytes}}

	got := Encode(m)
	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		SectionType, 0x05, 0x01, FuncTypeMarker, 0x00, 0x01, ValI64,
		SectionFunc, 0x02, 0x01, 0x00,
		SectionExport, 0x05, 0x01, 0x01, 'f', KindFunc, 0x00,
		SectionCode, 0x06, 0x01, 0x04, 0x00, OpI64Const, 0x2A, OpEnd,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() =\n%x\nwant\n%x", got, want)
	}
}
