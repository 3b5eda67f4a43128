package encoder

import "bytes"

type FuncType struct {
	Params  []byte
	Results []byte
}

func (ft FuncType) Equal(o FuncType) bool {
	return bytes.Equal(ft.Params, o.Params) && bytes.Equal(ft.Results, o.Results)
}

type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

type Global struct {
	Init    []byte // constant expression including the final end
	Type    byte
	Mutable bool
}

type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

type Local struct {
	Count uint32
	Type  byte
}

type Code struct {
	Locals []Local
	Body   []byte // instructions including the final end
}

// Module is the subset of a core module the code generator emits.
// Imported functions take the lowest function indices.
type Module struct {
	Start       *uint32
	Types       []FuncType
	Imports     []Import
	Funcs       []uint32
	Globals     []Global
	Exports     []Export
	Code        []Code
	MemoryPages uint32
}

// TypeIndex returns the index of ft, adding it if needed.
func (m *Module) TypeIndex(ft FuncType) uint32 {
	for i, t := range m.Types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

func Encode(m *Module) []byte {
	buf := &Buffer{}

	buf.WriteBytes([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}) // magic + version

	if len(m.Types) > 0 {
		encodeTypeSection(buf, m)
	}
	if len(m.Imports) > 0 {
		encodeImportSection(buf, m)
	}
	if len(m.Funcs) > 0 {
		encodeFuncSection(buf, m)
	}
	if m.MemoryPages > 0 {
		encodeMemorySection(buf, m)
	}
	if len(m.Globals) > 0 {
		encodeGlobalSection(buf, m)
	}
	if len(m.Exports) > 0 {
		encodeExportSection(buf, m)
	}
	if m.Start != nil {
		encodeStartSection(buf, m)
	}
	if len(m.Code) > 0 {
		encodeCodeSection(buf, m)
	}

	return buf.Bytes
}

func writeSection(buf *Buffer, id byte, content *Buffer) {
	buf.AppendByte(id)
	buf.WriteU32(uint32(len(content.Bytes)))
	buf.WriteBytes(content.Bytes)
}

func encodeTypeSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Types)))
	for _, ft := range m.Types {
		sec.AppendByte(FuncTypeMarker)
		sec.WriteU32(uint32(len(ft.Params)))
		sec.WriteBytes(ft.Params)
		sec.WriteU32(uint32(len(ft.Results)))
		sec.WriteBytes(ft.Results)
	}
	writeSection(buf, SectionType, sec)
}

func encodeImportSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		sec.WriteName(imp.Module)
		sec.WriteName(imp.Name)
		sec.AppendByte(KindFunc)
		sec.WriteU32(imp.TypeIdx)
	}
	writeSection(buf, SectionImport, sec)
}

func encodeFuncSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Funcs)))
	for _, idx := range m.Funcs {
		sec.WriteU32(idx)
	}
	writeSection(buf, SectionFunc, sec)
}

func encodeMemorySection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(1)
	sec.AppendByte(0x00) // no maximum
	sec.WriteU32(m.MemoryPages)
	writeSection(buf, SectionMemory, sec)
}

func encodeGlobalSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Globals)))
	for _, g := range m.Globals {
		sec.AppendByte(g.Type)
		if g.Mutable {
			sec.AppendByte(0x01)
		} else {
			sec.AppendByte(0x00)
		}
		sec.WriteBytes(g.Init)
	}
	writeSection(buf, SectionGlobal, sec)
}

func encodeExportSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Exports)))
	for _, e := range m.Exports {
		sec.WriteName(e.Name)
		sec.AppendByte(e.Kind)
		sec.WriteU32(e.Idx)
	}
	writeSection(buf, SectionExport, sec)
}

func encodeStartSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(*m.Start)
	writeSection(buf, SectionStart, sec)
}

func encodeCodeSection(buf *Buffer, m *Module) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Code)))
	for _, c := range m.Code {
		body := &Buffer{}
		body.WriteU32(uint32(len(c.Locals)))
		for _, l := range c.Locals {
			body.WriteU32(l.Count)
			body.AppendByte(l.Type)
		}
		body.WriteBytes(c.Body)
		sec.WriteU32(uint32(len(body.Bytes)))
		sec.WriteBytes(body.Bytes)
	}
	writeSection(buf, SectionCode, sec)
}
