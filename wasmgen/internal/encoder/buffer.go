package encoder

type Buffer struct {
	Bytes []byte
}

func (b *Buffer) AppendByte(v byte) {
	b.Bytes = append(b.Bytes, v)
}

func (b *Buffer) WriteBytes(v []byte) {
	b.Bytes = append(b.Bytes, v...)
}

// WriteU32 writes unsigned LEB128 encoding.
func (b *Buffer) WriteU32(v uint32) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			byt |= 0x80
		}
		b.AppendByte(byt)
		if v == 0 {
			break
		}
	}
}

// WriteI32 writes signed LEB128 encoding.
func (b *Buffer) WriteI32(v int32) {
	b.WriteI64(int64(v))
}

// WriteI64 writes signed LEB128 encoding.
func (b *Buffer) WriteI64(v int64) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && byt&0x40 == 0) || (v == -1 && byt&0x40 != 0) {
			b.AppendByte(byt)
			break
		}
		b.AppendByte(byt | 0x80)
	}
}

// WriteName writes a length-prefixed UTF-8 name.
func (b *Buffer) WriteName(s string) {
	b.WriteU32(uint32(len(s)))
	b.WriteBytes([]byte(s))
}

// Op appends an instruction opcode.
func (b *Buffer) Op(op byte) {
	b.AppendByte(op)
}

// OpU32 appends an instruction with one unsigned immediate, such as
// local.get or call.
func (b *Buffer) OpU32(op byte, imm uint32) {
	b.AppendByte(op)
	b.WriteU32(imm)
}

// I32Const appends i32.const v.
func (b *Buffer) I32Const(v int32) {
	b.AppendByte(OpI32Const)
	b.WriteI32(v)
}

// I64Const appends i64.const v.
func (b *Buffer) I64Const(v int64) {
	b.AppendByte(OpI64Const)
	b.WriteI64(v)
}

// Mem appends a load or store with natural 8-byte alignment.
func (b *Buffer) Mem(op byte, offset uint32) {
	b.AppendByte(op)
	b.WriteU32(3)
	b.WriteU32(offset)
}

// Block appends a structured instruction with an empty block type.
func (b *Buffer) Block(op byte) {
	b.AppendByte(op)
	b.AppendByte(BlockTypeEmpty)
}
