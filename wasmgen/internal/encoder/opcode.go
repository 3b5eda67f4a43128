package encoder

// Section IDs
const (
	SectionType   byte = 1
	SectionImport byte = 2
	SectionFunc   byte = 3
	SectionMemory byte = 5
	SectionGlobal byte = 6
	SectionExport byte = 7
	SectionStart  byte = 8
	SectionCode   byte = 10
)

// Value types
const (
	ValI32 byte = 0x7F
	ValI64 byte = 0x7E
)

// External kinds
const (
	KindFunc   byte = 0x00
	KindMemory byte = 0x02
	KindGlobal byte = 0x03
)

const (
	FuncTypeMarker byte = 0x60
	BlockTypeEmpty byte = 0x40
)

// Control instructions
const (
	OpUnreachable byte = 0x00
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpDrop        byte = 0x1A
)

// Variable instructions
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Memory instructions
const (
	OpI64Load  byte = 0x29
	OpI64Store byte = 0x37
)

// Numeric instructions
const (
	OpI32Const   byte = 0x41
	OpI64Const   byte = 0x42
	OpI32Eqz     byte = 0x45
	OpI32LtU     byte = 0x49
	OpI64Eqz     byte = 0x50
	OpI64Eq      byte = 0x51
	OpI64Ne      byte = 0x52
	OpI64LtS     byte = 0x53
	OpI64GtS     byte = 0x55
	OpI64LeS     byte = 0x57
	OpI64GeS     byte = 0x59
	OpI32Add     byte = 0x6A
	OpI32Sub     byte = 0x6B
	OpI64Add     byte = 0x7C
	OpI64Sub     byte = 0x7D
	OpI64Mul     byte = 0x7E
	OpI64DivS    byte = 0x7F
	OpI64RemS    byte = 0x81
	OpI64And     byte = 0x83
	OpI64Or      byte = 0x84
	OpI32WrapI64 byte = 0xA7
	OpI64ExtendU byte = 0xAD
)
