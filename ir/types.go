package ir

// Type is the static type of a variable, formal or function result.
type Type uint8

const (
	TypeVoid Type = iota
	TypeInt
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	}
	return "unknown"
}

// LookupType maps a type keyword to its Type.
func LookupType(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "bool":
		return TypeBool, true
	}
	return TypeVoid, false
}

// Intent is the passing mode of a formal parameter.
type Intent uint8

const (
	// IntentIn passes a copy of the actual's value.
	IntentIn Intent = iota
	// IntentRef aliases the actual variable: writes through the formal are
	// visible to the caller.
	IntentRef
)

func (i Intent) String() string {
	if i == IntentRef {
		return "ref"
	}
	return "param"
}

// Op is a unary or binary operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNeg
	OpNot
)

var opNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpRem: "%",
	OpEq:  "==",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAnd: "and",
	OpOr:  "or",
	OpNeg: "neg",
	OpNot: "not",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// LookupOp maps an operator spelling to its Op.
func LookupOp(s string) (Op, bool) {
	for i, name := range opNames {
		if name == s {
			return Op(i), true
		}
	}
	return 0, false
}

// IsUnary reports whether o takes a single operand.
func (o Op) IsUnary() bool { return o == OpNeg || o == OpNot }

// IsComparison reports whether o compares two operands.
func (o Op) IsComparison() bool { return o >= OpEq && o <= OpGe }

// IsLogical reports whether o combines booleans.
func (o Op) IsLogical() bool { return o == OpAnd || o == OpOr || o == OpNot }

// Operand returns the operand type o expects.
func (o Op) Operand() Type {
	if o.IsLogical() {
		return TypeBool
	}
	return TypeInt
}

// ResultType returns the type o produces.
func (o Op) ResultType() Type {
	if o.IsLogical() || o.IsComparison() {
		return TypeBool
	}
	return TypeInt
}
