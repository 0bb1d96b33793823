package types

import "fmt"

// IsComplex reports whether t is the builtin complex type or an alias of it.
func IsComplex(t Type) bool {
	switch t := t.(type) {
	case *Primitive:
		return t.Prim == PrimComplex
	case *User:
		return IsComplex(t.Definition)
	}
	return false
}

// BlankIntentImpliesRef reports whether a parameter of type t declared without
// an intent is passed by reference.
func BlankIntentImpliesRef(t Type) bool {
	switch t := t.(type) {
	case *Domain, *Array, *Class, *Seq:
		return true
	case *User:
		return BlankIntentImpliesRef(t.Definition)
	}
	return false
}

// PassedByValue reports whether values of t are C values rather than
// pointers.
func PassedByValue(t Type) bool {
	switch t := t.(type) {
	case *Primitive:
		switch t.Prim {
		case PrimBoolean, PrimInteger, PrimFloat, PrimComplex:
			return true
		}
		return false
	case *Enum, *Record, *Union:
		return true
	case *User:
		return PassedByValue(t.Definition)
	}
	return false
}

type Intent int

const (
	BlankIntent Intent = iota
	ConstIntent
	InIntent
	InoutIntent
	OutIntent
	RefIntent
	ParamIntent
	TypeIntent
)

func (i Intent) String() string {
	switch i {
	case BlankIntent:
		return "blank"
	case ConstIntent:
		return "const"
	case InIntent:
		return "in"
	case InoutIntent:
		return "inout"
	case OutIntent:
		return "out"
	case RefIntent:
		return "ref"
	case ParamIntent:
		return "param"
	case TypeIntent:
		return "type"
	default:
		panic("unreachable")
	}
}

// RequiresParamTemp reports whether passing a value of t with the given intent
// needs a temporary copy at the call site.
func RequiresParamTemp(t Type, intent Intent) bool {
	if intent == BlankIntent {
		if BlankIntentImpliesRef(t) {
			intent = RefIntent
		} else {
			intent = ConstIntent
		}
	}
	switch intent {
	case ConstIntent, InIntent:
		// C's pass-by-value already makes the copy
		return !PassedByValue(t)
	case InoutIntent, OutIntent:
		return true
	case RefIntent, ParamIntent, TypeIntent:
		return false
	default:
		panic(fmt.Sprintf("unhandled intent: %v", intent))
	}
}
