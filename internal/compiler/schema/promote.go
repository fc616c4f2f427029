package schema

// Promote unifies two primitive kinds observed for the same logical field.
// Numeric kinds widen Int -> Long -> Float. Any other disagreement falls back
// to String, and Node absorbs everything. The second result reports whether
// the kinds disagreed outside the numeric lattice.
//
// Promotion is monotonic: Promote(Promote(a, b), c) never narrows below
// Promote(a, b).
func Promote(a, b PrimitiveKind) (PrimitiveKind, bool) {
	if a == b {
		return a, false
	}

	if a == PrimitiveNode || b == PrimitiveNode {
		return PrimitiveNode, false
	}

	if a.IsNumeric() && b.IsNumeric() {
		if a == PrimitiveFloat || b == PrimitiveFloat {
			return PrimitiveFloat, false
		}
		return PrimitiveLong, false
	}

	return PrimitiveString, true
}

// PromoteKey unifies dictionary key kinds the same way
func PromoteKey(a, b KeyKind) KeyKind {
	if a == KeyString || b == KeyString {
		return KeyString
	}
	if a == KeyLong || b == KeyLong {
		return KeyLong
	}
	return KeyInt
}
