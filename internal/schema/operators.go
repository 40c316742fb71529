package schema

type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpStartsWith Operator = "starts_with"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpIsTrue     Operator = "is_true"
	OpIsFalse    Operator = "is_false"
	OpIs         Operator = "is"
	OpIsNot      Operator = "is_not"
)

var operatorsByKind = map[Kind][]Operator{
	KindText:     {OpContains, OpEquals, OpNotEquals, OpStartsWith, OpIsEmpty, OpIsNotEmpty},
	KindNumber:   {OpEquals, OpNotEquals, OpGt, OpGte, OpLt, OpLte, OpIsEmpty},
	KindCurrency: {OpEquals, OpGt, OpGte, OpLt, OpLte},
	KindDate:     {OpBefore, OpAfter, OpEquals, OpIsEmpty, OpIsNotEmpty},
	KindBoolean:  {OpIsTrue, OpIsFalse},
	KindSelect:   {OpIs, OpIsNot},
}

// OperatorsFor returns the operators compatible with kind, in display order.
func OperatorsFor(kind Kind) []Operator {
	ops := operatorsByKind[kind]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// Allows reports whether op may be applied to a field of the given kind.
func Allows(kind Kind, op Operator) bool {
	for _, o := range operatorsByKind[kind] {
		if o == op {
			return true
		}
	}
	return false
}

// NeedsValue reports whether op takes an operand.
func (op Operator) NeedsValue() bool {
	switch op {
	case OpIsEmpty, OpIsNotEmpty, OpIsTrue, OpIsFalse:
		return false
	}
	return true
}

// Known reports whether op is a recognised operator.
func (op Operator) Known() bool {
	switch op {
	case OpContains, OpEquals, OpNotEquals, OpStartsWith, OpIsEmpty, OpIsNotEmpty,
		OpGt, OpGte, OpLt, OpLte, OpBefore, OpAfter, OpIsTrue, OpIsFalse, OpIs, OpIsNot:
		return true
	}
	return false
}
