package goap

// ConditionDetermination is the three-valued truth assigned to a named
// condition: TRUE, FALSE, or UNKNOWN. UNKNOWN is the default for anything
// the world has not yet determined.
type ConditionDetermination string

const (
	True    ConditionDetermination = "TRUE"
	False   ConditionDetermination = "FALSE"
	Unknown ConditionDetermination = "UNKNOWN"
)

// Determined lifts a boolean literal into a ConditionDetermination.
func Determined(b bool) ConditionDetermination {
	if b {
		return True
	}
	return False
}

// And is three-valued conjunction: TRUE iff both operands are TRUE,
// FALSE if either operand is FALSE, UNKNOWN otherwise.
func (c ConditionDetermination) And(other ConditionDetermination) ConditionDetermination {
	if c == False || other == False {
		return False
	}
	if c == True && other == True {
		return True
	}
	return Unknown
}

// Satisfies reports whether this value meets a required value.
// Matching is strict: UNKNOWN never satisfies a required TRUE or FALSE.
func (c ConditionDetermination) Satisfies(required ConditionDetermination) bool {
	return c == required
}

// IsKnown reports whether the value is TRUE or FALSE.
func (c ConditionDetermination) IsKnown() bool {
	return c == True || c == False
}

func (c ConditionDetermination) String() string {
	return string(c)
}
