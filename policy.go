package trailers

import (
	"fmt"
	"strings"
)

// Where controls the placement of a new trailer relative to the existing
// trailers of the block.
type Where int

// Placements. WhereDefault resolves to Settings.Where.
const (
	WhereDefault Where = iota
	WhereEnd
	WhereAfter
	WhereBefore
	WhereStart
)

var whereNames = map[Where]string{
	WhereDefault: "default",
	WhereEnd:     "end",
	WhereAfter:   "after",
	WhereBefore:  "before",
	WhereStart:   "start",
}

func (w Where) String() string {
	if n, ok := whereNames[w]; ok {
		return n
	}

	return fmt.Sprintf("Where(%d)", int(w))
}

// afterOrEnd reports whether insertion happens behind the anchor record.
func (w Where) afterOrEnd() bool {
	return w == WhereAfter || w == WhereEnd
}

// IfExists is the conflict policy applied when the block already holds a
// trailer with the same key.
type IfExists int

// Existence policies. IfExistsDefault resolves to Settings.IfExists.
const (
	IfExistsDefault IfExists = iota
	IfExistsAddIfDifferentNeighbor
	IfExistsAddIfDifferent
	IfExistsAdd
	IfExistsReplace
	IfExistsDoNothing
)

var ifExistsNames = map[IfExists]string{
	IfExistsDefault:                "default",
	IfExistsAddIfDifferentNeighbor: "addIfDifferentNeighbor",
	IfExistsAddIfDifferent:         "addIfDifferent",
	IfExistsAdd:                    "add",
	IfExistsReplace:                "replace",
	IfExistsDoNothing:              "doNothing",
}

func (e IfExists) String() string {
	if n, ok := ifExistsNames[e]; ok {
		return n
	}

	return fmt.Sprintf("IfExists(%d)", int(e))
}

// IfMissing is the policy applied when no trailer with the same key exists.
type IfMissing int

// Missing policies. IfMissingDefault resolves to Settings.IfMissing.
const (
	IfMissingDefault IfMissing = iota
	IfMissingAdd
	IfMissingDoNothing
)

var ifMissingNames = map[IfMissing]string{
	IfMissingDefault:   "default",
	IfMissingAdd:       "add",
	IfMissingDoNothing: "doNothing",
}

func (m IfMissing) String() string {
	if n, ok := ifMissingNames[m]; ok {
		return n
	}

	return fmt.Sprintf("IfMissing(%d)", int(m))
}

// ParseWhere parses a placement value as used by trailer.where and --where.
// Matching is case-insensitive. "default" is rejected, it is not a value a
// user can configure.
func ParseWhere(value string) (Where, error) {
	for w, n := range whereNames {
		if w != WhereDefault && strings.EqualFold(value, n) {
			return w, nil
		}
	}

	return WhereDefault, fmt.Errorf("%w: %q", ErrUnknownWhere, value)
}

// ParseIfExists parses an existence policy as used by trailer.ifexists
// and --if-exists.
func ParseIfExists(value string) (IfExists, error) {
	for e, n := range ifExistsNames {
		if e != IfExistsDefault && strings.EqualFold(value, n) {
			return e, nil
		}
	}

	return IfExistsDefault, fmt.Errorf("%w: %q", ErrUnknownIfExists, value)
}

// ParseIfMissing parses a missing policy as used by trailer.ifmissing
// and --if-missing.
func ParseIfMissing(value string) (IfMissing, error) {
	for m, n := range ifMissingNames {
		if m != IfMissingDefault && strings.EqualFold(value, n) {
			return m, nil
		}
	}

	return IfMissingDefault, fmt.Errorf("%w: %q", ErrUnknownIfMissing, value)
}
