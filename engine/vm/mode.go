package vm

import (
	"fmt"
	"strings"
)

// Mode selects the optimization passes applied by Executor.Run. The flags are independent.
type Mode uint32

const (
	// ModeNone replays the chain as recorded.
	ModeNone Mode = 0x0
	// ModeRedundancyChecks skips state instructions that would set a value already current.
	ModeRedundancyChecks Mode = 0x1
	// ModeStateSorting reorders state instructions between draws to group equal categories.
	ModeStateSorting Mode = 0x2
	// ModeAll enables every pass.
	ModeAll = ModeRedundancyChecks | ModeStateSorting
)

// Has reports whether every flag in flag is set in m.
func (m Mode) Has(flag Mode) bool {
	return m&flag == flag
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRedundancyChecks:
		return "redundancy"
	case ModeStateSorting:
		return "sorting"
	case ModeAll:
		return "both"
	}
	return fmt.Sprintf("Mode(0x%x)", uint32(m))
}

// ParseMode parses the names produced by Mode.String. "all" is accepted for "both", and flags
// may be combined with "|" or "+".
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error if a flag name is unknown
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, part := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '|' || r == '+' }) {
		switch strings.TrimSpace(part) {
		case "none", "":
		case "redundancy", "redundancy-checks":
			m |= ModeRedundancyChecks
		case "sorting", "state-sorting":
			m |= ModeStateSorting
		case "both", "all":
			m |= ModeAll
		default:
			return ModeNone, fmt.Errorf("vm: unknown mode %q", part)
		}
	}
	return m, nil
}
