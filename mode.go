package tileanim

import (
	"fmt"
	"strings"
)

// Mode selects how a texture's pixels move from tick to tick.
//
// Exactly one mode is active per texture. Vertical modes rotate whole rows
// through the flat buffer; horizontal modes rotate each row's columns in
// place, wrapping within the row.
type Mode uint8

const (
	// ModeNone leaves the texture untouched.
	ModeNone Mode = iota

	// ModeScrollUp moves rows toward the top edge, wrapping at the bottom.
	ModeScrollUp

	// ModeScrollDown moves rows toward the bottom edge, wrapping at the top.
	ModeScrollDown

	// ModeScrollLeft moves each row's columns toward the left edge.
	ModeScrollLeft

	// ModeScrollRight moves each row's columns toward the right edge.
	ModeScrollRight

	modeCount
)

// Legacy direction codes stored in texture definitions.
const (
	legacyNone        = 0
	legacyScrollUp    = 1
	legacyScrollLeft  = 2
	legacyScrollDown  = 3
	legacyScrollRight = 4
)

var modeNames = [modeCount]string{
	ModeNone:        "none",
	ModeScrollUp:    "scroll_up",
	ModeScrollDown:  "scroll_down",
	ModeScrollLeft:  "scroll_left",
	ModeScrollRight: "scroll_right",
}

// ModeFromLegacy maps a legacy direction code to a Mode.
//
//	1 → ModeScrollUp, 3 → ModeScrollDown
//	2 → ModeScrollLeft, 4 → ModeScrollRight
//
// Zero and every unknown code map to ModeNone.
func ModeFromLegacy(code int) Mode {
	switch code {
	case legacyScrollUp:
		return ModeScrollUp
	case legacyScrollDown:
		return ModeScrollDown
	case legacyScrollLeft:
		return ModeScrollLeft
	case legacyScrollRight:
		return ModeScrollRight
	default:
		return ModeNone
	}
}

// Legacy returns the legacy direction code for m.
func (m Mode) Legacy() int {
	switch m {
	case ModeScrollUp:
		return legacyScrollUp
	case ModeScrollDown:
		return legacyScrollDown
	case ModeScrollLeft:
		return legacyScrollLeft
	case ModeScrollRight:
		return legacyScrollRight
	default:
		return legacyNone
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m < modeCount
}

// IsVertical reports whether m rotates whole rows.
func (m Mode) IsVertical() bool {
	return m == ModeScrollUp || m == ModeScrollDown
}

// IsHorizontal reports whether m rotates columns within rows.
func (m Mode) IsHorizontal() bool {
	return m == ModeScrollLeft || m == ModeScrollRight
}

// sign is the direction multiplier applied to the shift magnitude.
// Up and Left read from lower indices, so their shift is negated.
func (m Mode) sign() int {
	switch m {
	case ModeScrollUp, ModeScrollLeft:
		return -1
	case ModeScrollDown, ModeScrollRight:
		return 1
	default:
		return 0
	}
}

// String returns the manifest name of the mode.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("tileanim: invalid mode %d", uint8(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names are matched
// case-insensitively and dashes are accepted in place of underscores.
func (m *Mode) UnmarshalText(text []byte) error {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(text))), "-", "_")
	if name == "" {
		*m = ModeNone
		return nil
	}
	for i, n := range modeNames {
		if n == name {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("tileanim: unknown mode %q", string(text))
}
