package session

import (
	"fmt"
)

// Mode selects the lifecycle path a prove call takes. Raw integers crossing
// the library boundary are converted through ParseMode and never propagate
// past it.
type Mode int32

const (
	// ModeProve runs a notarized session and persists the attestation only.
	ModeProve Mode = iota
	// ModePresent loads an existing attestation and produces a presentation
	// without a new network session.
	ModePresent
	// ModeProveToPresent does both in one call.
	ModeProveToPresent
)

func (m Mode) String() string {
	switch m {
	case ModeProve:
		return "prove"
	case ModePresent:
		return "present"
	case ModeProveToPresent:
		return "prove_to_present"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// ParseMode converts a boundary integer into a Mode.
// 0=prove, 1=present, 2=prove_to_present.
func ParseMode(v int32) (Mode, error) {
	switch m := Mode(v); m {
	case ModeProve, ModePresent, ModeProveToPresent:
		return m, nil
	default:
		return 0, fmt.Errorf("invalid mode value %d: use 0=prove, 1=present, 2=prove_to_present", v)
	}
}
