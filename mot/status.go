package mot

import (
	"github.com/pkg/errors"
)

// Status is the lifecycle state of a track slot.
type Status uint16

const (
	// StatusFree marks an unused slot
	StatusFree Status = iota
	// StatusPendingFree marks a slot whose identity moved to another slot; it is released at the end of the frame
	StatusPendingFree
	// StatusInactive marks a previously matched track that is currently unmatched
	StatusInactive
	// StatusBuilding marks a matched track that has not been confirmed yet
	StatusBuilding
	// StatusActive marks a confirmed track with a public id
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusPendingFree:
		return "pending_free"
	case StatusInactive:
		return "inactive"
	case StatusBuilding:
		return "building"
	case StatusActive:
		return "active"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s > StatusActive {
		return nil, errors.Errorf("unknown status %d", s)
	}
	return []byte(s.String()), nil
}

// live reports whether the slot takes part in association.
func (s Status) live() bool {
	switch s {
	case StatusInactive, StatusBuilding, StatusActive:
		return true
	case StatusFree, StatusPendingFree:
		return false
	default:
		return false
	}
}

// canTransition reports whether from -> to is a lifecycle edge.
func canTransition(from, to Status) bool {
	switch from {
	case StatusFree:
		return to == StatusBuilding
	case StatusBuilding:
		return to == StatusActive || to == StatusInactive
	case StatusActive:
		return to == StatusInactive
	case StatusInactive:
		return to == StatusActive || to == StatusBuilding || to == StatusFree || to == StatusPendingFree
	case StatusPendingFree:
		return to == StatusFree
	default:
		return false
	}
}

// transition checks the edge and returns the new status.
func transition(from, to Status) (Status, error) {
	if !canTransition(from, to) {
		return from, errors.Errorf("illegal status transition %s -> %s", from, to)
	}
	return to, nil
}
