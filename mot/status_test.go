package mot

import (
	"testing"
)

func TestTransitions(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusFree, StatusBuilding}:        true,
		{StatusBuilding, StatusActive}:      true,
		{StatusBuilding, StatusInactive}:    true,
		{StatusActive, StatusInactive}:      true,
		{StatusInactive, StatusActive}:      true,
		{StatusInactive, StatusBuilding}:    true,
		{StatusInactive, StatusFree}:        true,
		{StatusInactive, StatusPendingFree}: true,
		{StatusPendingFree, StatusFree}:     true,
	}
	all := []Status{StatusFree, StatusPendingFree, StatusInactive, StatusBuilding, StatusActive}
	for _, from := range all {
		for _, to := range all {
			got, err := transition(from, to)
			if allowed[[2]Status{from, to}] {
				if err != nil || got != to {
					t.Errorf("%s -> %s should be allowed: %v", from, to, err)
				}
				continue
			}
			if err == nil || got != from {
				t.Errorf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestStatusText(t *testing.T) {
	text, err := StatusActive.MarshalText()
	if err != nil || string(text) != "active" {
		t.Errorf("unexpected %q (%v)", text, err)
	}
	if _, err := Status(42).MarshalText(); err == nil {
		t.Error("unknown status should not marshal")
	}
}
