package service

import (
	"testing"

	"github.com/lonqui-express/internal/constants"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := [][2]string{
		{constants.ShipmentStatusPending, constants.ShipmentStatusAssigned},
		{constants.ShipmentStatusPending, constants.ShipmentStatusCancelled},
		{constants.ShipmentStatusAssigned, constants.ShipmentStatusInTransit},
		{constants.ShipmentStatusAssigned, constants.ShipmentStatusDelivered},
		{constants.ShipmentStatusAssigned, constants.ShipmentStatusNotDelivered},
		{constants.ShipmentStatusAssigned, constants.ShipmentStatusCancelled},
		{constants.ShipmentStatusInTransit, constants.ShipmentStatusDelivered},
		{constants.ShipmentStatusInTransit, constants.ShipmentStatusNotDelivered},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{constants.ShipmentStatusPending, constants.ShipmentStatusInTransit},
		{constants.ShipmentStatusPending, constants.ShipmentStatusDelivered},
		{constants.ShipmentStatusInTransit, constants.ShipmentStatusCancelled},
		{constants.ShipmentStatusDelivered, constants.ShipmentStatusPending},
		{constants.ShipmentStatusCancelled, constants.ShipmentStatusAssigned},
		{constants.ShipmentStatusNotDelivered, constants.ShipmentStatusInTransit},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminals := []string{
		constants.ShipmentStatusDelivered,
		constants.ShipmentStatusNotDelivered,
		constants.ShipmentStatusCancelled,
	}
	for _, status := range terminals {
		if !IsTerminalStatus(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
		if len(allowedTransitions[status]) != 0 {
			t.Fatalf("terminal status %s must not have outgoing transitions", status)
		}
	}
	for _, status := range []string{
		constants.ShipmentStatusPending,
		constants.ShipmentStatusAssigned,
		constants.ShipmentStatusInTransit,
	} {
		if IsTerminalStatus(status) {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}
