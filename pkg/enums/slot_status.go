package enums

import "fmt"

// SlotStatus marks whether a service time slot can still be claimed.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

func (s SlotStatus) String() string {
	return string(s)
}

func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotStatusAvailable, SlotStatusBooked:
		return true
	default:
		return false
	}
}

func ParseSlotStatus(value string) (SlotStatus, error) {
	status := SlotStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid slot status %q", value)
	}
	return status, nil
}
