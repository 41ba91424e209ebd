package enums

import "fmt"

// BookingStatus tracks a booking through its settlement lifecycle.
type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "created"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusCreated, BookingStatusPaid, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

func ParseBookingStatus(value string) (BookingStatus, error) {
	status := BookingStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status %q", value)
	}
	return status, nil
}
