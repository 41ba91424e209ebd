package enums

import "fmt"

// ApprovalStatus records the seller's answer to a booking request.
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusConfirmed ApprovalStatus = "confirmed"
)

func (s ApprovalStatus) String() string {
	return string(s)
}

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusConfirmed:
		return true
	default:
		return false
	}
}

func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	status := ApprovalStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid approval status %q", value)
	}
	return status, nil
}
