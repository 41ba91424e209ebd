package enums

import "fmt"

// SettlementEventType labels entries in the append-only settlement ledger.
type SettlementEventType string

const (
	SettlementEventAuthorized  SettlementEventType = "authorized"
	SettlementEventCaptured    SettlementEventType = "captured"
	SettlementEventRefunded    SettlementEventType = "refunded"
	SettlementEventTransferred SettlementEventType = "transferred"
)

func (t SettlementEventType) String() string {
	return string(t)
}

func (t SettlementEventType) IsValid() bool {
	switch t {
	case SettlementEventAuthorized, SettlementEventCaptured, SettlementEventRefunded, SettlementEventTransferred:
		return true
	default:
		return false
	}
}

func ParseSettlementEventType(value string) (SettlementEventType, error) {
	eventType := SettlementEventType(value)
	if !eventType.IsValid() {
		return "", fmt.Errorf("invalid settlement event type %q", value)
	}
	return eventType, nil
}
