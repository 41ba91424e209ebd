package payments

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransferAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		received int64
		fee      int64
		want     int64
	}{
		{"even split", 10000, 10, 9000},
		{"floors fractional cents", 999, 10, 899},
		{"single cent", 1, 10, 0},
		{"zero received", 0, 10, 0},
		{"negative received", -500, 10, 0},
		{"zero fee", 12345, 0, 12345},
		{"full fee", 12345, 100, 0},
		{"invalid fee falls back to default", 10000, 150, 9000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TransferAmount(tt.received, tt.fee); got != tt.want {
				t.Fatalf("TransferAmount(%d, %d) = %d, want %d", tt.received, tt.fee, got, tt.want)
			}
		})
	}
}

func TestTransferAmountNeverExceedsReceived(t *testing.T) {
	t.Parallel()

	for received := int64(1); received < 1000; received += 7 {
		got := TransferAmount(received, 10)
		if got > received {
			t.Fatalf("payout %d exceeds received %d", got, received)
		}
	}
}

func TestDollarsToCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int64
	}{
		{"49.99", 4999},
		{"0.01", 1},
		{"100", 10000},
		{"10.999", 1099},
	}
	for _, tt := range tests {
		amount, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := DollarsToCents(amount); got != tt.want {
			t.Fatalf("DollarsToCents(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
