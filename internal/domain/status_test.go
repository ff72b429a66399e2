package domain

import "testing"

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{StatusPendingPayment, StatusPaymentProcessing, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPendingPayment, StatusConfirmed, false},
		{StatusPendingPayment, StatusCompleted, false},

		{StatusPaymentProcessing, StatusConfirmed, true},
		{StatusPaymentProcessing, StatusPaymentFailed, true},
		{StatusPaymentProcessing, StatusCancelled, true},
		{StatusPaymentProcessing, StatusCompleted, false},

		{StatusPaymentFailed, StatusPaymentProcessing, true},
		{StatusPaymentFailed, StatusCancelled, true},
		{StatusPaymentFailed, StatusConfirmed, false},

		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPaymentProcessing, false},

		{StatusCancelled, StatusPendingPayment, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %t, want %t", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []BookingStatus{StatusCancelled, StatusCompleted, StatusNoShow}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	open := []BookingStatus{StatusPendingPayment, StatusPaymentProcessing, StatusPaymentFailed, StatusConfirmed}
	for _, s := range open {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestHoldsSeat(t *testing.T) {
	holding := []BookingStatus{StatusPendingPayment, StatusPaymentProcessing, StatusConfirmed}
	for _, s := range holding {
		if !HoldsSeat(s) {
			t.Errorf("%s should hold its seat", s)
		}
	}
	released := []BookingStatus{StatusPaymentFailed, StatusCancelled, StatusCompleted, StatusNoShow}
	for _, s := range released {
		if HoldsSeat(s) {
			t.Errorf("%s should not hold a seat", s)
		}
	}
}

func TestParseBookingStatusRejectsUnknown(t *testing.T) {
	if _, ok := ParseBookingStatus("refunded"); ok {
		t.Fatal("unknown status accepted")
	}
	if st, ok := ParseBookingStatus("payment_processing"); !ok || st != StatusPaymentProcessing {
		t.Fatalf("known status rejected, got %s ok=%t", st, ok)
	}
}

func TestDiscounts(t *testing.T) {
	if DiscountFor(DiscountNone) != 0 {
		t.Fatal("none should have no discount")
	}
	for _, d := range []DiscountType{DiscountScholar, DiscountStudent, DiscountPensioner} {
		if DiscountFor(d) != 4000 {
			t.Errorf("discount for %s = %d, want 4000", d, DiscountFor(d))
		}
	}
	if _, ok := ParseDiscountType("senior"); ok {
		t.Fatal("unknown discount category accepted")
	}
	if dt, ok := ParseDiscountType(""); !ok || dt != DiscountNone {
		t.Fatal("empty discount should parse as none")
	}
}
