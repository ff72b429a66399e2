package domain

// BookingStatus is the booking lifecycle state. Values are stored as-is in the
// bookings table; anything outside the known set is rejected at the boundary.
type BookingStatus string

const (
	StatusPendingPayment    BookingStatus = "pending_payment"
	StatusPaymentProcessing BookingStatus = "payment_processing"
	StatusPaymentFailed     BookingStatus = "payment_failed"
	StatusConfirmed         BookingStatus = "confirmed"
	StatusCancelled         BookingStatus = "cancelled"
	StatusCompleted         BookingStatus = "completed"
	StatusNoShow            BookingStatus = "no_show"
)

// validTransitions is the single source of truth for lifecycle legality.
// A transition absent here is rejected everywhere.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingPayment:    {StatusPaymentProcessing, StatusCancelled},
	StatusPaymentProcessing: {StatusConfirmed, StatusPaymentFailed, StatusCancelled},
	StatusPaymentFailed:     {StatusPaymentProcessing, StatusCancelled},
	StatusConfirmed:         {StatusCompleted, StatusCancelled},
	StatusCancelled:         {},
	StatusCompleted:         {},
	StatusNoShow:            {},
}

// ParseBookingStatus validates a raw status string from storage or input.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(s)
	_, ok := validTransitions[st]
	return st, ok
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to BookingStatus) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the legal targets from the given status.
func AvailableTransitions(from BookingStatus) []BookingStatus {
	targets := validTransitions[from]
	out := make([]BookingStatus, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s BookingStatus) bool {
	targets, ok := validTransitions[s]
	return ok && len(targets) == 0
}

// HoldsSeat reports whether a booking in this status still owns its reserved
// seat. Seat release must happen exactly once, when leaving one of these states.
func HoldsSeat(s BookingStatus) bool {
	switch s {
	case StatusPendingPayment, StatusPaymentProcessing, StatusConfirmed:
		return true
	default:
		return false
	}
}

// DiscountType is the passenger discount category.
type DiscountType string

const (
	DiscountNone      DiscountType = "none"
	DiscountScholar   DiscountType = "scholar"
	DiscountStudent   DiscountType = "student"
	DiscountPensioner DiscountType = "pensioner"
)

// discountCents is the flat R40 discount for eligible categories.
const discountCents int64 = 4000

// ParseDiscountType maps raw input to a known category, defaulting to none.
func ParseDiscountType(s string) (DiscountType, bool) {
	switch DiscountType(s) {
	case DiscountNone, "":
		return DiscountNone, true
	case DiscountScholar:
		return DiscountScholar, true
	case DiscountStudent:
		return DiscountStudent, true
	case DiscountPensioner:
		return DiscountPensioner, true
	default:
		return DiscountNone, false
	}
}

// DiscountFor returns the discount in cents for a category.
func DiscountFor(t DiscountType) int64 {
	switch t {
	case DiscountScholar, DiscountStudent, DiscountPensioner:
		return discountCents
	default:
		return 0
	}
}
