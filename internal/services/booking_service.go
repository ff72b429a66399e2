package services

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	intconfig "buslines/internal/config"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
	"buslines/internal/repositories"
	"buslines/internal/utils"

	"github.com/google/uuid"
)

// BookingService owns booking creation, cancellation, and the gateway
// notification state machine. Every seat-counter change happens inside a
// transaction together with the status write it belongs to.
type BookingService struct {
	DB        *sql.DB
	Bookings  repositories.BookingRepo
	Schedules repositories.ScheduleRepo
	PayFast   PayFastService
	Notifier  *NotifyService

	Now  func() time.Time
	Pick func(n int) int

	RequestID string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepo {
	if s.Bookings.DB != nil {
		return s.Bookings
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s BookingService) schedules() repositories.ScheduleRepo {
	if s.Schedules.DB != nil {
		return s.Schedules
	}
	return repositories.ScheduleRepo{DB: s.db()}
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) pick(n int) int {
	if n <= 0 {
		return 0
	}
	if s.Pick != nil {
		return s.Pick(n)
	}
	return rand.Intn(n)
}

type CreateBookingInput struct {
	ScheduleID     int64  `json:"schedule_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	DiscountType   string `json:"discount_type"`
}

func (in CreateBookingInput) validate() (domain.DiscountType, error) {
	if in.ScheduleID <= 0 {
		return domain.DiscountNone, domain.ValidationError{Field: "schedule_id", Msg: "missing or invalid"}
	}
	if strings.TrimSpace(in.PassengerName) == "" {
		return domain.DiscountNone, domain.ValidationError{Field: "passenger_name", Msg: "required"}
	}
	email := strings.TrimSpace(in.PassengerEmail)
	if email == "" || !strings.Contains(email, "@") {
		return domain.DiscountNone, domain.ValidationError{Field: "passenger_email", Msg: "valid email required"}
	}
	if strings.TrimSpace(in.PassengerPhone) == "" {
		return domain.DiscountNone, domain.ValidationError{Field: "passenger_phone", Msg: "required"}
	}
	dt, ok := domain.ParseDiscountType(strings.TrimSpace(in.DiscountType))
	if !ok {
		return domain.DiscountNone, domain.ValidationError{Field: "discount_type", Msg: "unknown discount category"}
	}
	return dt, nil
}

// CreateBooking reserves one seat and starts the payment round-trip. The seat
// decrement and the booking insert commit as one unit; a payment setup failure
// afterwards releases the seat and cancels the booking before surfacing.
func (s BookingService) CreateBooking(in CreateBookingInput) (models.Booking, PaymentForm, error) {
	discount, err := in.validate()
	if err != nil {
		return models.Booking{}, PaymentForm{}, err
	}

	// Route/bus names for the payment description; read before the lock.
	detail, err := s.schedules().GetDetail(nil, in.ScheduleID)
	if err != nil {
		return models.Booking{}, PaymentForm{}, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, PaymentForm{}, domain.InternalError{Msg: "could not start transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	sched, err := s.schedules().GetForUpdate(tx, in.ScheduleID)
	if err != nil {
		return models.Booking{}, PaymentForm{}, err
	}
	if !sched.IsActive {
		return models.Booking{}, PaymentForm{}, domain.ConflictError{Resource: "schedule", Msg: "not open for booking"}
	}
	if sched.AvailableSeats < 1 {
		return models.Booking{}, PaymentForm{}, domain.SeatsUnavailableError{ScheduleID: sched.ID}
	}

	if err := s.schedules().AdjustSeats(tx, sched.ID, -1); err != nil {
		return models.Booking{}, PaymentForm{}, domain.InternalError{Msg: "could not reserve seat", Err: err}
	}

	base := sched.PriceCents
	discountCents := domain.DiscountFor(discount)
	total := base - discountCents
	if total < 0 {
		total = 0
	}

	booking := models.Booking{
		BookingID:      uuid.NewString(),
		ScheduleID:     sched.ID,
		PassengerName:  strings.TrimSpace(in.PassengerName),
		PassengerEmail: strings.TrimSpace(in.PassengerEmail),
		PassengerPhone: strings.TrimSpace(in.PassengerPhone),
		SeatCount:      1,
		OriginalCents:  base,
		DiscountType:   discount,
		DiscountCents:  discountCents,
		TotalCents:     total,
		Status:         domain.StatusPendingPayment,
	}

	id, err := s.bookings().Insert(tx, booking)
	if err != nil {
		return models.Booking{}, PaymentForm{}, domain.InternalError{Msg: "could not create booking", Err: err}
	}
	booking.ID = id
	booking.BookingReference = s.bookingReference(id)

	if err := s.bookings().SetReference(tx, id, booking.BookingReference); err != nil {
		return models.Booking{}, PaymentForm{}, domain.InternalError{Msg: "could not assign booking reference", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return models.Booking{}, PaymentForm{}, domain.InternalError{Msg: "could not commit booking", Err: err}
	}

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking %s created on schedule %d, seat reserved", booking.BookingReference, sched.ID))

	form, err := s.PayFast.BuildPaymentForm(booking, detail)
	if err == nil {
		err = s.bookings().MarkPaymentInitiated(nil, id, form.PaymentID)
		if err != nil {
			err = domain.GatewaySetupError{Msg: "could not record payment initiation", Err: err}
		}
	}
	if err != nil {
		// Mandatory compensation: an uncompensated setup failure strands the seat.
		s.compensateSetupFailure(id)
		if !domain.IsGatewaySetup(err) {
			err = domain.GatewaySetupError{Err: err}
		}
		return models.Booking{}, PaymentForm{}, err
	}

	booking.Status = domain.StatusPaymentProcessing
	booking.PaymentID = form.PaymentID
	booking.GatewayStatus = "PENDING"
	return booking, form, nil
}

// bookingReference builds the human-readable reference: FB + row id + MMSS +
// one random digit. Assigned post-insert because it embeds the id.
func (s BookingService) bookingReference(id int64) string {
	return fmt.Sprintf("FB%d%s%d", id, s.now().Format("0405"), s.pick(10))
}

func (s BookingService) compensateSetupFailure(bookingID int64) {
	if err := s.cancelTx(bookingID, "SETUP_FAILED", "Payment setup failed", true); err != nil {
		utils.LogEvent(s.RequestID, "booking", "compensate",
			fmt.Sprintf("compensation failed for booking %d: %v", bookingID, err))
		return
	}
	utils.LogEvent(s.RequestID, "booking", "compensate",
		fmt.Sprintf("seat released and booking %d cancelled after setup failure", bookingID))
}

// NotificationResult reports what a gateway notification did.
type NotificationResult struct {
	GatewayStatus    string               `json:"gateway_status"`
	BookingStatus    domain.BookingStatus `json:"booking_status"`
	BookingReference string               `json:"booking_reference"`
	Applied          bool                 `json:"applied"`
	SeatReleased     bool                 `json:"seat_released"`
}

// HandleGatewayNotification processes one ITN payload. Deliveries are
// at-least-once and unordered, so the handler is idempotent: a duplicate
// outcome is a no-op and a seat is only released when the booking leaves a
// seat-holding status.
func (s BookingService) HandleGatewayNotification(post map[string]string) (NotificationResult, error) {
	if err := s.PayFast.ValidateNotification(post); err != nil {
		utils.LogEvent(s.RequestID, "payfast", "notify", "rejected notification: "+err.Error())
		return NotificationResult{}, err
	}

	rawID := strings.TrimSpace(post["custom_int1"])
	if rawID == "" {
		return NotificationResult{}, domain.ValidationError{Field: "custom_int1", Msg: "no booking id in notification"}
	}
	bookingID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || bookingID <= 0 {
		return NotificationResult{}, domain.ValidationError{Field: "custom_int1", Msg: "invalid booking id"}
	}
	reference := strings.TrimSpace(post["custom_str1"])
	gatewayStatus := strings.TrimSpace(post["payment_status"])

	tx, err := s.db().Begin()
	if err != nil {
		return NotificationResult{}, domain.InternalError{Msg: "could not start transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	booking, err := s.bookings().GetForUpdate(tx, bookingID)
	if err != nil {
		return NotificationResult{}, err
	}
	if reference != "" && booking.BookingReference != reference {
		return NotificationResult{}, domain.NotFoundError{Resource: "booking"}
	}

	result := NotificationResult{
		GatewayStatus:    gatewayStatus,
		BookingStatus:    booking.Status,
		BookingReference: booking.BookingReference,
	}

	var target domain.BookingStatus
	var failureReason string
	switch gatewayStatus {
	case "COMPLETE":
		target = domain.StatusConfirmed
	case "FAILED":
		target = domain.StatusPaymentFailed
		failureReason = "Payment failed at gateway"
	case "CANCELLED":
		target = domain.StatusCancelled
		failureReason = "Payment cancelled by user"
	default:
		// Unknown statuses must not confirm anything or move a seat; record
		// the raw value and stop.
		if err := s.bookings().RecordGatewayStatus(tx, bookingID, gatewayStatus); err != nil {
			return result, domain.InternalError{Msg: "could not record gateway status", Err: err}
		}
		if err := tx.Commit(); err != nil {
			return result, domain.InternalError{Msg: "commit failed", Err: err}
		}
		utils.LogEvent(s.RequestID, "payfast", "notify",
			fmt.Sprintf("unknown payment status %q for booking %s", gatewayStatus, booking.BookingReference))
		return result, nil
	}

	if booking.Status == target || !domain.CanTransition(booking.Status, target) {
		// Duplicate delivery or an outcome arriving after a terminal state.
		if err := tx.Commit(); err != nil {
			return result, domain.InternalError{Msg: "commit failed", Err: err}
		}
		utils.LogEvent(s.RequestID, "payfast", "notify",
			fmt.Sprintf("notification %s ignored for booking %s in status %s", gatewayStatus, booking.BookingReference, booking.Status))
		return result, nil
	}

	release := target != domain.StatusConfirmed && domain.HoldsSeat(booking.Status)
	if release {
		if err := s.schedules().AdjustSeats(tx, booking.ScheduleID, +1); err != nil {
			return result, domain.InternalError{Msg: "could not release seat", Err: err}
		}
	}

	var paidAt *time.Time
	if target == domain.StatusConfirmed {
		t := s.now()
		paidAt = &t
	}
	if err := s.bookings().ApplyOutcome(tx, bookingID, target, gatewayStatus, failureReason, paidAt); err != nil {
		return result, domain.InternalError{Msg: "could not apply payment outcome", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return result, domain.InternalError{Msg: "commit failed", Err: err}
	}

	result.BookingStatus = target
	result.Applied = true
	result.SeatReleased = release
	utils.LogEvent(s.RequestID, "payfast", "notify",
		fmt.Sprintf("booking %s -> %s (seat_released=%t)", booking.BookingReference, target, release))

	s.notifyOutcome(booking, target)
	return result, nil
}

// CancelBooking cancels when the transition table allows it, releasing the
// seat iff the booking still held one.
func (s BookingService) CancelBooking(bookingID int64) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	if err := s.cancelTx(bookingID, "CANCELLED", "Cancelled by passenger", false); err != nil {
		return models.Booking{}, err
	}

	booking, err := s.bookings().GetByID(nil, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "booking", "cancel", "booking "+booking.BookingReference+" cancelled")
	s.notifyOutcome(booking, domain.StatusCancelled)
	return booking, nil
}

// cancelTx moves a booking to cancelled inside one transaction. With force
// set, an illegal transition is still applied (compensation path only).
func (s BookingService) cancelTx(bookingID int64, gatewayStatus, reason string, force bool) error {
	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Msg: "could not start transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	booking, err := s.bookings().GetForUpdate(tx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == domain.StatusCancelled {
		return tx.Commit()
	}
	if !force && !domain.CanTransition(booking.Status, domain.StatusCancelled) {
		return domain.IllegalTransitionError{
			From:    booking.Status,
			To:      domain.StatusCancelled,
			Allowed: domain.AvailableTransitions(booking.Status),
		}
	}

	if domain.HoldsSeat(booking.Status) {
		if err := s.schedules().AdjustSeats(tx, booking.ScheduleID, +1); err != nil {
			return domain.InternalError{Msg: "could not release seat", Err: err}
		}
	}
	if err := s.bookings().ApplyOutcome(tx, bookingID, domain.StatusCancelled, gatewayStatus, reason, nil); err != nil {
		return domain.InternalError{Msg: "could not cancel booking", Err: err}
	}
	return tx.Commit()
}

// ReleaseStaleProcessing cancels bookings stuck in payment_processing longer
// than maxAge, releasing their seats. Best-effort per booking.
func (s BookingService) ReleaseStaleProcessing(maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	ids, err := s.bookings().ListStaleProcessing(cutoff)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, id := range ids {
		if err := s.cancelTx(id, "TIMEOUT", "Payment processing timed out", false); err != nil {
			utils.LogEvent(s.RequestID, "booking", "stale_sweep",
				fmt.Sprintf("could not release booking %d: %v", id, err))
			continue
		}
		released++
	}
	if released > 0 {
		utils.LogEvent(s.RequestID, "booking", "stale_sweep",
			fmt.Sprintf("released %d bookings stuck in payment_processing", released))
	}
	return released, nil
}

// notifyOutcome emails the passenger best-effort; a send failure never rolls
// back the transition that triggered it.
func (s BookingService) notifyOutcome(booking models.Booking, status domain.BookingStatus) {
	if s.Notifier == nil {
		return
	}
	var err error
	switch status {
	case domain.StatusConfirmed:
		detail, derr := s.schedules().GetDetail(nil, booking.ScheduleID)
		if derr != nil {
			utils.LogEvent(s.RequestID, "notify", "confirmation", "schedule lookup failed: "+derr.Error())
			return
		}
		err = s.Notifier.SendConfirmation(booking, detail)
	case domain.StatusCancelled:
		err = s.Notifier.SendCancellation(booking)
	default:
		return
	}
	if err != nil {
		utils.LogEvent(s.RequestID, "notify", string(status), "send failed: "+err.Error())
	}
}
