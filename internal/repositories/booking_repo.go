package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "buslines/internal/config"
	intdb "buslines/internal/db"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
	"buslines/internal/utils"
)

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, booking_id, COALESCE(booking_reference, ''), schedule_id,
		passenger_name, passenger_email, passenger_phone, seat_count,
		original_cents, discount_type, discount_cents, total_cents, status,
		COALESCE(payment_id, ''), COALESCE(gateway_status, ''), payment_date,
		COALESCE(failure_reason, ''), created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b           models.Booking
		status      string
		discount    string
		paymentDate sql.NullTime
	)
	err := row.Scan(
		&b.ID,
		&b.BookingID,
		&b.BookingReference,
		&b.ScheduleID,
		&b.PassengerName,
		&b.PassengerEmail,
		&b.PassengerPhone,
		&b.SeatCount,
		&b.OriginalCents,
		&discount,
		&b.DiscountCents,
		&b.TotalCents,
		&status,
		&b.PaymentID,
		&b.GatewayStatus,
		&paymentDate,
		&b.FailureReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}

	st, ok := domain.ParseBookingStatus(status)
	if !ok {
		return models.Booking{}, domain.InternalError{Msg: "unknown booking status in storage: " + status}
	}
	b.Status = st
	dt, _ := domain.ParseDiscountType(discount)
	b.DiscountType = dt
	if paymentDate.Valid {
		t := paymentDate.Time
		b.PaymentDate = &t
	}
	return b, nil
}

// Insert persists a new booking. The human-readable reference is assigned
// afterwards via SetReference because it embeds the generated id.
func (r BookingRepo) Insert(ex intdb.Execer, b models.Booking) (int64, error) {
	if ex == nil {
		ex = r.db()
	}
	res, err := ex.Exec(`
		INSERT INTO bookings (booking_id, schedule_id, passenger_name, passenger_email, passenger_phone,
			seat_count, original_cents, discount_type, discount_cents, total_cents, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BookingID, b.ScheduleID, b.PassengerName, b.PassengerEmail, b.PassengerPhone,
		b.SeatCount, b.OriginalCents, string(b.DiscountType), b.DiscountCents, b.TotalCents,
		string(b.Status),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepo) SetReference(ex intdb.Execer, id int64, reference string) error {
	if ex == nil {
		ex = r.db()
	}
	_, err := ex.Exec(`UPDATE bookings SET booking_reference=? WHERE id=?`, reference, id)
	return err
}

func (r BookingRepo) GetByID(q intdb.QueryRower, id int64) (models.Booking, error) {
	if q == nil {
		q = r.db()
	}
	b, err := scanBooking(q.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	return b, nil
}

func (r BookingRepo) GetByReference(q intdb.QueryRower, reference string) (models.Booking, error) {
	if q == nil {
		q = r.db()
	}
	b, err := scanBooking(q.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=? LIMIT 1`, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// GetForUpdate locks the booking row; the notification handler and the
// cancellation path serialize on it.
func (r BookingRepo) GetForUpdate(tx *sql.Tx, id int64) (models.Booking, error) {
	b, err := scanBooking(tx.QueryRow(
		`SELECT `+bookingColumns+` FROM bookings WHERE id=? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// MarkPaymentInitiated moves the booking into payment_processing with its
// gateway correlation id.
func (r BookingRepo) MarkPaymentInitiated(ex intdb.Execer, id int64, paymentID string) error {
	if ex == nil {
		ex = r.db()
	}
	_, err := ex.Exec(`
		UPDATE bookings SET status=?, payment_id=?, gateway_status='PENDING' WHERE id=?`,
		string(domain.StatusPaymentProcessing), paymentID, id,
	)
	return err
}

// ApplyOutcome writes a lifecycle transition plus its gateway bookkeeping in
// one statement so status and payment fields never drift apart.
func (r BookingRepo) ApplyOutcome(ex intdb.Execer, id int64, status domain.BookingStatus, gatewayStatus, failureReason string, paymentDate *time.Time) error {
	if ex == nil {
		ex = r.db()
	}
	var paidAt any
	if paymentDate != nil {
		paidAt = utils.FormatDateTime(*paymentDate)
	}
	_, err := ex.Exec(`
		UPDATE bookings SET status=?, gateway_status=?, failure_reason=?, payment_date=? WHERE id=?`,
		string(status), gatewayStatus, failureReason, paidAt, id,
	)
	return err
}

// RecordGatewayStatus stores an unrecognized gateway status without touching
// the lifecycle status.
func (r BookingRepo) RecordGatewayStatus(ex intdb.Execer, id int64, gatewayStatus string) error {
	if ex == nil {
		ex = r.db()
	}
	_, err := ex.Exec(`UPDATE bookings SET gateway_status=? WHERE id=?`, gatewayStatus, id)
	return err
}

// ListStaleProcessing finds bookings stuck in payment_processing since before
// the cutoff; the reconciliation sweep cancels them.
func (r BookingRepo) ListStaleProcessing(cutoff time.Time) ([]int64, error) {
	rows, err := r.db().Query(
		`SELECT id FROM bookings WHERE status=? AND updated_at < ?`,
		string(domain.StatusPaymentProcessing), utils.FormatDateTime(cutoff),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListBySchedule supports the admin view of bookings per departure.
func (r BookingRepo) ListBySchedule(scheduleID int64) ([]models.Booking, error) {
	rows, err := r.db().Query(
		`SELECT `+bookingColumns+` FROM bookings WHERE schedule_id=? ORDER BY created_at DESC`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
