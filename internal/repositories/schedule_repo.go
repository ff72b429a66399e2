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

type ScheduleRepo struct {
	DB *sql.DB
}

func (r ScheduleRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const scheduleColumns = `id, route_id, bus_id, departure_time, arrival_time,
		available_seats, price_cents, is_active, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }) (models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(
		&s.ID,
		&s.RouteID,
		&s.BusID,
		&s.DepartureTime,
		&s.ArrivalTime,
		&s.AvailableSeats,
		&s.PriceCents,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// ScheduleExists is the dedup predicate: one schedule per (route, departure).
func (r ScheduleRepo) ScheduleExists(routeID int64, departure time.Time) (bool, error) {
	var one int
	err := r.db().QueryRow(
		`SELECT 1 FROM schedules WHERE route_id=? AND departure_time=? LIMIT 1`,
		routeID, utils.FormatDateTime(departure),
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r ScheduleRepo) CreateSchedule(s models.Schedule) error {
	_, err := r.db().Exec(`
		INSERT INTO schedules (route_id, bus_id, departure_time, arrival_time, available_seats, price_cents, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.RouteID, s.BusID,
		utils.FormatDateTime(s.DepartureTime), utils.FormatDateTime(s.ArrivalTime),
		s.AvailableSeats, s.PriceCents, s.IsActive,
	)
	return err
}

// DeletePastSchedules removes every schedule departing before the given day
// boundary. Dependent bookings go with them via FK cascade.
func (r ScheduleRepo) DeletePastSchedules(before time.Time) (int64, error) {
	res, err := r.db().Exec(
		`DELETE FROM schedules WHERE departure_time < ?`,
		utils.FormatDateTime(before),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountPastSchedules counts what DeletePastSchedules would remove (dry run).
func (r ScheduleRepo) CountPastSchedules(before time.Time) (int64, error) {
	var n int64
	err := r.db().QueryRow(
		`SELECT COUNT(*) FROM schedules WHERE departure_time < ?`,
		utils.FormatDateTime(before),
	).Scan(&n)
	return n, err
}

// FutureCoverage reports count plus earliest/latest departure from the given day.
func (r ScheduleRepo) FutureCoverage(from time.Time) (int64, *time.Time, *time.Time, error) {
	var (
		n        int64
		earliest sql.NullTime
		latest   sql.NullTime
	)
	err := r.db().QueryRow(
		`SELECT COUNT(*), MIN(departure_time), MAX(departure_time) FROM schedules WHERE departure_time >= ?`,
		utils.FormatDateTime(from),
	).Scan(&n, &earliest, &latest)
	if err != nil {
		return 0, nil, nil, err
	}
	var e, l *time.Time
	if earliest.Valid {
		e = &earliest.Time
	}
	if latest.Valid {
		l = &latest.Time
	}
	return n, e, l, nil
}

const scheduleDetailQuery = `
	SELECT s.id, s.route_id, s.bus_id, s.departure_time, s.arrival_time,
		s.available_seats, s.price_cents, s.is_active, s.created_at, s.updated_at,
		r.name, r.origin, r.destination,
		b.bus_number, b.bus_type, b.total_seats
	FROM schedules s
	JOIN routes r ON r.id = s.route_id
	JOIN buses b ON b.id = s.bus_id`

func scanScheduleDetail(row interface{ Scan(...any) error }) (models.ScheduleDetail, error) {
	var d models.ScheduleDetail
	err := row.Scan(
		&d.ID,
		&d.RouteID,
		&d.BusID,
		&d.DepartureTime,
		&d.ArrivalTime,
		&d.AvailableSeats,
		&d.PriceCents,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.RouteName,
		&d.Origin,
		&d.Destination,
		&d.BusNumber,
		&d.BusType,
		&d.TotalSeats,
	)
	return d, err
}

// GetDetail loads a schedule joined with its route and bus. Accepts a
// QueryRower so callers inside a transaction can reuse it.
func (r ScheduleRepo) GetDetail(q intdb.QueryRower, id int64) (models.ScheduleDetail, error) {
	if q == nil {
		q = r.db()
	}
	d, err := scanScheduleDetail(q.QueryRow(scheduleDetailQuery+` WHERE s.id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ScheduleDetail{}, domain.NotFoundError{Resource: "schedule", Err: err}
		}
		return models.ScheduleDetail{}, err
	}
	return d, nil
}

// Search lists bookable schedules between two towns on one calendar day.
func (r ScheduleRepo) Search(origin, destination string, day time.Time) ([]models.ScheduleDetail, error) {
	start := utils.DayStart(day)
	end := start.AddDate(0, 0, 1)

	rows, err := r.db().Query(scheduleDetailQuery+`
		WHERE r.origin = ? AND r.destination = ?
		  AND s.departure_time >= ? AND s.departure_time < ?
		  AND s.is_active = 1 AND s.available_seats > 0
		ORDER BY s.departure_time`,
		origin, destination, utils.FormatDateTime(start), utils.FormatDateTime(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduleDetail
	for rows.Next() {
		d, err := scanScheduleDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AvailableDates lists calendar days with bookable departures between two towns.
func (r ScheduleRepo) AvailableDates(origin, destination string, from time.Time) ([]string, error) {
	rows, err := r.db().Query(`
		SELECT DISTINCT DATE(s.departure_time)
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		WHERE r.origin = ? AND r.destination = ?
		  AND s.departure_time >= ?
		  AND s.is_active = 1 AND s.available_seats > 0
		ORDER BY 1`,
		origin, destination, utils.FormatDateTime(from),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		out = append(out, utils.FormatDate(day))
	}
	return out, rows.Err()
}

// GetForUpdate locks the schedule row for the duration of the transaction.
// Every seat-counter mutation goes through this lock.
func (r ScheduleRepo) GetForUpdate(tx *sql.Tx, id int64) (models.Schedule, error) {
	s, err := scanSchedule(tx.QueryRow(
		`SELECT `+scheduleColumns+` FROM schedules WHERE id=? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, domain.NotFoundError{Resource: "schedule", Err: err}
		}
		return models.Schedule{}, err
	}
	return s, nil
}

// AdjustSeats moves the available-seat counter by delta (+1 release, -1 reserve).
func (r ScheduleRepo) AdjustSeats(ex intdb.Execer, id int64, delta int) error {
	if ex == nil {
		ex = r.db()
	}
	res, err := ex.Exec(
		`UPDATE schedules SET available_seats = available_seats + ? WHERE id=?`,
		delta, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "schedule"}
	}
	return nil
}
