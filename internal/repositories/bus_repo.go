package repositories

import (
	"database/sql"
	"errors"

	intconfig "buslines/internal/config"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
)

type BusRepo struct {
	DB *sql.DB
}

func (r BusRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const busColumns = `id, bus_number, bus_type, total_seats, is_active, created_at, updated_at`

func scanBus(row interface{ Scan(...any) error }) (models.Bus, error) {
	var b models.Bus
	err := row.Scan(
		&b.ID,
		&b.BusNumber,
		&b.BusType,
		&b.TotalSeats,
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (r BusRepo) List(activeOnly bool) ([]models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses`
	if activeOnly {
		query += ` WHERE is_active=1`
	}
	query += ` ORDER BY bus_number`

	rows, err := r.db().Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bus
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListActiveBuses feeds the schedule maintenance engine.
func (r BusRepo) ListActiveBuses() ([]models.Bus, error) {
	return r.List(true)
}

func (r BusRepo) GetByID(id int64) (models.Bus, error) {
	b, err := scanBus(r.db().QueryRow(
		`SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus", Err: err}
		}
		return models.Bus{}, err
	}
	return b, nil
}

func (r BusRepo) Create(b models.Bus) (int64, error) {
	if b.TotalSeats < 1 {
		return 0, domain.ValidationError{Field: "total_seats", Msg: "must be at least 1"}
	}
	res, err := r.db().Exec(`
		INSERT INTO buses (bus_number, bus_type, total_seats, is_active)
		VALUES (?, ?, ?, ?)`,
		b.BusNumber, b.BusType, b.TotalSeats, b.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepo) Update(id int64, b models.Bus) error {
	if b.TotalSeats < 1 {
		return domain.ValidationError{Field: "total_seats", Msg: "must be at least 1"}
	}
	res, err := r.db().Exec(`
		UPDATE buses SET bus_number=?, bus_type=?, total_seats=?, is_active=? WHERE id=?`,
		b.BusNumber, b.BusType, b.TotalSeats, b.IsActive, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "bus"}
	}
	return nil
}

func (r BusRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM buses WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "bus"}
	}
	return nil
}
