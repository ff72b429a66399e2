package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "buslines/internal/config"
	"buslines/internal/domain"
	"buslines/internal/domain/models"
)

type RouteRepo struct {
	DB *sql.DB
}

func (r RouteRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const routeColumns = `id, name, origin, destination, distance_km, duration_hours,
		operating_days, base_price_cents, is_active, created_at, updated_at`

func scanRoute(row interface{ Scan(...any) error }) (models.Route, error) {
	var rt models.Route
	err := row.Scan(
		&rt.ID,
		&rt.Name,
		&rt.Origin,
		&rt.Destination,
		&rt.DistanceKM,
		&rt.DurationHours,
		&rt.OperatingDays,
		&rt.BasePriceCents,
		&rt.IsActive,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	return rt, err
}

func (r RouteRepo) List(activeOnly bool) ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes`
	if activeOnly {
		query += ` WHERE is_active=1`
	}
	query += ` ORDER BY origin, destination`

	rows, err := r.db().Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// ListActiveRoutes feeds the schedule maintenance engine.
func (r RouteRepo) ListActiveRoutes() ([]models.Route, error) {
	return r.List(true)
}

func (r RouteRepo) GetByID(id int64) (models.Route, error) {
	rt, err := scanRoute(r.db().QueryRow(
		`SELECT `+routeColumns+` FROM routes WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route", Err: err}
		}
		return models.Route{}, err
	}
	return rt, nil
}

func (r RouteRepo) Create(rt models.Route) (int64, error) {
	if strings.EqualFold(strings.TrimSpace(rt.Origin), strings.TrimSpace(rt.Destination)) {
		return 0, domain.ValidationError{Field: "destination", Msg: "origin and destination cannot be the same"}
	}
	res, err := r.db().Exec(`
		INSERT INTO routes (name, origin, destination, distance_km, duration_hours, operating_days, base_price_cents, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.Name, rt.Origin, rt.Destination, rt.DistanceKM, rt.DurationHours,
		rt.OperatingDays, rt.BasePriceCents, rt.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepo) Update(id int64, rt models.Route) error {
	if strings.EqualFold(strings.TrimSpace(rt.Origin), strings.TrimSpace(rt.Destination)) {
		return domain.ValidationError{Field: "destination", Msg: "origin and destination cannot be the same"}
	}
	res, err := r.db().Exec(`
		UPDATE routes
		SET name=?, origin=?, destination=?, distance_km=?, duration_hours=?, operating_days=?, base_price_cents=?, is_active=?
		WHERE id=?`,
		rt.Name, rt.Origin, rt.Destination, rt.DistanceKM, rt.DurationHours,
		rt.OperatingDays, rt.BasePriceCents, rt.IsActive, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

func (r RouteRepo) Delete(id int64) error {
	res, err := r.db().Exec(`DELETE FROM routes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}
