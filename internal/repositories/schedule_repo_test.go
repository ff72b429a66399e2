package repositories

import (
	"testing"
	"time"

	"buslines/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestScheduleExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	repo := ScheduleRepo{DB: db}
	dep := time.Date(2025, 3, 12, 8, 0, 0, 0, time.Local)

	mock.ExpectQuery("SELECT 1 FROM schedules WHERE route_id=\\? AND departure_time=\\?").
		WithArgs(int64(1), "2025-03-12 08:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ScheduleExists(1, dep)
	if err != nil {
		t.Fatalf("exists query: %v", err)
	}
	if !exists {
		t.Fatal("expected schedule to exist")
	}

	mock.ExpectQuery("SELECT 1 FROM schedules WHERE route_id=\\? AND departure_time=\\?").
		WithArgs(int64(2), "2025-03-12 08:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ScheduleExists(2, dep)
	if err != nil {
		t.Fatalf("exists query: %v", err)
	}
	if exists {
		t.Fatal("expected schedule to be missing")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeletePastSchedulesReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ScheduleRepo{DB: db}
	before := time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local)

	mock.ExpectExec("DELETE FROM schedules WHERE departure_time <").
		WithArgs("2025-03-11 00:00:00").
		WillReturnResult(sqlmock.NewResult(0, 12))

	removed, err := repo.DeletePastSchedules(before)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 12 {
		t.Fatalf("removed %d, want 12", removed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFutureCoverageEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ScheduleRepo{DB: db}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), MIN\\(departure_time\\), MAX\\(departure_time\\) FROM schedules").
		WillReturnRows(sqlmock.NewRows([]string{"count", "min", "max"}).AddRow(0, nil, nil))

	n, earliest, latest, err := repo.FutureCoverage(time.Now())
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if n != 0 || earliest != nil || latest != nil {
		t.Fatalf("empty table coverage = %d/%v/%v", n, earliest, latest)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdjustSeatsMissingScheduleIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := ScheduleRepo{DB: db}

	mock.ExpectExec("UPDATE schedules SET available_seats").
		WithArgs(-1, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AdjustSeats(nil, 99, -1)
	if !domain.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
