package services

import (
	"fmt"
	"testing"
	"time"

	"buslines/internal/domain/models"
	"buslines/internal/utils"
)

type fakeRoutes []models.Route

func (f fakeRoutes) ListActiveRoutes() ([]models.Route, error) { return f, nil }

type fakeBuses []models.Bus

func (f fakeBuses) ListActiveBuses() ([]models.Bus, error) { return f, nil }

type memStore struct {
	schedules map[string]models.Schedule
}

func newMemStore() *memStore {
	return &memStore{schedules: map[string]models.Schedule{}}
}

func slotKey(routeID int64, dep time.Time) string {
	return fmt.Sprintf("%d|%s", routeID, utils.FormatDateTime(dep))
}

func (m *memStore) ScheduleExists(routeID int64, departure time.Time) (bool, error) {
	_, ok := m.schedules[slotKey(routeID, departure)]
	return ok, nil
}

func (m *memStore) CreateSchedule(s models.Schedule) error {
	k := slotKey(s.RouteID, s.DepartureTime)
	if _, ok := m.schedules[k]; ok {
		return fmt.Errorf("duplicate slot %s", k)
	}
	m.schedules[k] = s
	return nil
}

func (m *memStore) DeletePastSchedules(before time.Time) (int64, error) {
	var n int64
	for k, s := range m.schedules {
		if s.DepartureTime.Before(before) {
			delete(m.schedules, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountPastSchedules(before time.Time) (int64, error) {
	var n int64
	for _, s := range m.schedules {
		if s.DepartureTime.Before(before) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FutureCoverage(from time.Time) (int64, *time.Time, *time.Time, error) {
	var (
		n                int64
		earliest, latest *time.Time
	)
	for _, s := range m.schedules {
		if s.DepartureTime.Before(from) {
			continue
		}
		n++
		d := s.DepartureTime
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return n, earliest, latest, nil
}

// Tuesday.
var testNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.Local)

func testService(store *memStore, routes fakeRoutes, buses fakeBuses, horizon int) ScheduleService {
	return ScheduleService{
		Routes:      routes,
		Buses:       buses,
		Store:       store,
		HorizonDays: horizon,
		Now:         func() time.Time { return testNow },
		Pick:        func(n int) int { return 0 },
	}
}

func TestGenerateMissingHonorsOperatingDays(t *testing.T) {
	store := newMemStore()
	routes := fakeRoutes{{
		ID: 1, Name: "Tzaneen - Pretoria", Origin: "Tzaneen", Destination: "Pretoria",
		DistanceKM: 150, DurationHours: 4,
		OperatingDays: "Monday,Wednesday,Friday", BasePriceCents: 35000, IsActive: true,
	}}
	buses := fakeBuses{{ID: 1, BusNumber: "BL-01", TotalSeats: 40, IsActive: true}}

	svc := testService(store, routes, buses, 7)
	created, skipped, err := svc.GenerateMissing()
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("unexpected skips: %d", skipped)
	}
	// Tue 11 Mar .. Tue 18 Mar inclusive covers Wed 12, Fri 14, Mon 17.
	if created != 3 {
		t.Fatalf("created = %d, want 3", created)
	}
	for _, s := range store.schedules {
		day := s.DepartureTime.Weekday()
		if day != time.Monday && day != time.Wednesday && day != time.Friday {
			t.Errorf("schedule created on %s", day)
		}
		if hh, mm := s.DepartureTime.Hour(), s.DepartureTime.Minute(); hh != 8 || mm != 0 {
			t.Errorf("Tzaneen departure at %02d:%02d, want 08:00", hh, mm)
		}
		if s.AvailableSeats != 40 {
			t.Errorf("seats = %d, want bus capacity 40", s.AvailableSeats)
		}
		if s.PriceCents != 35000 {
			t.Errorf("price = %d, want route base 35000", s.PriceCents)
		}
	}
}

func TestGenerateMissingIsIdempotent(t *testing.T) {
	store := newMemStore()
	routes := fakeRoutes{{
		ID: 1, Origin: "Polokwane", Destination: "Pretoria",
		OperatingDays: "Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday",
		DistanceKM:    260, BasePriceCents: 42000, IsActive: true,
	}}
	buses := fakeBuses{{ID: 1, BusNumber: "BL-02", TotalSeats: 50, IsActive: true}}

	svc := testService(store, routes, buses, 14)
	first, _, err := svc.GenerateMissing()
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if first != 15 { // 14-day horizon is inclusive of both endpoints
		t.Fatalf("first run created %d, want 15", first)
	}

	second, skipped, err := svc.GenerateMissing()
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if second != 0 || skipped != 0 {
		t.Fatalf("second run created=%d skipped=%d, want 0/0", second, skipped)
	}
}

func TestGenerateMissingPrefersBigBusesForLongHaul(t *testing.T) {
	store := newMemStore()
	routes := fakeRoutes{{
		ID: 1, Origin: "Phalaborwa", Destination: "Potchefstroom",
		OperatingDays: "Tuesday", DistanceKM: 520, BasePriceCents: 61000, IsActive: true,
	}}
	buses := fakeBuses{
		{ID: 1, BusNumber: "MINI-1", TotalSeats: 22, IsActive: true},
		{ID: 2, BusNumber: "COACH-1", TotalSeats: 48, IsActive: true},
	}

	svc := testService(store, routes, buses, 6)
	if _, _, err := svc.GenerateMissing(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(store.schedules) == 0 {
		t.Fatal("no schedules created")
	}
	for _, s := range store.schedules {
		if s.BusID != 2 {
			t.Errorf("long haul assigned bus %d, want the 48-seat coach", s.BusID)
		}
		if hh, mm := s.DepartureTime.Hour(), s.DepartureTime.Minute(); hh != 6 || mm != 20 {
			t.Errorf("Phalaborwa departure at %02d:%02d, want 06:20", hh, mm)
		}
	}
}

func TestCleanupPastRemovesOnlyPast(t *testing.T) {
	store := newMemStore()
	yesterday := testNow.AddDate(0, 0, -1)
	tomorrow := testNow.AddDate(0, 0, 1)
	store.schedules[slotKey(1, yesterday)] = models.Schedule{RouteID: 1, DepartureTime: yesterday}
	store.schedules[slotKey(1, tomorrow)] = models.Schedule{RouteID: 1, DepartureTime: tomorrow}

	svc := testService(store, nil, nil, 7)

	wouldRemove, err := svc.CleanupPast(true)
	if err != nil {
		t.Fatalf("dry-run cleanup: %v", err)
	}
	if wouldRemove != 1 {
		t.Fatalf("dry-run would remove %d, want 1", wouldRemove)
	}
	if len(store.schedules) != 2 {
		t.Fatal("dry run must not delete anything")
	}

	removed, err := svc.CleanupPast(false)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}
	if _, ok := store.schedules[slotKey(1, tomorrow)]; !ok {
		t.Fatal("future schedule was deleted")
	}
}

func TestMaintainDryRunMatchesRealPass(t *testing.T) {
	store := newMemStore()
	routes := fakeRoutes{{
		ID: 1, Origin: "Pretoria", Destination: "Polokwane",
		OperatingDays: "Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday",
		DistanceKM:    260, BasePriceCents: 42000, IsActive: true,
	}}
	buses := fakeBuses{{ID: 1, BusNumber: "BL-03", TotalSeats: 44, IsActive: true}}

	svc := testService(store, routes, buses, 10)
	preview, err := svc.Maintain(0, true)
	if err != nil {
		t.Fatalf("dry-run maintain: %v", err)
	}
	if len(store.schedules) != 0 {
		t.Fatal("dry run wrote schedules")
	}

	stats, err := svc.Maintain(0, false)
	if err != nil {
		t.Fatalf("maintain: %v", err)
	}
	// Pretoria has two daily departures, 12:10 and 12:30.
	if stats.Created != preview.WouldCreate {
		t.Fatalf("real pass created %d, dry run predicted %d", stats.Created, preview.WouldCreate)
	}
	if stats.Created != 22 {
		t.Fatalf("created %d, want 22 (11 days x 2 departures)", stats.Created)
	}
}

func TestHealthThresholds(t *testing.T) {
	cases := []struct {
		daysOut    int
		wantStatus string
		wantMaint  bool
	}{
		{89, "healthy", false},
		{60, "healthy", false},
		{45, "needs_attention", false},
		{30, "needs_attention", false},
		{10, "critical", true},
	}
	for _, tc := range cases {
		store := newMemStore()
		dep := utils.DayStart(testNow).AddDate(0, 0, tc.daysOut-1).Add(8 * time.Hour)
		store.schedules[slotKey(1, dep)] = models.Schedule{RouteID: 1, DepartureTime: dep}

		svc := testService(store, nil, nil, 90)
		health, err := svc.Health()
		if err != nil {
			t.Fatalf("health: %v", err)
		}
		if health.DaysCovered != tc.daysOut {
			t.Errorf("daysOut=%d: covered %d days, want %d", tc.daysOut, health.DaysCovered, tc.daysOut)
		}
		if health.Status != tc.wantStatus {
			t.Errorf("daysOut=%d: status %q, want %q", tc.daysOut, health.Status, tc.wantStatus)
		}
		if health.NeedsMaintenance != tc.wantMaint {
			t.Errorf("daysOut=%d: needs_maintenance %t, want %t", tc.daysOut, health.NeedsMaintenance, tc.wantMaint)
		}
	}
}

func TestHealthEmptyIsCritical(t *testing.T) {
	svc := testService(newMemStore(), nil, nil, 90)
	health, err := svc.Health()
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "critical" || !health.NeedsMaintenance || health.HasSchedules {
		t.Fatalf("empty store health = %+v, want critical/needs maintenance", health)
	}
}
