package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	intconfig "buslines/internal/config"
	"buslines/internal/domain/models"
	"buslines/internal/repositories"
	"buslines/internal/utils"
)

// RouteSource and BusSource feed the generator with the active catalog.
type RouteSource interface {
	ListActiveRoutes() ([]models.Route, error)
}

type BusSource interface {
	ListActiveBuses() ([]models.Bus, error)
}

// ScheduleStore is the slice of schedule persistence the maintenance engine
// touches. repositories.ScheduleRepo satisfies it.
type ScheduleStore interface {
	ScheduleExists(routeID int64, departure time.Time) (bool, error)
	CreateSchedule(s models.Schedule) error
	DeletePastSchedules(before time.Time) (int64, error)
	CountPastSchedules(before time.Time) (int64, error)
	FutureCoverage(from time.Time) (int64, *time.Time, *time.Time, error)
}

// Routes over this distance need the bigger buses.
const (
	longHaulDistanceKM = 200.0
	longHaulMinSeats   = 35
)

// defaultDepartureTimes maps origins to their fixed clock times. Origins not
// listed fall back to 08:00.
var defaultDepartureTimes = map[string][]string{
	"Phalaborwa":    {"06:20"},
	"Gravelotte":    {"07:00"},
	"Tzaneen":       {"08:00"},
	"Haenertsburg":  {"08:30"},
	"Polokwane":     {"09:20"},
	"Pretoria":      {"12:10", "12:30"},
	"Krugersdorp":   {"13:05"},
	"Potchefstroom": {"15:00"},
}

const fallbackDepartureTime = "08:00"

// ScheduleService keeps a rolling window of future departures populated and
// purges schedules whose departure date has passed. It holds no state beyond
// configuration; cron and the admin endpoint both call it directly.
type ScheduleService struct {
	Routes RouteSource
	Buses  BusSource
	Store  ScheduleStore

	HorizonDays    int
	DepartureTimes map[string][]string

	// Now and Pick are injectable for tests; production uses wall clock and
	// math/rand.
	Now  func() time.Time
	Pick func(n int) int

	RequestID string
}

func (s ScheduleService) routes() RouteSource {
	if s.Routes != nil {
		return s.Routes
	}
	return repositories.RouteRepo{DB: intconfig.DB}
}

func (s ScheduleService) buses() BusSource {
	if s.Buses != nil {
		return s.Buses
	}
	return repositories.BusRepo{DB: intconfig.DB}
}

func (s ScheduleService) store() ScheduleStore {
	if s.Store != nil {
		return s.Store
	}
	return repositories.ScheduleRepo{DB: intconfig.DB}
}

func (s ScheduleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s ScheduleService) pick(n int) int {
	if n <= 1 {
		return 0
	}
	if s.Pick != nil {
		return s.Pick(n)
	}
	return rand.Intn(n)
}

func (s ScheduleService) horizon() int {
	if s.HorizonDays > 0 {
		return s.HorizonDays
	}
	return 90
}

func (s ScheduleService) departureTimes(origin string) []string {
	table := s.DepartureTimes
	if table == nil {
		table = defaultDepartureTimes
	}
	if times, ok := table[origin]; ok && len(times) > 0 {
		return times
	}
	return []string{fallbackDepartureTime}
}

// MaintainStats reports one maintenance pass.
type MaintainStats struct {
	Removed     int64     `json:"removed"`
	Created     int64     `json:"created"`
	Skipped     int64     `json:"skipped"`
	WouldRemove int64     `json:"would_remove"`
	WouldCreate int64     `json:"would_create"`
	TotalFuture int64     `json:"total_future"`
	HorizonDays int       `json:"horizon_days"`
	DryRun      bool      `json:"dry_run"`
	RanAt       time.Time `json:"ran_at"`
}

// HealthStatus summarizes current coverage, derived purely from stored rows.
type HealthStatus struct {
	FutureSchedules  int64  `json:"future_schedules"`
	EarliestDate     string `json:"earliest_date,omitempty"`
	LatestDate       string `json:"latest_date,omitempty"`
	DaysCovered      int    `json:"days_covered"`
	HasSchedules     bool   `json:"has_schedules"`
	NeedsMaintenance bool   `json:"needs_maintenance"`
	Status           string `json:"status"`
}

// CleanupPast removes schedules departing before today. Bookings attached to
// them cascade; departures in the past are not bookable, so the loss is
// confined to history.
func (s ScheduleService) CleanupPast(dryRun bool) (int64, error) {
	today := utils.DayStart(s.now())

	if dryRun {
		return s.store().CountPastSchedules(today)
	}

	removed, err := s.store().DeletePastSchedules(today)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		utils.LogEvent(s.RequestID, "schedule", "cleanup", fmt.Sprintf("removed %d past schedules", removed))
	}
	return removed, nil
}

// GenerateMissing fills every (route, operating day, departure time) slot in
// the horizon that has no schedule yet. Returns created and skipped counts;
// a single failed insert is logged and skipped, the loop continues.
func (s ScheduleService) GenerateMissing() (created, skipped int64, err error) {
	routes, err := s.routes().ListActiveRoutes()
	if err != nil {
		return 0, 0, err
	}
	fleet, err := s.buses().ListActiveBuses()
	if err != nil {
		return 0, 0, err
	}
	if len(routes) == 0 || len(fleet) == 0 {
		utils.LogEvent(s.RequestID, "schedule", "generate", "no active routes or buses")
		return 0, 0, nil
	}

	today := utils.DayStart(s.now())
	target := today.AddDate(0, 0, s.horizon())

	for _, route := range routes {
		suitable := suitableBuses(route, fleet)

		for day := today; !day.After(target); day = day.AddDate(0, 0, 1) {
			if !route.OperatesOn(day.Weekday().String()) {
				continue
			}
			for _, clock := range s.departureTimes(route.Origin) {
				departure, perr := departureAt(day, clock)
				if perr != nil {
					utils.LogEvent(s.RequestID, "schedule", "generate",
						fmt.Sprintf("bad departure time %q for route %d: %v", clock, route.ID, perr))
					skipped++
					continue
				}

				exists, eerr := s.store().ScheduleExists(route.ID, departure)
				if eerr != nil {
					return created, skipped, eerr
				}
				if exists {
					continue
				}

				bus := suitable[s.pick(len(suitable))]
				sched := models.Schedule{
					RouteID:        route.ID,
					BusID:          bus.ID,
					DepartureTime:  departure,
					ArrivalTime:    departure.Add(time.Duration(route.DurationHours * float64(time.Hour))),
					AvailableSeats: bus.TotalSeats,
					PriceCents:     route.BasePriceCents,
					IsActive:       true,
				}
				if cerr := s.store().CreateSchedule(sched); cerr != nil {
					utils.LogEvent(s.RequestID, "schedule", "generate",
						fmt.Sprintf("create failed route=%d departure=%s: %v", route.ID, utils.FormatDateTime(departure), cerr))
					skipped++
					continue
				}
				created++
			}
		}
	}

	utils.LogEvent(s.RequestID, "schedule", "generate", fmt.Sprintf("created %d new schedules", created))
	return created, skipped, nil
}

// wouldCreate counts missing slots using the same existence predicate as
// GenerateMissing, so the dry-run preview cannot drift from the real pass.
func (s ScheduleService) wouldCreate() (int64, error) {
	routes, err := s.routes().ListActiveRoutes()
	if err != nil {
		return 0, err
	}
	if len(routes) == 0 {
		return 0, nil
	}
	fleet, err := s.buses().ListActiveBuses()
	if err != nil {
		return 0, err
	}
	if len(fleet) == 0 {
		return 0, nil
	}

	today := utils.DayStart(s.now())
	target := today.AddDate(0, 0, s.horizon())

	var count int64
	for _, route := range routes {
		for day := today; !day.After(target); day = day.AddDate(0, 0, 1) {
			if !route.OperatesOn(day.Weekday().String()) {
				continue
			}
			for _, clock := range s.departureTimes(route.Origin) {
				departure, perr := departureAt(day, clock)
				if perr != nil {
					continue
				}
				exists, eerr := s.store().ScheduleExists(route.ID, departure)
				if eerr != nil {
					return count, eerr
				}
				if !exists {
					count++
				}
			}
		}
	}
	return count, nil
}

// Maintain runs cleanup then generation. Cleanup goes first so the pass
// reports against a purged baseline; the two never target the same rows.
func (s ScheduleService) Maintain(daysAhead int, dryRun bool) (MaintainStats, error) {
	if daysAhead > 0 {
		s.HorizonDays = daysAhead
	}

	stats := MaintainStats{
		HorizonDays: s.horizon(),
		DryRun:      dryRun,
		RanAt:       s.now(),
	}

	if dryRun {
		wouldRemove, err := s.CleanupPast(true)
		if err != nil {
			return stats, err
		}
		stats.WouldRemove = wouldRemove

		wouldCreate, err := s.wouldCreate()
		if err != nil {
			return stats, err
		}
		stats.WouldCreate = wouldCreate
	} else {
		removed, err := s.CleanupPast(false)
		if err != nil {
			return stats, err
		}
		stats.Removed = removed

		created, skipped, err := s.GenerateMissing()
		if err != nil {
			return stats, err
		}
		stats.Created = created
		stats.Skipped = skipped
	}

	total, _, _, err := s.store().FutureCoverage(utils.DayStart(s.now()))
	if err != nil {
		return stats, err
	}
	stats.TotalFuture = total

	utils.LogEvent(s.RequestID, "schedule", "maintain",
		fmt.Sprintf("removed=%d created=%d total_future=%d dry_run=%t", stats.Removed, stats.Created, stats.TotalFuture, dryRun))
	return stats, nil
}

// Health reports schedule coverage: critical under 30 days, needs_attention
// under 60, healthy from 60 up.
func (s ScheduleService) Health() (HealthStatus, error) {
	today := utils.DayStart(s.now())
	total, earliest, latest, err := s.store().FutureCoverage(today)
	if err != nil {
		return HealthStatus{}, err
	}

	out := HealthStatus{FutureSchedules: total}
	if total == 0 || latest == nil {
		out.NeedsMaintenance = true
		out.Status = "critical"
		return out, nil
	}

	out.HasSchedules = true
	out.EarliestDate = utils.FormatDate(*earliest)
	out.LatestDate = utils.FormatDate(*latest)
	out.DaysCovered = int(utils.DayStart(*latest).Sub(today).Hours()/24) + 1
	out.NeedsMaintenance = out.DaysCovered < 30

	switch {
	case out.DaysCovered >= 60:
		out.Status = "healthy"
	case out.DaysCovered >= 30:
		out.Status = "needs_attention"
	default:
		out.Status = "critical"
	}
	return out, nil
}

// suitableBuses filters the fleet for a route: long hauls need the bigger
// coaches, with the whole fleet as fallback when none qualify.
func suitableBuses(route models.Route, fleet []models.Bus) []models.Bus {
	if route.DistanceKM <= longHaulDistanceKM {
		return fleet
	}
	var big []models.Bus
	for _, b := range fleet {
		if b.TotalSeats >= longHaulMinSeats {
			big = append(big, b)
		}
	}
	if len(big) == 0 {
		return fleet
	}
	return big
}

// departureAt combines a calendar day with an "HH:MM" clock string.
func departureAt(day time.Time, clock string) (time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("out of range time %q", clock)
	}
	return utils.AtClock(day, hour, minute), nil
}
