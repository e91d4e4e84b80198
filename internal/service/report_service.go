package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/timesheet"
)

// ClientWeek is one client's tracked time within a week.
type ClientWeek struct {
	ClientID   int64
	ClientName string
	Seconds    int64
	Amount     float64
}

// Hours returns the client's tracked hours
func (c ClientWeek) Hours() float64 {
	return float64(c.Seconds) / 3600
}

// WeekSummary provides weekly time tracking analytics
type WeekSummary struct {
	Period       domain.RangePeriod
	TotalSeconds int64
	TotalAmount  float64
	ByClient     []ClientWeek // busiest first
	ByDay        map[time.Weekday]int64 // work crossing local midnight is split between days
}

// TotalHours returns the week's tracked hours
func (w *WeekSummary) TotalHours() float64 {
	return float64(w.TotalSeconds) / 3600
}

// ReportService provides aggregations over closed entries. It clips
// entries to the window the same way timesheets do.
type ReportService interface {
	// WeekSummary covers Monday to Sunday of the week containing day, in tz.
	WeekSummary(ctx context.Context, ownerID int64, day time.Time, tz string) (*WeekSummary, error)
}

type reportService struct {
	uow    db.UnitOfWork
	stores StoresFunc
}

// NewReportService creates a new report service
func NewReportService(uow db.UnitOfWork, stores StoresFunc) ReportService {
	return &reportService{uow: uow, stores: stores}
}

func (s *reportService) WeekSummary(ctx context.Context, ownerID int64, day time.Time, tz string) (*WeekSummary, error) {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := domain.LoadZone(tz)
	if err != nil {
		return nil, domain.NewValidationError("invalid timezone")
	}

	// walk back to Monday
	local := day.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	monday := local.AddDate(0, 0, -offset)

	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
	period := domain.RangePeriod{
		Start:    start.UTC(),
		End:      start.AddDate(0, 0, 7).UTC(),
		Timezone: tz,
	}

	summary := &WeekSummary{
		Period:   period,
		ByClient: make([]ClientWeek, 0),
		ByDay:    make(map[time.Weekday]int64),
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		clients, err := st.Clients.List(ctx, ownerID)
		if err != nil {
			return err
		}

		from, to := period.Bounds()
		for _, c := range clients {
			entries, err := st.Entries.ListClosedOverlapping(ctx, ownerID, c.ID, from, to)
			if err != nil {
				return err
			}
			res, err := timesheet.Aggregate(entries, period, c.HourlyRate)
			if errors.Is(err, domain.ErrNoEntries) {
				continue
			}
			if err != nil {
				return err
			}

			summary.ByClient = append(summary.ByClient, ClientWeek{
				ClientID:   c.ID,
				ClientName: c.Name,
				Seconds:    res.TotalSeconds,
				Amount:     res.TotalAmount,
			})
			summary.TotalSeconds += res.TotalSeconds
			summary.TotalAmount += res.TotalAmount
			for _, row := range res.Rows {
				splitByDay(summary.ByDay, row, loc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summary.ByClient, func(i, j int) bool {
		return summary.ByClient[i].Seconds > summary.ByClient[j].Seconds
	})
	return summary, nil
}

// splitByDay credits a row to the local weekdays it covers, cutting at local
// midnight. Cumulative flooring keeps the pieces summing to row.Seconds.
func splitByDay(byDay map[time.Weekday]int64, row timesheet.Row, loc *time.Location) {
	var credited int64
	from := row.Start.In(loc)
	for from.Before(row.End) {
		midnight := time.Date(from.Year(), from.Month(), from.Day()+1, 0, 0, 0, 0, loc)
		to := midnight
		if row.End.Before(to) {
			to = row.End
		}

		upTo := int64(to.Sub(row.Start) / time.Second)
		if upTo > row.Seconds {
			upTo = row.Seconds
		}
		byDay[from.Weekday()] += upTo - credited
		credited = upTo

		from = to.In(loc)
	}
}
