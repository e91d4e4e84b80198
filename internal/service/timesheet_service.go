package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
	"github.com/andy/tallysheet/internal/timesheet"
)

const (
	msgClientNotFound    = "client not found"
	msgTimesheetNotFound = "timesheet not found"
	msgTimesheetExists   = "timesheet already exists for this period"
)

// Preview is a rendered timesheet that was not stored.
type Preview struct {
	ClientName string
	Period     domain.Period
	Result     *timesheet.Result
	CSV        []byte
	Filename   string
}

// Download is a stored timesheet ready to be written out.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TimesheetService generates and manages stored timesheets.
type TimesheetService interface {
	// GenerateRange bills an explicit date range resolved in a timezone.
	GenerateRange(ctx context.Context, ownerID int64, req timesheet.RangeRequest) (*domain.TimesheetSummary, error)

	// GenerateMonthly bills a calendar month in UTC.
	GenerateMonthly(ctx context.Context, ownerID int64, req timesheet.MonthlyRequest) (*domain.TimesheetSummary, error)

	// PreviewRange renders a range timesheet without storing it.
	PreviewRange(ctx context.Context, ownerID int64, req timesheet.RangeRequest) (*Preview, error)

	// PreviewMonthly renders a monthly timesheet without storing it.
	PreviewMonthly(ctx context.Context, ownerID int64, req timesheet.MonthlyRequest) (*Preview, error)

	// List returns the owner's timesheets, newest first.
	List(ctx context.Context, ownerID int64) ([]domain.TimesheetSummary, error)

	// Download returns the stored CSV of one timesheet.
	Download(ctx context.Context, ownerID, id int64) (*Download, error)

	// Delete removes one timesheet.
	Delete(ctx context.Context, ownerID, id int64) error
}

type timesheetService struct {
	uow      db.UnitOfWork
	stores   StoresFunc
	now      func() time.Time
	observer UseCaseObserver
}

// NewTimesheetService creates a new timesheet service. A nil clock means time.Now.
func NewTimesheetService(uow db.UnitOfWork, stores StoresFunc, clock func() time.Time, observers ...UseCaseObserver) TimesheetService {
	if clock == nil {
		clock = time.Now
	}
	return &timesheetService{
		uow:      uow,
		stores:   stores,
		now:      clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timesheetService) GenerateRange(ctx context.Context, ownerID int64, req timesheet.RangeRequest) (summary *domain.TimesheetSummary, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timesheet.generate_range", startedAt, err, map[string]any{
			"owner_id":  ownerID,
			"client_id": req.ClientID,
			"start":     req.StartDate,
			"end":       req.EndDate,
			"timezone":  req.Timezone,
		})
	}()

	period, err := timesheet.ResolveRange(req)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, ownerID, req.ClientID, period)
}

func (s *timesheetService) GenerateMonthly(ctx context.Context, ownerID int64, req timesheet.MonthlyRequest) (summary *domain.TimesheetSummary, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timesheet.generate_monthly", startedAt, err, map[string]any{
			"owner_id":  ownerID,
			"client_id": req.ClientID,
			"month":     req.Month,
			"year":      req.Year,
		})
	}()

	period, err := timesheet.ResolveMonthly(req)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, ownerID, req.ClientID, period)
}

func (s *timesheetService) PreviewRange(ctx context.Context, ownerID int64, req timesheet.RangeRequest) (*Preview, error) {
	period, err := timesheet.ResolveRange(req)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, ownerID, req.ClientID, period)
}

func (s *timesheetService) PreviewMonthly(ctx context.Context, ownerID int64, req timesheet.MonthlyRequest) (*Preview, error) {
	period, err := timesheet.ResolveMonthly(req)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, ownerID, req.ClientID, period)
}

// generate runs the whole pipeline in one transaction: the duplicate check
// and the insert see the same snapshot, and the unique index catches the
// rest.
func (s *timesheetService) generate(ctx context.Context, ownerID, clientID int64, period domain.Period) (*domain.TimesheetSummary, error) {
	var ts *domain.Timesheet

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		built, _, err := s.build(ctx, st, ownerID, clientID, period)
		if err != nil {
			return err
		}

		exists, err := st.Timesheets.Exists(ctx, ownerID, clientID, period)
		if err != nil {
			return err
		}
		if exists {
			return domain.NewConflictError(msgTimesheetExists, nil)
		}

		if err := st.Timesheets.Create(ctx, built); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewConflictError(msgTimesheetExists, err)
			}
			return err
		}
		ts = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := ts.Summary()
	return &summary, nil
}

func (s *timesheetService) preview(ctx context.Context, ownerID, clientID int64, period domain.Period) (*Preview, error) {
	var p *Preview

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ts, res, err := s.build(ctx, s.stores(tx), ownerID, clientID, period)
		if err != nil {
			return err
		}
		p = &Preview{
			ClientName: ts.ClientName,
			Period:     period,
			Result:     res,
			CSV:        ts.CSV,
			Filename:   timesheet.Filename(ts.ClientName, period),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// build loads the client and its entries, aggregates and renders. The
// returned record is not yet stored.
func (s *timesheetService) build(ctx context.Context, st Stores, ownerID, clientID int64, period domain.Period) (*domain.Timesheet, *timesheet.Result, error) {
	client, err := st.Clients.GetByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, nil, notFound(err, msgClientNotFound)
	}

	start, end := period.Bounds()
	entries, err := st.Entries.ListClosedOverlapping(ctx, ownerID, clientID, start, end)
	if err != nil {
		return nil, nil, err
	}

	res, err := timesheet.Aggregate(entries, period, client.HourlyRate)
	if err != nil {
		return nil, nil, err
	}

	// stored timestamps have second resolution
	generatedAt := s.now().UTC().Truncate(time.Second)

	body, err := timesheet.Render(res, period, client.Name, generatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render timesheet: %w", err)
	}

	return &domain.Timesheet{
		OwnerID:      ownerID,
		ClientID:     client.ID,
		ClientName:   client.Name,
		Period:       period,
		EntryCount:   res.EntryCount(),
		TotalSeconds: res.TotalSeconds,
		TotalHours:   res.TotalHours(),
		TotalAmount:  res.TotalAmount,
		CSV:          body,
		CreatedAt:    generatedAt,
		ClientExists: true,
	}, res, nil
}

func (s *timesheetService) List(ctx context.Context, ownerID int64) ([]domain.TimesheetSummary, error) {
	var summaries []domain.TimesheetSummary

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sheets, err := s.stores(tx).Timesheets.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		summaries = make([]domain.TimesheetSummary, 0, len(sheets))
		for _, ts := range sheets {
			summaries = append(summaries, ts.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *timesheetService) Download(ctx context.Context, ownerID, id int64) (*Download, error) {
	var d *Download

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ts, err := s.stores(tx).Timesheets.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgTimesheetNotFound)
		}
		d = &Download{
			Filename:    timesheet.Filename(ts.DisplayClientName(), ts.Period),
			ContentType: timesheet.ContentType,
			Body:        ts.CSV,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *timesheetService) Delete(ctx context.Context, ownerID, id int64) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timesheet.delete", startedAt, err, map[string]any{
			"owner_id":     ownerID,
			"timesheet_id": id,
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return notFound(s.stores(tx).Timesheets.Delete(ctx, ownerID, id), msgTimesheetNotFound)
	})
}
