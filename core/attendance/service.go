package attendance

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

var (
	// errors
	ErrUnknownStudent = errors.New("student is not part of this batch")
	errRangeInverted  = errors.New("from cannot be after to")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// QueryRecords returns the records of the given students on date.
		QueryRecords(ctx context.Context, date Day, studentIDs []string) ([]Record, error)
		// QueryPresent returns every Present record on date.
		QueryPresent(ctx context.Context, date Day) ([]Record, error)
		QueryStudentRecords(ctx context.Context, studentID string) ([]Record, error)
		// UpsertRecords creates or replaces records by (student, date).
		UpsertRecords(ctx context.Context, records []Record) error
		// AbsenteeStats returns, for every student, their absence total and newest HistoryWindow statuses.
		AbsenteeStats(ctx context.Context) ([]AbsenteeStats, error)
		DeleteAllRecords(ctx context.Context) error
	}

	// Roster is where students come from.
	Roster interface {
		Roster(ctx context.Context, batch string) ([]student.Student, error)
		All(ctx context.Context) ([]student.Student, error)
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	Options struct {
		CenterName string
		Policy     Policy
		MailSvc    core.EmailService // optional
		NotifyTo   []mail.Address
	}

	Service struct {
		repo   Repository
		roster Roster
		opts   Options
	}
)

func NewService(repo Repository, roster Roster, opts Options) *Service {
	if opts.Policy == (Policy{}) {
		opts.Policy = DefaultPolicy
	}
	return &Service{repo: repo, roster: roster, opts: opts}
}

func (svc *Service) Policy() Policy { return svc.opts.Policy }

func checkBatch(batch string) error {
	if !student.IsBatch(batch) {
		return core.NewFieldError("batch", "unknown batch")
	}
	return nil
}

// Sheet returns the merged day sheet of a batch.
func (svc *Service) Sheet(ctx context.Context, batch string, date Day) ([]Row, error) {
	if err := checkBatch(batch); err != nil {
		return nil, err
	}
	roster, err := svc.roster.Roster(ctx, batch)
	if err != nil {
		return nil, errors.Wrap(err, "fetching roster")
	}
	ids := make([]string, 0, len(roster))
	for _, s := range roster {
		ids = append(ids, s.ID)
	}
	records, err := svc.repo.QueryRecords(ctx, date, ids)
	if err != nil {
		return nil, errors.Wrap(err, "fetching records")
	}
	return Merge(roster, records), nil
}

// Save stores the status of every batch student for date. Students without an
// entry are saved Absent; entries for students outside the batch are rejected.
func (svc *Service) Save(ctx context.Context, batch string, date Day, entries []Entry) (Summary, error) {
	if err := checkBatch(batch); err != nil {
		return Summary{}, err
	}
	roster, err := svc.roster.Roster(ctx, batch)
	if err != nil {
		return Summary{}, errors.Wrap(err, "fetching roster")
	}

	inBatch := make(map[string]bool, len(roster))
	for _, s := range roster {
		inBatch[s.ID] = true
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if !inBatch[e.StudentID] {
			return Summary{}, core.NewValidationError(ErrUnknownStudent,
				core.FieldError{Field: "entries", Error: fmt.Sprintf("%s: %v", e.StudentID, ErrUnknownStudent)})
		}
		if !e.Status.Valid() {
			return Summary{}, core.NewFieldError("entries", errInvalidStatus.Error())
		}
		records = append(records, Record{StudentID: e.StudentID, Date: date, Status: e.Status})
	}

	rows := Merge(roster, records)
	if len(rows) > 0 {
		if err = svc.repo.UpsertRecords(ctx, Records(rows, date)); err != nil {
			return Summary{}, errors.Wrap(err, "saving records")
		}
	}

	sum := summarize(svc.opts.CenterName, batch, date, rows)
	svc.notify(sum)
	return sum, nil
}

func (svc *Service) notify(sum Summary) {
	if svc.opts.MailSvc == nil || len(svc.opts.NotifyTo) == 0 || len(sum.Absentees) == 0 {
		return
	}
	svc.opts.MailSvc.SendMessages(&core.EmailMessage{
		To:          svc.opts.NotifyTo,
		Subject:     fmt.Sprintf("Absentees %s - %s", sum.Batch, sum.Date),
		TextContent: sum.Message,
	})
}

// Dashboard computes the turnout of every batch on date.
func (svc *Service) Dashboard(ctx context.Context, date Day) (Dashboard, error) {
	students, err := svc.roster.All(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "fetching students")
	}
	present, err := svc.repo.QueryPresent(ctx, date)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "fetching present records")
	}
	return Summarize(date, students, present, student.Batches), nil
}

// Absentees lists the students at risk, optionally for one batch only.
func (svc *Service) Absentees(ctx context.Context, batch string) ([]AtRisk, error) {
	if batch != "" {
		if err := checkBatch(batch); err != nil {
			return nil, err
		}
	}
	stats, err := svc.repo.AbsenteeStats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching absentee stats")
	}
	if batch != "" {
		filtered := stats[:0:0]
		for _, st := range stats {
			if st.Student.Batch == batch {
				filtered = append(filtered, st)
			}
		}
		stats = filtered
	}
	return AtRiskStudents(stats, svc.opts.Policy), nil
}

// StudentReport reports a student's attendance between from and to, inclusive.
func (svc *Service) StudentReport(ctx context.Context, studentID string, from, to Day) (StudentReport, error) {
	if from.After(to) {
		return StudentReport{}, core.NewValidationError(errRangeInverted,
			core.FieldError{Field: "from", Error: errRangeInverted.Error()})
	}
	s, err := svc.roster.GetByID(ctx, studentID)
	if err != nil {
		return StudentReport{}, err
	}
	records, err := svc.repo.QueryStudentRecords(ctx, s.ID)
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "fetching student records")
	}
	return BuildStudentReport(s, records, from, to), nil
}

func (svc *Service) ClearAll(ctx context.Context) error {
	return svc.repo.DeleteAllRecords(ctx)
}
