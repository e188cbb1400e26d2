package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core/attendance"
)

type recordRow struct {
	StudentID string    `db:"student_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
}

func (row recordRow) unboil() attendance.Record {
	return attendance.Record{
		StudentID: row.StudentID,
		Date:      attendance.DayOf(row.Date),
		Status:    attendance.Status(row.Status),
	}
}

func unboilRecords(rows []recordRow) []attendance.Record {
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.unboil())
	}
	return records
}

// StatsReader builds the absentee read model.
type StatsReader interface {
	AbsenteeStats(ctx context.Context) ([]attendance.AbsenteeStats, error)
}

type attendanceRepository struct {
	db    *sqlx.DB
	stats StatsReader
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB, stats StatsReader) *attendanceRepository {
	return &attendanceRepository{db: db, stats: stats}
}

const recordColumns = "student_id, date, status"

func (repo *attendanceRepository) QueryRecords(ctx context.Context, date attendance.Day, studentIDs []string) ([]attendance.Record, error) {
	if len(studentIDs) == 0 {
		return []attendance.Record{}, nil
	}
	q, args, err := sqlx.In("SELECT "+recordColumns+" FROM attendance WHERE date = ? AND student_id IN (?)", date.Time(), studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building records query")
	}
	var rows []recordRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	return unboilRecords(rows), nil
}

func (repo *attendanceRepository) QueryPresent(ctx context.Context, date attendance.Day) ([]attendance.Record, error) {
	var rows []recordRow
	q := "SELECT " + recordColumns + " FROM attendance WHERE date = $1 AND status = $2"
	if err := repo.db.SelectContext(ctx, &rows, q, date.Time(), string(attendance.Present)); err != nil {
		return nil, errors.Wrap(err, "querying present records")
	}
	return unboilRecords(rows), nil
}

func (repo *attendanceRepository) QueryStudentRecords(ctx context.Context, studentID string) ([]attendance.Record, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return []attendance.Record{}, nil
	}
	var rows []recordRow
	q := "SELECT " + recordColumns + " FROM attendance WHERE student_id = $1 ORDER BY date DESC"
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student records")
	}
	return unboilRecords(rows), nil
}

// UpsertRecords saves all records in one transaction, replacing the status of existing (student, date) pairs.
func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records []attendance.Record) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO attendance (id, student_id, date, status) VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status`
	for _, r := range records {
		if _, err = tx.ExecContext(ctx, q, uuid.New().String(), r.StudentID, r.Date.Time(), string(r.Status)); err != nil {
			if pgCode(err) == foreignKeyViolation {
				return attendance.ErrUnknownStudent
			}
			return errors.Wrap(err, "upserting record")
		}
	}
	return errors.Wrap(tx.Commit(), "committing records")
}

func (repo *attendanceRepository) AbsenteeStats(ctx context.Context) ([]attendance.AbsenteeStats, error) {
	return repo.stats.AbsenteeStats(ctx)
}

func (repo *attendanceRepository) DeleteAllRecords(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM attendance")
	return errors.Wrap(err, "deleting all records")
}
