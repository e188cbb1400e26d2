package inmemdb

import (
	"context"
	"sort"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
)

type attendanceRepository struct {
	db      *attendanceTable
	student *studentTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance, student: db.student}
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, date attendance.Day, studentIDs []string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0, len(studentIDs))
	for _, id := range studentIDs {
		if st, ok := repo.db.table[recordKey{studentID: id, date: date}]; ok {
			records = append(records, attendance.Record{StudentID: id, Date: date, Status: st})
		}
	}
	return records, nil
}

func (repo *attendanceRepository) QueryPresent(_ context.Context, date attendance.Day) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for k, st := range repo.db.table {
		if k.date == date && st == attendance.Present {
			records = append(records, attendance.Record{StudentID: k.studentID, Date: k.date, Status: st})
		}
	}
	return records, nil
}

// QueryStudentRecords returns the records of a student, newest first.
func (repo *attendanceRepository) QueryStudentRecords(_ context.Context, studentID string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.studentRecords(studentID), nil
}

func (repo *attendanceRepository) studentRecords(studentID string) []attendance.Record {
	records := make([]attendance.Record, 0)
	for k, st := range repo.db.table {
		if k.studentID == studentID {
			records = append(records, attendance.Record{StudentID: k.studentID, Date: k.date, Status: st})
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, records []attendance.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range records {
		repo.db.table[recordKey{studentID: r.StudentID, date: r.Date}] = r.Status
	}
	return nil
}

func (repo *attendanceRepository) AbsenteeStats(_ context.Context) ([]attendance.AbsenteeStats, error) {
	repo.student.RLock()
	students := make([]student.Student, 0, len(repo.student.table))
	for _, s := range repo.student.table {
		students = append(students, *s)
	}
	repo.student.RUnlock()

	repo.db.RLock()
	defer repo.db.RUnlock()

	stats := make([]attendance.AbsenteeStats, 0, len(students))
	for _, s := range students {
		st := attendance.AbsenteeStats{Student: s, Recent: attendance.History{}}
		for i, r := range repo.studentRecords(s.ID) {
			if r.Status == attendance.Absent {
				st.TotalAbsent++
			}
			if i < attendance.HistoryWindow {
				st.Recent = append(st.Recent, r.Status)
			}
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Student.ID < stats[j].Student.ID })
	return stats, nil
}

func (repo *attendanceRepository) DeleteAllRecords(_ context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[recordKey]attendance.Status)
	return nil
}
