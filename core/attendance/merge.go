package attendance

import (
	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

// Merge builds the day sheet of a batch: one row per roster student, in roster
// order. Students without a record are Absent, records of students outside the
// roster are dropped. Rows without a stored roll number get their sequential one.
func Merge(roster []student.Student, records []Record) []Row {
	statuses := make(map[string]Status, len(records))
	for _, r := range records {
		statuses[r.StudentID] = r.Status
	}

	sorted := student.SortRoster(roster)
	rows := make([]Row, 0, len(sorted))
	for i, s := range sorted {
		status, ok := statuses[s.ID]
		if !ok || !status.Valid() {
			status = Absent
		}
		roll := student.SequentialRoll(i)
		if s.HasRoll() {
			roll = s.RollNumber.String
		}
		rows = append(rows, Row{Student: s, Roll: roll, Status: status})
	}
	return rows
}

// Filter keeps rows whose name or roll contains q, ignoring case. Rolls are left untouched.
func Filter(rows []Row, q string) []Row {
	q = core.CleanString(q)
	if q == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if core.ContainsFold(r.Name, q) || core.ContainsFold(r.Roll, q) {
			out = append(out, r)
		}
	}
	return out
}

// Records turns a day sheet back into the records to save.
func Records(rows []Row, date Day) []Record {
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, Record{StudentID: r.ID, Date: date, Status: r.Status})
	}
	return records
}

// AbsentNames lists the names of absent rows, in row order.
func AbsentNames(rows []Row) []string {
	names := make([]string, 0)
	for _, r := range rows {
		if r.Status == Absent {
			names = append(names, r.Name)
		}
	}
	return names
}
