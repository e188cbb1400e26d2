package attendance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wingscc/rollcall/core/student"
)

type StudentReport struct {
	Student    student.Student `json:"student"`
	From       Day             `json:"from"`
	To         Day             `json:"to"`
	Present    int             `json:"present"`
	Absent     int             `json:"absent"`
	Percentage int             `json:"percentage"`
	Details    []Record        `json:"details"`
}

// BuildStudentReport keeps the records within [from, to] and counts them. Details are newest first.
func BuildStudentReport(s student.Student, records []Record, from, to Day) StudentReport {
	rep := StudentReport{Student: s, From: from, To: to, Details: make([]Record, 0)}
	for _, r := range records {
		if r.StudentID != s.ID || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		switch r.Status {
		case Present:
			rep.Present++
		case Absent:
			rep.Absent++
		default:
			continue
		}
		rep.Details = append(rep.Details, r)
	}
	sort.SliceStable(rep.Details, func(i, j int) bool {
		return rep.Details[i].Date.After(rep.Details[j].Date)
	})
	rep.Percentage = Percentage(rep.Present, rep.Present+rep.Absent)
	return rep
}

// Summary is returned once a day sheet is saved.
type Summary struct {
	Batch     string   `json:"batch"`
	Date      Day      `json:"date"`
	Turnout   Turnout  `json:"turnout"`
	Absentees []string `json:"absentees"`
	Message   string   `json:"message"`
}

// AbsenteeMessage is the plain text absentee list shared with parents' groups.
func AbsenteeMessage(center, batch string, date Day, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\nBatch: %s\nDate: %s\n\n*Absentees:*", center, batch, date)
	for i, name := range names {
		fmt.Fprintf(&b, "\n%d. %s", i+1, name)
	}
	return b.String()
}

func summarize(center, batch string, date Day, rows []Row) Summary {
	var present int
	for _, r := range rows {
		if r.Status == Present {
			present++
		}
	}
	names := AbsentNames(rows)
	return Summary{
		Batch:     batch,
		Date:      date,
		Turnout:   newTurnout(batch, len(rows), present),
		Absentees: names,
		Message:   AbsenteeMessage(center, batch, date, names),
	}
}
