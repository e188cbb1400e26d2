package attendance

import (
	"sort"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

// Percentage is round(part/total*100), 0 for an empty total.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return core.RoundInt(float64(part) / float64(total) * 100)
}

type Turnout struct {
	Batch      string `json:"batch,omitempty"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Percentage int    `json:"percentage"`
}

func newTurnout(batch string, total, present int) Turnout {
	return Turnout{
		Batch:      batch,
		Total:      total,
		Present:    present,
		Absent:     total - present,
		Percentage: Percentage(present, total),
	}
}

// BatchTurnout counts the batch students and how many of them have a Present
// record. Records of other students, or repeated ones, are not counted.
func BatchTurnout(batch string, roster []student.Student, records []Record) Turnout {
	ids := make(map[string]bool)
	for _, s := range roster {
		if s.Batch == batch {
			ids[s.ID] = false
		}
	}
	var present int
	for _, r := range records {
		if r.Status != Present {
			continue
		}
		if seen, ok := ids[r.StudentID]; ok && !seen {
			ids[r.StudentID] = true
			present++
		}
	}
	return newTurnout(batch, len(ids), present)
}

type Dashboard struct {
	Date    Day       `json:"date"`
	Batches []Turnout `json:"batches"`
	Global  Turnout   `json:"global"`
}

// Summarize computes the turnout of each batch and the global turnout, which is
// the sum of the batch figures. A nil batches means student.Batches.
func Summarize(date Day, roster []student.Student, records []Record, batches []string) Dashboard {
	if batches == nil {
		batches = student.Batches
	}
	d := Dashboard{Date: date, Batches: make([]Turnout, 0, len(batches))}
	var total, present int
	for _, b := range batches {
		t := BatchTurnout(b, roster, records)
		d.Batches = append(d.Batches, t)
		total += t.Total
		present += t.Present
	}
	d.Global = newTurnout("", total, present)
	return d
}

// batchOrder returns the keys of m: known batches first in Batches order, then the rest sorted.
func batchOrder[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for _, b := range student.Batches {
		if _, ok := m[b]; ok {
			keys = append(keys, b)
		}
	}
	var others []string
	for b := range m {
		if !student.IsBatch(b) {
			others = append(others, b)
		}
	}
	sort.Strings(others)
	return append(keys, others...)
}
