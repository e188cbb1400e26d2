package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
)

var day = attendance.NewDay(2024, 3, 15)

func TestDailyBatchPDF(t *testing.T) {
	rows := []attendance.Row{
		{Student: student.Student{ID: "1", Name: "ANITA", Batch: "S1", Sex: student.Female}, Roll: "1", Status: attendance.Present},
		{Student: student.Student{ID: "2", Name: "JOSÉ", Batch: "S1", Sex: student.Male, RollNumber: null.StringFrom("7")}, Roll: "7", Status: attendance.Absent},
	}

	tests := []struct {
		name string
		rows []attendance.Row
	}{
		{name: "with rows", rows: rows},
		{name: "empty batch", rows: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, DailyBatchPDF(buf, "Wings", "S1", day, tc.rows))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
		})
	}
}

func TestRiskPDF(t *testing.T) {
	list := []attendance.AtRisk{{
		Student:        student.Student{ID: "1", Name: "RAVI", Batch: "N1", Sex: student.Male},
		Classification: attendance.Classification{ConsecutiveDays: 4, WeeklyCount: 4, Risk: attendance.RiskCritical},
		Roll:           "3",
		TotalAbsent:    9,
		Pattern:        "A-A-A-A-P-P-A",
	}}

	for _, l := range [][]attendance.AtRisk{list, nil} {
		buf := new(bytes.Buffer)
		require.NoError(t, RiskPDF(buf, "Wings", "N1", day, l, attendance.DefaultPolicy))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	}
}
