package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/wingscc/rollcall/core/student"
)

var day = NewDay(2025, 3, 10)

func batchS1() []student.Student {
	return []student.Student{
		{ID: "ravi", Name: "RAVI", Batch: "S1", Sex: student.Male, RollNumber: null.StringFrom("12")},
		{ID: "anita", Name: "ANITA", Batch: "S1", Sex: student.Female},
		{ID: "bella", Name: "BELLA", Batch: "S1", Sex: student.Female, RollNumber: null.StringFrom("00")},
		{ID: "adam", Name: "ADAM", Batch: "S1", Sex: student.Male},
	}
}

func TestMerge(t *testing.T) {
	records := []Record{
		{StudentID: "anita", Date: day, Status: Present},
		{StudentID: "ravi", Date: day, Status: Absent},
		{StudentID: "adam", Date: day, Status: "Late"},
		{StudentID: "ghost", Date: day, Status: Present},
	}
	rows := Merge(batchS1(), records)

	type row struct {
		id, roll string
		status   Status
	}
	got := make([]row, 0, len(rows))
	for _, r := range rows {
		got = append(got, row{r.ID, r.Roll, r.Status})
	}
	assert.Equal(t, []row{
		{"anita", "1", Present},
		{"bella", "2", Absent},
		{"adam", "3", Absent},
		{"ravi", "12", Absent},
	}, got)
}

func TestMergeNoRecords(t *testing.T) {
	rows := Merge(batchS1(), nil)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, Absent, r.Status)
	}
	assert.Empty(t, Merge(nil, []Record{{StudentID: "x", Status: Present}}))
}

func TestFilter(t *testing.T) {
	rows := Merge(batchS1(), nil)

	got := Filter(rows, "  ada ")
	require.Len(t, got, 1)
	assert.Equal(t, "adam", got[0].ID)
	assert.Equal(t, "3", got[0].Roll, "rolls come from the full roster")

	got = Filter(rows, "12")
	require.Len(t, got, 1)
	assert.Equal(t, "ravi", got[0].ID)

	assert.Len(t, Filter(rows, ""), 4)
	assert.Empty(t, Filter(rows, "zzz"))
}

func TestRecordsAndAbsentNames(t *testing.T) {
	rows := Merge(batchS1(), []Record{{StudentID: "bella", Status: Present}})

	records := Records(rows, day)
	require.Len(t, records, 4)
	for i, r := range records {
		assert.Equal(t, rows[i].ID, r.StudentID)
		assert.Equal(t, day, r.Date)
	}
	assert.Equal(t, []string{"ANITA", "ADAM", "RAVI"}, AbsentNames(rows))
}
