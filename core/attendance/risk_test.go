package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

const (
	A = Absent
	P = Present
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		history History
		want    Classification
	}{
		{"empty", nil, Classification{0, 0, RiskNone}},
		{"streak and frequent", History{A, A, A, P, A}, Classification{3, 4, RiskCritical}},
		{"streak of three", History{A, A, A, P, P, P}, Classification{3, 3, RiskCritical}},
		{"short history", History{A, A, A}, Classification{3, 3, RiskCritical}},
		{"frequent only", History{A, P, A, P, A, P}, Classification{1, 3, RiskFrequent}},
		{"two absences", History{A, A, P, P, P, P}, Classification{2, 2, RiskNone}},
		{"present today", History{P, A, A, A, A}, Classification{0, 4, RiskFrequent}},
		{"old absences outside window", History{P, P, P, P, P, P, A, A, A, A}, Classification{0, 0, RiskNone}},
		{"capped history", History{A, A, A, A, A, A, A, A, A, A, A, A}, Classification{10, 6, RiskCritical}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.history, DefaultPolicy))
			assert.Equal(t, tt.want, Classify(tt.history, DefaultPolicy), "same input, same result")
		})
	}
}

func TestClassifyPolicy(t *testing.T) {
	p := Policy{StreakThreshold: 2, WeeklyWindow: 4, WeeklyLimit: 3}
	assert.Equal(t, RiskConsecutive, Classify(History{A, A, P, P, A}, p).Risk)
	assert.Equal(t, RiskNone, Classify(History{A, P, A, P, A}, p).Risk)
	assert.Equal(t, RiskCritical, Classify(History{A, A, A, A}, p).Risk)
}

func TestHistory(t *testing.T) {
	h := History{A, P, A, A, P, A, A, A}
	assert.Equal(t, 1, h.Streak())
	assert.Equal(t, 3, h.Absences(4))
	assert.Equal(t, 6, h.Absences(20))
	assert.Equal(t, "A-P-A", h.Pattern(3))
	assert.Equal(t, "A-P-A-A-P-A-A-A", h.Pattern(PatternLength+5))
	assert.Equal(t, "", History{}.Pattern(PatternLength))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy.Validate())
	assert.NoError(t, Policy{StreakThreshold: 1, WeeklyWindow: 1, WeeklyLimit: 0}.Validate())

	for _, p := range []Policy{
		{},
		{StreakThreshold: 3, WeeklyWindow: 0, WeeklyLimit: 2},
		{StreakThreshold: 3, WeeklyWindow: 6, WeeklyLimit: -1},
		{StreakThreshold: 3, WeeklyWindow: HistoryWindow + 1, WeeklyLimit: 2},
		{StreakThreshold: HistoryWindow + 1, WeeklyWindow: 6, WeeklyLimit: 2},
	} {
		assert.Error(t, p.Validate(), "%+v", p)
	}

	p, err := PolicyFromConfig(core.RiskConfig{StreakThreshold: 4, WeeklyWindow: 7, WeeklyLimit: 3})
	require.NoError(t, err)
	assert.Equal(t, Policy{StreakThreshold: 4, WeeklyWindow: 7, WeeklyLimit: 3}, p)

	_, err = PolicyFromConfig(core.RiskConfig{})
	assert.Error(t, err)
}

func TestAtRiskStudents(t *testing.T) {
	stats := []AbsenteeStats{
		{Student: student.Student{ID: "zoya", Name: "ZOYA", Batch: "N1", Sex: student.Female}, TotalAbsent: 9, Recent: History{A, A, A}},
		{Student: student.Student{ID: "ravi", Name: "RAVI", Batch: "S1", Sex: student.Male, RollNumber: null.StringFrom("12")}, TotalAbsent: 3, Recent: History{A, A, A, P}},
		{Student: student.Student{ID: "anita", Name: "ANITA", Batch: "S1", Sex: student.Female}, TotalAbsent: 1, Recent: History{P, A}},
		{Student: student.Student{ID: "bella", Name: "BELLA", Batch: "S1", Sex: student.Female}, TotalAbsent: 4, Recent: History{P, A, A, A, P, P, P, P, P}},
		{Student: student.Student{ID: "old", Name: "OLD", Batch: "X9", Sex: student.Male}, TotalAbsent: 5, Recent: History{A, A, A, A, A}},
	}
	list := AtRiskStudents(stats, DefaultPolicy)

	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"bella", "ravi", "zoya", "old"}, ids)

	bella := list[0]
	assert.Equal(t, "2", bella.Roll)
	assert.Equal(t, RiskFrequent, bella.Risk)
	assert.Equal(t, "P-A-A-A-P-P-P", bella.Pattern)
	assert.Equal(t, "Frequent: 3/6 Days", bella.Issue(DefaultPolicy))

	ravi := list[1]
	assert.Equal(t, "12", ravi.Roll)
	assert.Equal(t, RiskCritical, ravi.Risk)
	assert.Equal(t, 3, ravi.TotalAbsent)
	assert.Equal(t, "CRITICAL: 3 Day Streak", ravi.Issue(DefaultPolicy))

	assert.Empty(t, AtRiskStudents(nil, DefaultPolicy))
}

func TestGroupByBatch(t *testing.T) {
	list := []AtRisk{
		{Student: student.Student{ID: "1", Batch: "N1"}},
		{Student: student.Student{ID: "2", Batch: "S1"}},
		{Student: student.Student{ID: "3", Batch: "N1"}},
		{Student: student.Student{ID: "4", Batch: "X9"}},
	}
	groups := GroupByBatch(list)
	require.Len(t, groups, len(student.Batches)+1)

	got := map[string]int{}
	for i, g := range groups {
		if i < len(student.Batches) {
			assert.Equal(t, student.Batches[i], g.Batch)
		}
		assert.Len(t, g.Students, g.Count)
		got[g.Batch] = g.Count
	}
	assert.Equal(t, "X9", groups[len(groups)-1].Batch)
	assert.Equal(t, map[string]int{"S1": 1, "S2": 0, "S3": 0, "N1": 2, "N2": 0, "E1": 0, "X9": 1}, got)
	assert.Equal(t, "1", groups[3].Students[0].ID)
}
