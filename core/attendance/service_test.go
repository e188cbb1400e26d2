package attendance_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	emailsvc "github.com/wingscc/rollcall/services/email"
	"github.com/wingscc/rollcall/tests"
)

var day = attendance.NewDay(2025, 3, 10)

func TestServicePolicy(t *testing.T) {
	env := testutil.Setup(t)
	assert.Equal(t, attendance.DefaultPolicy, env.AttendanceSvc.Policy())

	p := attendance.Policy{StreakThreshold: 2, WeeklyWindow: 5, WeeklyLimit: 1}
	env = testutil.Setup(t, attendance.Options{Policy: p})
	assert.Equal(t, p, env.AttendanceSvc.Policy())
}

func TestServiceSave(t *testing.T) {
	mailer := emailsvc.NewConsoleServiceMock()
	env := testutil.Setup(t, attendance.Options{
		CenterName: "Wings",
		MailSvc:    mailer,
		NotifyTo:   []mail.Address{{Address: "office@wings.test"}},
	})
	ctx := context.Background()

	anita := testutil.CreateStudent(t, env.StudentRepo, "ANITA", "S1", student.Female, "")
	ravi := testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S1", student.Male, "")
	zoya := testutil.CreateStudent(t, env.StudentRepo, "ZOYA", "N1", student.Female, "")

	_, err := env.AttendanceSvc.Save(ctx, "Q1", day, nil)
	assert.True(t, core.IsValidationError(err))

	_, err = env.AttendanceSvc.Save(ctx, "S1", day, []attendance.Entry{{StudentID: zoya.ID, Status: attendance.Present}})
	assert.True(t, core.IsValidationError(err), "students of other batches are rejected")

	_, err = env.AttendanceSvc.Save(ctx, "S1", day, []attendance.Entry{{StudentID: anita.ID, Status: "Late"}})
	assert.True(t, core.IsValidationError(err))
	assert.Empty(t, mailer.Sent())

	sum, err := env.AttendanceSvc.Save(ctx, "S1", day, []attendance.Entry{{StudentID: anita.ID, Status: attendance.Present}})
	require.NoError(t, err)
	assert.Equal(t, []string{"RAVI"}, sum.Absentees)
	assert.Equal(t, 50, sum.Turnout.Percentage)
	require.Len(t, mailer.Sent(), 1)

	rows, err := env.AttendanceSvc.Sheet(ctx, "S1", day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, attendance.Present, rows[0].Status)
	assert.Equal(t, ravi.ID, rows[1].ID)
	assert.Equal(t, attendance.Absent, rows[1].Status, "unmarked students are saved absent")

	stats, err := env.AttendanceRepo.AbsenteeStats(ctx)
	require.NoError(t, err)
	totals := map[string]int{}
	for _, st := range stats {
		totals[st.Student.ID] = st.TotalAbsent
	}
	assert.Equal(t, map[string]int{anita.ID: 0, ravi.ID: 1, zoya.ID: 0}, totals)

	other, err := env.AttendanceSvc.Sheet(ctx, "S1", day.AddDays(1))
	require.NoError(t, err)
	for _, r := range other {
		assert.Equal(t, attendance.Absent, r.Status)
	}
}

func TestServiceDashboard(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	a := testutil.CreateStudent(t, env.StudentRepo, "A", "S1", student.Female, "")
	testutil.CreateStudent(t, env.StudentRepo, "B", "S1", student.Male, "")
	c := testutil.CreateStudent(t, env.StudentRepo, "C", "E1", student.Male, "")
	testutil.MarkHistory(t, env.AttendanceRepo, a.ID, day, attendance.Present)
	testutil.MarkHistory(t, env.AttendanceRepo, c.ID, day, attendance.Absent, attendance.Present)

	d, err := env.AttendanceSvc.Dashboard(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, attendance.Turnout{Total: 3, Present: 1, Absent: 2, Percentage: 33}, d.Global)

	d, err = env.AttendanceSvc.Dashboard(ctx, day.AddDays(-1))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Global.Present)
}

func TestServiceAbsentees(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	A, P := attendance.Absent, attendance.Present

	ravi := testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S1", student.Male, "")
	zoya := testutil.CreateStudent(t, env.StudentRepo, "ZOYA", "N1", student.Female, "")
	fine := testutil.CreateStudent(t, env.StudentRepo, "FINE", "S1", student.Female, "")
	testutil.MarkHistory(t, env.AttendanceRepo, ravi.ID, day, A, A, A, P, A)
	testutil.MarkHistory(t, env.AttendanceRepo, zoya.ID, day, A, P, A, P, A)
	testutil.MarkHistory(t, env.AttendanceRepo, fine.ID, day, P, A, P, P)

	list, err := env.AttendanceSvc.Absentees(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ravi.ID, list[0].ID)
	assert.Equal(t, attendance.RiskCritical, list[0].Risk)
	assert.Equal(t, 3, list[0].ConsecutiveDays)
	assert.Equal(t, 4, list[0].WeeklyCount)
	assert.Equal(t, 4, list[0].TotalAbsent)
	assert.Equal(t, "A-A-A-P-A", list[0].Pattern)
	assert.Equal(t, zoya.ID, list[1].ID)
	assert.Equal(t, attendance.RiskFrequent, list[1].Risk)

	list, err = env.AttendanceSvc.Absentees(ctx, "N1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, zoya.ID, list[0].ID)

	_, err = env.AttendanceSvc.Absentees(ctx, "Q1")
	assert.True(t, core.IsValidationError(err))
}

func TestServiceStudentReport(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S1", student.Male, "")
	testutil.MarkHistory(t, env.AttendanceRepo, s.ID, day, attendance.Present, attendance.Absent)

	rep, err := env.AttendanceSvc.StudentReport(ctx, s.ID, day.AddDays(-7), day)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Present)
	assert.Equal(t, 1, rep.Absent)
	assert.Equal(t, 50, rep.Percentage)

	_, err = env.AttendanceSvc.StudentReport(ctx, s.ID, day, day.AddDays(-1))
	assert.True(t, core.IsValidationError(err))

	_, err = env.AttendanceSvc.StudentReport(ctx, "missing", day, day)
	assert.Equal(t, student.ErrNotFound, err)

	require.NoError(t, env.AttendanceSvc.ClearAll(ctx))
	rep, err = env.AttendanceSvc.StudentReport(ctx, s.ID, day.AddDays(-7), day)
	require.NoError(t, err)
	assert.Empty(t, rep.Details)
}
