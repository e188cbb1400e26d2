package tests

import (
	"net/http"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/wingscc/rollcall/apps/api/echo"
	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	emailsvc "github.com/wingscc/rollcall/services/email"
	"github.com/wingscc/rollcall/tests"
)

const testDate = "10-03-2025"

var testDay = attendance.NewDay(2025, 3, 10)

type s1Batch struct {
	anita, bella, ravi student.Student
}

func createS1(t *testing.T, app *testApp) s1Batch {
	return s1Batch{
		ravi:  testutil.CreateStudent(t, app.StudentRepo, "RAVI KUMAR", "S1", student.Male, "12"),
		anita: testutil.CreateStudent(t, app.StudentRepo, "ANITA RAO", "S1", student.Female, ""),
		bella: testutil.CreateStudent(t, app.StudentRepo, "BELLA DSOUZA", "S1", student.Female, ""),
	}
}

func TestAttendanceSave(t *testing.T) {
	mailer := emailsvc.NewConsoleServiceMock()
	app := setup(t, attendance.Options{
		CenterName: "Wings",
		MailSvc:    mailer,
		NotifyTo:   []mail.Address{{Name: "Office", Address: "office@wings.test"}},
	})
	b := createS1(t, app)
	path := "/v1/attendance?batch=s1&date=" + testDate

	runHTTPTests(t, app, []httpTest{
		{name: "bad date", method: http.MethodPut, path: "/v1/attendance?batch=S1&date=2025-03-10", token: app.token,
			body: []byte(`{"entries":[]}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date":"date must be in dd-mm-yyyy format"}`)},
		{name: "unknown batch", method: http.MethodPut, path: "/v1/attendance?batch=Q1&date=" + testDate, token: app.token,
			body: []byte(`{"entries":[]}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"batch":"unknown batch"}`)},
		{name: "unknown student", method: http.MethodPut, path: path, token: app.token,
			body:     []byte(`{"entries":[{"student_id":"ghost","status":"Present"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"entries":"ghost: student is not part of this batch"}`)},
		{name: "invalid status", method: http.MethodPut, path: path, token: app.token,
			body:     marshallObj(t, echoMap{"entries": []echoMap{{"student_id": b.anita.ID, "status": "Late"}}}),
			wantCode: http.StatusBadRequest},
	})
	assert.Empty(t, mailer.Sent(), "rejected sheets send nothing")

	t.Run("success", func(t *testing.T) {
		body := marshallObj(t, attendance.SaveRequest{Entries: []attendance.Entry{
			{StudentID: b.anita.ID, Status: attendance.Present},
		}})
		rec := app.do(http.MethodPut, path, app.token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sum attendance.Summary
		unmarshall(t, rec, &sum)
		assert.Equal(t, "S1", sum.Batch)
		assert.Equal(t, testDay, sum.Date)
		assert.Equal(t, attendance.Turnout{Batch: "S1", Total: 3, Present: 1, Absent: 2, Percentage: 33}, sum.Turnout)
		assert.Equal(t, []string{"BELLA DSOUZA", "RAVI KUMAR"}, sum.Absentees)
		assert.Equal(t, "*Wings*\nBatch: S1\nDate: 10-03-2025\n\n*Absentees:*\n1. BELLA DSOUZA\n2. RAVI KUMAR", sum.Message)

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "Absentees S1 - 10-03-2025", sent[0].Subject)
		assert.Equal(t, sum.Message, sent[0].TextContent)
		assert.Equal(t, "office@wings.test", sent[0].To[0].Address)
	})

	t.Run("sheet", func(t *testing.T) {
		rec := app.do(http.MethodGet, path, app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rows []attendance.Row
		unmarshall(t, rec, &rows)
		require.Len(t, rows, 3)
		got := make([][3]string, 0, len(rows))
		for _, r := range rows {
			got = append(got, [3]string{r.Name, r.Roll, string(r.Status)})
		}
		assert.Equal(t, [][3]string{
			{"ANITA RAO", "1", "Present"},
			{"BELLA DSOUZA", "2", "Absent"},
			{"RAVI KUMAR", "12", "Absent"},
		}, got)
	})

	t.Run("sheet search keeps rolls", func(t *testing.T) {
		rec := app.do(http.MethodGet, path+"&q=bel", app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rows []attendance.Row
		unmarshall(t, rec, &rows)
		require.Len(t, rows, 1)
		assert.Equal(t, b.bella.ID, rows[0].ID)
		assert.Equal(t, "2", rows[0].Roll)
	})

	t.Run("resave replaces statuses", func(t *testing.T) {
		mailer.Reset()
		body := marshallObj(t, attendance.SaveRequest{Entries: []attendance.Entry{
			{StudentID: b.anita.ID, Status: attendance.Present},
			{StudentID: b.bella.ID, Status: attendance.Present},
			{StudentID: b.ravi.ID, Status: attendance.Present},
		}})
		rec := app.do(http.MethodPut, path, app.token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sum attendance.Summary
		unmarshall(t, rec, &sum)
		assert.Equal(t, 100, sum.Turnout.Percentage)
		assert.Empty(t, sum.Absentees)
		assert.Empty(t, mailer.Sent(), "nobody absent, nothing to notify")
	})
}

type echoMap map[string]interface{}

func TestDashboard(t *testing.T) {
	app := setup(t)
	b := createS1(t, app)
	n1 := testutil.CreateStudent(t, app.StudentRepo, "ZOYA KHAN", "N1", student.Female, "")

	testutil.MarkHistory(t, app.AttendanceRepo, b.anita.ID, testDay, attendance.Present)
	testutil.MarkHistory(t, app.AttendanceRepo, b.ravi.ID, testDay, attendance.Absent)
	testutil.MarkHistory(t, app.AttendanceRepo, n1.ID, testDay, attendance.Present)
	// another day does not count
	testutil.MarkHistory(t, app.AttendanceRepo, b.bella.ID, testDay.AddDays(-1), attendance.Present)

	rec := app.do(http.MethodGet, "/v1/dashboard?date="+testDate, app.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var d attendance.Dashboard
	unmarshall(t, rec, &d)
	assert.Equal(t, testDay, d.Date)
	require.Len(t, d.Batches, len(student.Batches))

	byBatch := map[string]attendance.Turnout{}
	for _, bt := range d.Batches {
		byBatch[bt.Batch] = bt
	}
	assert.Equal(t, attendance.Turnout{Batch: "S1", Total: 3, Present: 1, Absent: 2, Percentage: 33}, byBatch["S1"])
	assert.Equal(t, attendance.Turnout{Batch: "N1", Total: 1, Present: 1, Absent: 0, Percentage: 100}, byBatch["N1"])
	assert.Equal(t, attendance.Turnout{Batch: "E1"}, byBatch["E1"])
	assert.Equal(t, attendance.Turnout{Total: 4, Present: 2, Absent: 2, Percentage: 50}, d.Global)
}

func TestAbsentees(t *testing.T) {
	app := setup(t)
	b := createS1(t, app)
	zoya := testutil.CreateStudent(t, app.StudentRepo, "ZOYA KHAN", "N1", student.Female, "")

	A, P := attendance.Absent, attendance.Present
	testutil.MarkHistory(t, app.AttendanceRepo, b.ravi.ID, testDay, A, A, A, P)
	testutil.MarkHistory(t, app.AttendanceRepo, b.bella.ID, testDay, A, P, A, A)
	testutil.MarkHistory(t, app.AttendanceRepo, b.anita.ID, testDay, P, P, A, P)
	testutil.MarkHistory(t, app.AttendanceRepo, zoya.ID, testDay, A, A, A, P, P, P)

	t.Run("all batches", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/absentees", app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res AbsenteesResponse
		unmarshall(t, rec, &res)
		assert.Equal(t, attendance.DefaultPolicy, res.Policy)
		assert.Equal(t, 3, res.Total)
		require.Len(t, res.Batches, len(student.Batches))

		s1 := res.Batches[0]
		assert.Equal(t, "S1", s1.Batch)
		require.Equal(t, 2, s1.Count)
		assert.Equal(t, b.bella.ID, s1.Students[0].ID)
		assert.Equal(t, attendance.RiskFrequent, s1.Students[0].Risk)
		assert.Equal(t, "2", s1.Students[0].Roll)
		assert.Equal(t, "A-P-A-A", s1.Students[0].Pattern)
		assert.Equal(t, b.ravi.ID, s1.Students[1].ID)
		assert.Equal(t, attendance.RiskCritical, s1.Students[1].Risk)
		assert.Equal(t, 3, s1.Students[1].ConsecutiveDays)
		assert.Equal(t, "12", s1.Students[1].Roll)

		n1 := res.Batches[3]
		assert.Equal(t, "N1", n1.Batch)
		require.Equal(t, 1, n1.Count)
		assert.Equal(t, attendance.RiskCritical, n1.Students[0].Risk)
		assert.Equal(t, 3, n1.Students[0].TotalAbsent)

		assert.Equal(t, 0, res.Batches[1].Count)
		assert.NotNil(t, res.Batches[1].Students)
	})

	t.Run("one batch", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/absentees?batch=n1", app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res AbsenteesResponse
		unmarshall(t, rec, &res)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Batches, 1)
		assert.Equal(t, "N1", res.Batches[0].Batch)
	})

	t.Run("unknown batch", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/absentees?batch=Q1", app.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pdf", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/absentees/S1/report.pdf", app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	})
}

func TestStudentReport(t *testing.T) {
	app := setup(t)
	b := createS1(t, app)

	A, P := attendance.Absent, attendance.Present
	testutil.MarkHistory(t, app.AttendanceRepo, b.ravi.ID, testDay, A, P, A, P)

	runHTTPTests(t, app, []httpTest{
		{name: "unknown student", method: http.MethodGet, path: "/v1/reports/students/ghost", token: app.token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"})},
		{name: "inverted range", method: http.MethodGet, token: app.token,
			path:     "/v1/reports/students/" + b.ravi.ID + "?from=11-03-2025&to=" + testDate,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"from":"from cannot be after to"}`)},
	})

	t.Run("range", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/reports/students/"+b.ravi.ID+"?from=08-03-2025&to="+testDate, app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep attendance.StudentReport
		unmarshall(t, rec, &rep)
		assert.Equal(t, b.ravi.ID, rep.Student.ID)
		assert.Equal(t, 1, rep.Present)
		assert.Equal(t, 2, rep.Absent)
		assert.Equal(t, 33, rep.Percentage)
		require.Len(t, rep.Details, 3)
		assert.Equal(t, testDay, rep.Details[0].Date)
	})

	t.Run("default range", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/reports/students/"+b.ravi.ID+"?to="+testDate, app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep attendance.StudentReport
		unmarshall(t, rec, &rep)
		assert.Equal(t, testDay.AddDays(-30), rep.From)
		assert.Len(t, rep.Details, 4)
	})

	t.Run("daily pdf", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/reports/batches/s1/daily.pdf?date="+testDate, app.token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "S1_10-03-2025.pdf")
	})
}
