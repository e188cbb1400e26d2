package student_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
	"github.com/wingscc/rollcall/tests"
)

func TestServiceCreate(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	ns := student.NewStudent{Name: " zoya  khan", Batch: "n1", Sex: "f", RollNumber: "00"}
	require.NoError(t, ns.Validate(env.Validate))

	s, err := env.StudentSvc.Create(ctx, ns)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "ZOYA KHAN", s.Name)
	assert.Equal(t, "N1", s.Batch)
	assert.Equal(t, student.Female, s.Sex)
	assert.False(t, s.RollNumber.Valid)

	got, err := env.StudentSvc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = env.StudentSvc.GetByID(ctx, "missing")
	assert.Equal(t, student.ErrNotFound, err)
}

func TestServiceRosterAndRecent(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	now := time.Now()

	testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S1", student.Male, "", now.Add(-3*time.Minute))
	testutil.CreateStudent(t, env.StudentRepo, "BELLA", "S1", student.Female, "", now.Add(-2*time.Minute))
	testutil.CreateStudent(t, env.StudentRepo, "ZOYA", "N1", student.Female, "", now.Add(-time.Minute))
	testutil.CreateStudent(t, env.StudentRepo, "ANITA", "S1", student.Female, "", now)

	roster, err := env.StudentSvc.Roster(ctx, "S1")
	require.NoError(t, err)
	var got []string
	for _, s := range roster {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{"ANITA", "BELLA", "RAVI"}, got)

	recent, err := env.StudentSvc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, "ANITA", recent[0].Name)

	recent, err = env.StudentSvc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "ZOYA", recent[1].Name)

	ordered, err := env.StudentSvc.Query(ctx, nil, []core.DBOrdering{{Field: "name", Ascending: false}})
	require.NoError(t, err)
	assert.Equal(t, "ZOYA", ordered[0].Name)
}

func TestServiceUpdate(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	orig := testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S1", student.Male, "4")

	us := student.UpdateStudent{Name: "ravi kumar", Sex: "female"}
	require.NoError(t, us.Validate(orig, env.Validate))
	s, err := env.StudentSvc.Update(ctx, orig, us)
	require.NoError(t, err)
	assert.Equal(t, "RAVI KUMAR", s.Name)
	assert.Equal(t, "S1", s.Batch)
	assert.Equal(t, student.Female, s.Sex)
	assert.Equal(t, "4", s.RollNumber.String, "a missing roll number keeps the stored one")

	clear := "00"
	us = student.UpdateStudent{RollNumber: &clear}
	require.NoError(t, us.Validate(s, env.Validate))
	s, err = env.StudentSvc.Update(ctx, s, us)
	require.NoError(t, err)
	assert.False(t, s.RollNumber.Valid)

	us = student.UpdateStudent{Batch: "Z1"}
	assert.Error(t, us.Validate(s, env.Validate))
}

func TestServiceAssignRollNumbers(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, env.StudentRepo, "RAVI", "S2", student.Male, "9")
	testutil.CreateStudent(t, env.StudentRepo, "ANITA", "S2", student.Female, "")
	other := testutil.CreateStudent(t, env.StudentRepo, "ZOYA", "N1", student.Female, "5")

	_, err := env.StudentSvc.AssignRollNumbers(ctx, "XX")
	assert.True(t, core.IsValidationError(err))

	assigned, err := env.StudentSvc.AssignRollNumbers(ctx, "S2")
	require.NoError(t, err)
	require.Len(t, assigned, 2)

	roster, err := env.StudentSvc.Roster(ctx, "S2")
	require.NoError(t, err)
	assert.Equal(t, "1", roster[0].RollNumber.String)
	assert.Equal(t, "2", roster[1].RollNumber.String)

	z, err := env.StudentSvc.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "5", z.RollNumber.String, "other batches are left alone")

	empty, err := env.StudentSvc.AssignRollNumbers(ctx, "E1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestServiceImport(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()

	res, err := env.StudentSvc.Import(ctx, strings.NewReader("name,batch\nanita,s1\nravi,xx\n"), env.Validate)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Line)

	res, err = env.StudentSvc.Import(ctx, strings.NewReader("name\n"), env.Validate)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.NotNil(t, res.Skipped)
}

func TestServiceDelete(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	a := testutil.CreateStudent(t, env.StudentRepo, "A", "S1", student.Male, "")
	b := testutil.CreateStudent(t, env.StudentRepo, "B", "S1", student.Male, "")

	n, err := env.StudentSvc.Delete(ctx, a.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, env.StudentSvc.DeleteAll(ctx))
	_, err = env.StudentSvc.GetByID(ctx, b.ID)
	assert.Equal(t, student.ErrNotFound, err)
}
