package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	"github.com/wingscc/rollcall/core/user"
	inmemdb "github.com/wingscc/rollcall/storage/database/inmem"
)

// Env holds in-memory repositories and the services built on them.
type Env struct {
	DB             *inmemdb.DB
	UserRepo       user.Repository
	StudentRepo    student.Repository
	AttendanceRepo attendance.Repository

	UserSvc       *user.Service
	StudentSvc    *student.Service
	AttendanceSvc *attendance.Service
	Validate      *validator.Validate
	Translator    ut.Translator
}

// Setup builds a fresh Env. opts is passed to attendance.NewService.
func Setup(t *testing.T, opts ...attendance.Options) *Env {
	t.Helper()

	db := inmemdb.Open()
	env := &Env{
		DB:             db,
		UserRepo:       inmemdb.NewUserRepository(db),
		StudentRepo:    inmemdb.NewStudentRepository(db),
		AttendanceRepo: inmemdb.NewAttendanceRepository(db),
	}
	var o attendance.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	env.UserSvc = user.NewService(env.UserRepo)
	env.StudentSvc = student.NewService(env.StudentRepo)
	env.AttendanceSvc = attendance.NewService(env.AttendanceRepo, env.StudentSvc, o)

	validate, translator := core.NewValidator()
	student.InitValidators(validate, translator)
	env.Validate = validate
	env.Translator = translator
	return env
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, isActive bool) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      uname,
		Username:  uname,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent saves a student; roll may be empty. createdAt defaults to now.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, batch string,
	sex student.Sex,
	roll string,
	createdAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		Name:       name,
		Batch:      batch,
		Sex:        sex,
		RollNumber: student.NormalizeRoll(roll),
		CreatedAt:  tstamp,
	}
	created, err := repo.CreateStudents(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return created[0]
}

// MarkHistory records statuses for a student on consecutive days ending at last, newest first.
func MarkHistory(t *testing.T, repo attendance.Repository, studentID string, last attendance.Day, statuses ...attendance.Status) {
	t.Helper()

	records := make([]attendance.Record, 0, len(statuses))
	for i, st := range statuses {
		records = append(records, attendance.Record{StudentID: studentID, Date: last.AddDays(-i), Status: st})
	}
	if err := repo.UpsertRecords(context.Background(), records); err != nil {
		t.Fatalf("MarkHistory() failed: %v", err)
	}
}
