package inmemdb

import (
	"sync"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
	"github.com/wingscc/rollcall/core/user"
)

type (
	// DB is an in-memory store, used by tests and the demo mode.
	DB struct {
		student    *studentTable
		attendance *attendanceTable
		user       *userTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
		seq   map[string]int // insertion order
		next  int
	}

	recordKey struct {
		studentID string
		date      attendance.Day
	}

	attendanceTable struct {
		sync.RWMutex
		table map[recordKey]attendance.Status
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() *DB {
	return &DB{
		student:    &studentTable{table: make(map[string]*student.Student), seq: make(map[string]int)},
		attendance: &attendanceTable{table: make(map[recordKey]attendance.Status)},
		user:       &userTable{table: make(map[string]*user.User)},
	}
}
