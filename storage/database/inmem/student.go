package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

type studentRepository struct {
	db         *studentTable
	attendance *attendanceTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student, attendance: db.attendance}
}

// query returns matching students, newest first.
func (repo *studentRepository) query(filter *student.QueryFilter) []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if filter.Match(*s) {
			students = append(students, *s)
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		if !students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].CreatedAt.After(students[j].CreatedAt)
		}
		return repo.db.seq[students[i].ID] > repo.db.seq[students[j].ID]
	})
	return students
}

func (repo *studentRepository) CreateStudents(_ context.Context, students ...student.Student) ([]student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]student.Student, 0, len(students))
	for _, s := range students {
		s := s
		s.ID = uuid.New().String()
		repo.db.next++
		repo.db.seq[s.ID] = repo.db.next
		repo.db.table[s.ID] = &s
		created = append(created, s)
	}
	return created, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query(filter)
	if len(ordering) > 0 {
		sort.SliceStable(students, func(i, j int) bool { return less(students[i], students[j], ordering) })
	}
	return students, nil
}

// less compares on the first ordering field that differs.
func less(a, b student.Student, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var c int
		switch ord.Field {
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "batch":
			c = strings.Compare(a.Batch, b.Batch)
		case "sex":
			c = strings.Compare(string(a.Sex), string(b.Sex))
		case "roll_number":
			c = strings.Compare(a.RollNumber.String, b.RollNumber.String)
		case "created_at":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				c = -1
			case a.CreatedAt.After(b.CreatedAt):
				c = 1
			}
		}
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) UpdateRollNumbers(_ context.Context, students []student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range students {
		if orig, ok := repo.db.table[s.ID]; ok {
			orig.RollNumber = s.RollNumber
		}
	}
	return nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			delete(repo.db.seq, id)
			deleted[id] = true
			cnt++
		}
	}
	repo.cascade(func(id string) bool { return deleted[id] })
	return cnt, nil
}

func (repo *studentRepository) DeleteAllStudents(_ context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[string]*student.Student)
	repo.db.seq = make(map[string]int)
	repo.cascade(func(string) bool { return true })
	return nil
}

// cascade drops the attendance of deleted students.
func (repo *studentRepository) cascade(deleted func(id string) bool) {
	repo.attendance.Lock()
	defer repo.attendance.Unlock()

	for k := range repo.attendance.table {
		if deleted(k.studentID) {
			delete(repo.attendance.table, k)
		}
	}
}
