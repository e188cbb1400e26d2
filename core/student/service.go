package student

import (
	"context"
	"errors"
	"time"

	"github.com/wingscc/rollcall/core"
)

// RecentCount is the number of students listed by Service.Recent by default.
const RecentCount = 5

var (
	// errors
	ErrNotFound = errors.New("student not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateStudents inserts students, assigning their IDs.
		CreateStudents(ctx context.Context, students ...Student) ([]Student, error)
		// QueryStudents applies QueryFilter.Match semantics; nil ordering means newest first.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// UpdateRollNumbers saves the roll numbers of the given students.
		UpdateRollNumbers(ctx context.Context, students []Student) error
		DeleteStudentsByID(ctx context.Context, ids ...string) (int, error)
		// DeleteAllStudents removes every student along with their attendance.
		DeleteAllStudents(ctx context.Context) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) newStudent(ns NewStudent) Student {
	return Student{
		Name:       ns.Name,
		Batch:      ns.Batch,
		Sex:        ns.Sex,
		RollNumber: NormalizeRoll(ns.RollNumber),
		CreatedAt:  nowFunc().UTC(),
	}
}

// Create saves a validated NewStudent.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	created, err := svc.repo.CreateStudents(ctx, svc.newStudent(ns))
	if err != nil {
		return Student{}, err
	}
	return created[0], nil
}

// CreateMany saves validated NewStudents in one go.
func (svc *Service) CreateMany(ctx context.Context, nss []NewStudent) ([]Student, error) {
	if len(nss) == 0 {
		return nil, nil
	}
	students := make([]Student, 0, len(nss))
	for _, ns := range nss {
		students = append(students, svc.newStudent(ns))
	}
	return svc.repo.CreateStudents(ctx, students...)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// Recent returns the last n added students, newest first.
func (svc *Service) Recent(ctx context.Context, n int) ([]Student, error) {
	if n <= 0 {
		n = RecentCount
	}
	students, err := svc.repo.QueryStudents(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(students) > n {
		students = students[:n]
	}
	return students, nil
}

// Roster returns the students of a batch in canonical roster order.
func (svc *Service) Roster(ctx context.Context, batch string) ([]Student, error) {
	students, err := svc.repo.QueryStudents(ctx, &QueryFilter{Batch: batch}, nil)
	if err != nil {
		return nil, err
	}
	return SortRoster(students), nil
}

// All returns every student, all batches.
func (svc *Service) All(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, nil, nil)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// Update applies a validated UpdateStudent to orig.
func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	s := orig
	s.Name = us.Name
	s.Batch = us.Batch
	s.Sex = us.Sex
	if us.RollNumber != nil {
		s.RollNumber = NormalizeRoll(*us.RollNumber)
	}
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *Service) DeleteAll(ctx context.Context) error {
	return svc.repo.DeleteAllStudents(ctx)
}

// AssignRollNumbers re-numbers the whole batch 1..N in canonical roster order.
func (svc *Service) AssignRollNumbers(ctx context.Context, batch string) ([]Student, error) {
	if !IsBatch(batch) {
		return nil, core.NewFieldError("batch", batchText)
	}
	students, err := svc.repo.QueryStudents(ctx, &QueryFilter{Batch: batch}, nil)
	if err != nil {
		return nil, err
	}
	assigned := AssignRolls(students)
	if len(assigned) == 0 {
		return assigned, nil
	}
	if err = svc.repo.UpdateRollNumbers(ctx, assigned); err != nil {
		return nil, err
	}
	return assigned, nil
}
