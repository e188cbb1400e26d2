package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

var studentOrderFields = []string{"name", "batch", "sex", "roll_number", "created_at"}

type studentRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Batch      string      `db:"batch"`
	Sex        string      `db:"sex"`
	RollNumber null.String `db:"roll_number"`
	CreatedAt  time.Time   `db:"created_at"`
}

func boilStudent(s student.Student) studentRow {
	return studentRow{
		ID:         s.ID,
		Name:       s.Name,
		Batch:      s.Batch,
		Sex:        string(s.Sex),
		RollNumber: student.NormalizeRoll(s.RollNumber.String),
		CreatedAt:  s.CreatedAt.UTC(),
	}
}

func (row studentRow) unboil() student.Student {
	return student.Student{
		ID:         row.ID,
		Name:       row.Name,
		Batch:      row.Batch,
		Sex:        student.Sex(row.Sex),
		RollNumber: student.NormalizeRoll(row.RollNumber.String),
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

func unboilStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.unboil())
	}
	return students
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudents(ctx context.Context, students ...student.Student) ([]student.Student, error) {
	if len(students) == 0 {
		return nil, nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO students (id, name, batch, sex, roll_number, created_at)
		VALUES (:id, :name, :batch, :sex, :roll_number, :created_at)`
	created := make([]student.Student, 0, len(students))
	for _, s := range students {
		s.ID = uuid.New().String()
		row := boilStudent(s)
		if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
			return nil, errors.Wrap(err, "inserting student")
		}
		created = append(created, row.unboil())
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing students")
	}
	return created, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var (
		where []string
		args  []interface{}
	)
	if !filter.IsEmpty() {
		if filter.Batch != "" {
			where = append(where, "batch = ?")
			args = append(args, filter.Batch)
		}
		// students with Name, Batch or Roll number matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where = append(where, "(name ILIKE ? OR batch ILIKE ? OR roll_number ILIKE ?)")
			args = append(args, val, val, val)
		}
	}

	q := "SELECT * FROM students"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	orderBy := core.OrderBy(ordering, studentOrderFields...)
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	q += " ORDER BY " + orderBy + ", id"

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return unboilStudents(rows), nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM students WHERE id = $1", id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.unboil(), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	const q = `UPDATE students SET name = :name, batch = :batch, sex = :sex, roll_number = :roll_number
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, boilStudent(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, s.ID)
}

func (repo *studentRepository) UpdateRollNumbers(ctx context.Context, students []student.Student) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range students {
		roll := student.NormalizeRoll(s.RollNumber.String)
		if _, err = tx.ExecContext(ctx, "UPDATE students SET roll_number = $1 WHERE id = $2", roll, s.ID); err != nil {
			return errors.Wrap(err, "updating roll number")
		}
	}
	return errors.Wrap(tx.Commit(), "committing roll numbers")
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM students WHERE id IN (?)", valid)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted students")
}

func (repo *studentRepository) DeleteAllStudents(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM students")
	return errors.Wrap(err, "deleting all students")
}
