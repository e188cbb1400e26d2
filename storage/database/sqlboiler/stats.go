package boiledrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/student"
)

// absenteeStatsQuery returns one row per student: the total of their absences
// and their newest statuses, newest first.
const absenteeStatsQuery = `
SELECT s.id, s.name, s.batch, s.sex, s.roll_number, s.created_at,
	COUNT(a.id) FILTER (WHERE a.status = 'Absent') AS total_absent,
	ARRAY(
		SELECT r.status FROM attendance r
		WHERE r.student_id = s.id
		ORDER BY r.date DESC
		LIMIT $1
	) AS recent
FROM students s
LEFT JOIN attendance a ON a.student_id = s.id
GROUP BY s.id
ORDER BY s.batch, s.id`

type absenteeStatsRow struct {
	ID          string         `boil:"id"`
	Name        string         `boil:"name"`
	Batch       string         `boil:"batch"`
	Sex         string         `boil:"sex"`
	RollNumber  null.String    `boil:"roll_number"`
	CreatedAt   time.Time      `boil:"created_at"`
	TotalAbsent int            `boil:"total_absent"`
	Recent      pq.StringArray `boil:"recent"`
}

func (row absenteeStatsRow) unboil() attendance.AbsenteeStats {
	recent := make(attendance.History, 0, len(row.Recent))
	for _, st := range row.Recent {
		recent = append(recent, attendance.Status(st))
	}
	return attendance.AbsenteeStats{
		Student: student.Student{
			ID:         row.ID,
			Name:       row.Name,
			Batch:      row.Batch,
			Sex:        student.Sex(row.Sex),
			RollNumber: student.NormalizeRoll(row.RollNumber.String),
			CreatedAt:  row.CreatedAt.UTC(),
		},
		TotalAbsent: row.TotalAbsent,
		Recent:      recent,
	}
}

type statsRepository struct {
	exec boil.ContextExecutor
}

func NewStatsRepository(exec boil.ContextExecutor) *statsRepository {
	return &statsRepository{exec: exec}
}

func (repo *statsRepository) AbsenteeStats(ctx context.Context) ([]attendance.AbsenteeStats, error) {
	var rows []absenteeStatsRow
	if err := queries.Raw(absenteeStatsQuery, attendance.HistoryWindow).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "binding absentee stats")
	}
	stats := make([]attendance.AbsenteeStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.unboil())
	}
	return stats, nil
}
