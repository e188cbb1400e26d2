package attendance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

var errInvalidStatus = errors.New("status must be one of Present or Absent")

// ParseStatus matches s case-insensitively; "P" and "A" are accepted.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(core.CleanString(s)) {
	case "present", "p":
		return Present, nil
	case "absent", "a":
		return Absent, nil
	}
	return "", errInvalidStatus
}

func (s Status) Valid() bool { return s == Present || s == Absent }

// Short is the one letter form used in patterns.
func (s Status) Short() string {
	if s == Present {
		return "P"
	}
	return "A"
}

// Day is a calendar day, normalized to midnight UTC and exchanged as dd-MM-yyyy.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t, in t's location.
func DayOf(t time.Time) Day {
	return NewDay(t.Date())
}

func Today() Day { return DayOf(nowFunc()) }

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(core.DayLayout, core.CleanString(s))
	if err != nil {
		return Day{}, errors.Wrapf(err, "parsing day %q", s)
	}
	return DayOf(t), nil
}

func (d Day) Time() time.Time              { return d.t }
func (d Day) IsZero() bool                 { return d.t.IsZero() }
func (d Day) Before(o Day) bool            { return d.t.Before(o.t) }
func (d Day) After(o Day) bool             { return d.t.After(o.t) }
func (d Day) AddDays(n int) Day            { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) String() string               { return d.t.Format(core.DayLayout) }
func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	day, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = day
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

type Record struct {
	StudentID string `json:"student_id"`
	Date      Day    `json:"date"`
	Status    Status `json:"status"`
}

// Row is a roster student with their status for one day.
type Row struct {
	student.Student
	Roll   string `json:"roll"`
	Status Status `json:"status"`
}

// Entry is one status sent for a day sheet.
type Entry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,oneof=Present Absent"`
}

type SaveRequest struct {
	Entries []Entry `json:"entries" validate:"dive"`
}
