package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/wingscc/rollcall/core"
)

type Sex string

const (
	Female Sex = "Female"
	Male   Sex = "Male"
)

// unassignedRoll is the legacy "no roll number" marker found in older rows.
const unassignedRoll = "00"

// Batches is the closed set of batch labels, in display order.
var Batches = []string{"S1", "S2", "S3", "N1", "N2", "E1"}

func IsBatch(batch string) bool {
	for _, b := range Batches {
		if b == batch {
			return true
		}
	}
	return false
}

// ParseSex matches `s` case-insensitively against the known values.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToLower(core.CleanString(s)) {
	case "female", "f":
		return Female, true
	case "male", "m":
		return Male, true
	}
	return "", false
}

// NormalizeRoll maps empty and legacy "00" roll numbers to null.
func NormalizeRoll(roll string) null.String {
	roll = core.CleanString(roll)
	if roll == "" || roll == unassignedRoll {
		return null.String{}
	}
	return null.StringFrom(roll)
}

type Student struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Batch      string      `json:"batch"`
	Sex        Sex         `json:"sex"`
	RollNumber null.String `json:"roll_number"`
	CreatedAt  time.Time   `json:"created_at"` // UTC
}

// HasRoll reports whether a roll number is stored for the student.
func (s Student) HasRoll() bool {
	return s.RollNumber.Valid && NormalizeRoll(s.RollNumber.String).Valid
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name       string `json:"name" validate:"required,notblank"`
	Batch      string `json:"batch" validate:"required,batch"`
	Sex        Sex    `json:"sex" validate:"required,sex"`
	RollNumber string `json:"roll_number" validate:"omitempty,max=10"`
}

func (ns *NewStudent) Clean() {
	ns.Name = core.UpperName(ns.Name)
	ns.Batch = strings.ToUpper(core.CleanString(ns.Batch))
	if sex, ok := ParseSex(string(ns.Sex)); ok {
		ns.Sex = sex
	}
	ns.RollNumber = core.CleanString(ns.RollNumber)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value; RollNumber "" or "00" clears the roll number.
type UpdateStudent struct {
	Name       string  `json:"name"`
	Batch      string  `json:"batch" validate:"omitempty,batch"`
	Sex        Sex     `json:"sex" validate:"omitempty,sex"`
	RollNumber *string `json:"roll_number" validate:"omitempty,max=10"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := core.UpperName(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	if batch := strings.ToUpper(core.CleanString(us.Batch)); batch != "" {
		us.Batch = batch
	} else {
		us.Batch = orig.Batch
	}

	if us.Sex == "" {
		us.Sex = orig.Sex
	} else if sex, ok := ParseSex(string(us.Sex)); ok {
		us.Sex = sex
	}

	return validate.Struct(us)
}

type QueryFilter struct {
	Search string `query:"search"`
	Batch  string `query:"batch"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && qf.Batch == "")
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Batch = strings.ToUpper(core.CleanString(qf.Batch))
}

// Match applies the filter in memory: batch equality and a case-insensitive search over name, batch and roll number.
func (qf *QueryFilter) Match(s Student) bool {
	if qf.IsEmpty() {
		return true
	}
	if qf.Batch != "" && s.Batch != qf.Batch {
		return false
	}
	if qf.Search == "" {
		return true
	}
	return core.ContainsFold(s.Name, qf.Search) ||
		core.ContainsFold(s.Batch, qf.Search) ||
		(s.HasRoll() && core.ContainsFold(s.RollNumber.String, qf.Search))
}
