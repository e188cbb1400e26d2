package student

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
)

var (
	csvHeader   = []string{"name", "batch", "sex", "roll_number"}
	csvTemplate = [][]string{
		{"JOHN DOE", "S1", "Male", "1"},
		{"JANE SMITH", "N1", "Female", "2"},
	}

	errCSVNoHeader = errors.New("csv: missing header row")
)

type (
	SkippedRow struct {
		Line   int    `json:"line"`
		Reason string `json:"reason"`
	}

	ImportResult struct {
		Imported int          `json:"imported"`
		Skipped  []SkippedRow `json:"skipped"`
	}
)

// WriteTemplate writes the import template with two sample rows.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(csvTemplate); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSV exports students with the import columns.
func WriteCSV(w io.Writer, students []Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range students {
		roll := ""
		if s.HasRoll() {
			roll = s.RollNumber.String
		}
		if err := cw.Write([]string{s.Name, s.Batch, string(s.Sex), roll}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads import rows. Columns are located by header name (any order, any case).
// Names are upper-cased, a missing sex defaults to Male; rows failing validation are skipped.
func ParseCSV(r io.Reader, validate *validator.Validate) ([]NewStudent, []SkippedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fileError(errCSVNoHeader)
	}
	if err != nil {
		return nil, nil, fileError(errors.Wrap(err, "reading csv header"))
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, fileError(errCSVNoHeader)
	}

	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var (
		rows    []NewStudent
		skipped []SkippedRow
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fileError(errors.Wrap(err, "reading csv"))
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}

		ns := NewStudent{
			Name:       field(rec, "name"),
			Batch:      field(rec, "batch"),
			Sex:        Sex(field(rec, "sex")),
			RollNumber: field(rec, "roll_number"),
		}
		if strings.TrimSpace(string(ns.Sex)) == "" {
			ns.Sex = Male
		}
		if err := ns.Validate(validate); err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: rowError(err)})
			continue
		}
		rows = append(rows, ns)
	}
	return rows, skipped, nil
}

// Import parses and saves a roster CSV.
func (svc *Service) Import(ctx context.Context, r io.Reader, validate *validator.Validate) (ImportResult, error) {
	rows, skipped, err := ParseCSV(r, validate)
	if err != nil {
		return ImportResult{}, err
	}
	created, err := svc.CreateMany(ctx, rows)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "creating students")
	}
	if skipped == nil {
		skipped = []SkippedRow{}
	}
	return ImportResult{Imported: len(created), Skipped: skipped}, nil
}

// fileError reports a malformed upload against the "file" field.
func fileError(err error) error {
	return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func rowError(err error) string {
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		msgs := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			msgs = append(msgs, fmt.Sprintf("%s: invalid %s", fe.Field(), fe.Tag()))
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
