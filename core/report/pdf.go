// Package report renders the printable attendance reports.
package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core/attendance"
)

const (
	font       = "Arial"
	lineHeight = 8.0
)

type column struct {
	title string
	width float64
	align string
}

type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) heading(text string) {
	d.pdf.SetFont(font, "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "C", false, 0, "")
}

func (d *document) line(style string, size float64, text string) {
	d.pdf.SetFont(font, style, size)
	d.pdf.CellFormat(0, lineHeight, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *document) header(cols []column) {
	d.pdf.SetFont(font, "B", 10)
	d.pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		d.pdf.CellFormat(c.width, lineHeight, c.title, "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) row(cols []column, values ...string) {
	d.pdf.SetFont(font, "", 10)
	for i, c := range cols {
		d.pdf.CellFormat(c.width, lineHeight, d.tr(values[i]), "1", 0, c.align, false, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	return nil
}

var dailyColumns = []column{
	{title: "Roll No", width: 25, align: "C"},
	{title: "Student Name", width: 120, align: "L"},
	{title: "Status", width: 35, align: "C"},
}

// DailyBatchPDF renders the day sheet of a batch.
func DailyBatchPDF(w io.Writer, center, batch string, date attendance.Day, rows []attendance.Row) error {
	d := newDocument(fmt.Sprintf("%s - %s", batch, date))
	d.heading(center)
	d.line("", 12, fmt.Sprintf("Batch: %s    Date: %s", batch, date))
	d.pdf.Ln(2)

	d.header(dailyColumns)
	var present int
	for _, r := range rows {
		if r.Status == attendance.Present {
			present++
		}
		d.row(dailyColumns, r.Roll, r.Name, string(r.Status))
	}

	d.pdf.Ln(4)
	d.line("B", 11, fmt.Sprintf("Total: %d    Present: %d    Absent: %d", len(rows), present, len(rows)-present))
	return d.output(w)
}

var riskColumns = []column{
	{title: "Roll No", width: 20, align: "C"},
	{title: "Name", width: 60, align: "L"},
	{title: "Risk Issue", width: 45, align: "L"},
	{title: "Recent Pattern", width: 40, align: "C"},
	{title: "Total", width: 15, align: "C"},
}

// RiskPDF renders the at-risk students of a batch.
func RiskPDF(w io.Writer, center, batch string, date attendance.Day, list []attendance.AtRisk, p attendance.Policy) error {
	d := newDocument(fmt.Sprintf("Absentee report %s - %s", batch, date))
	d.heading(center)
	d.line("B", 12, fmt.Sprintf("Absentee Risk Report - Batch %s", batch))
	d.line("", 10, fmt.Sprintf("Generated on %s", date))
	d.line("I", 9, fmt.Sprintf("Criteria: %d+ consecutive absences, or more than %d absences in the last %d days",
		p.StreakThreshold, p.WeeklyLimit, p.WeeklyWindow))
	d.pdf.Ln(2)

	if len(list) == 0 {
		d.line("", 11, "No students at risk.")
		return d.output(w)
	}

	d.header(riskColumns)
	for _, s := range list {
		d.row(riskColumns, s.Roll, s.Name, s.Issue(p), s.Pattern, fmt.Sprint(s.TotalAbsent))
	}
	return d.output(w)
}
