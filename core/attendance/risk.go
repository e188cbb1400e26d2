package attendance

import (
	"fmt"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

// HistoryWindow is the number of recent statuses a History holds.
const HistoryWindow = 10

// PatternLength is the number of statuses shown in a risk report pattern.
const PatternLength = 7

// History holds a student's most recent statuses, newest first.
type History []Status

// Capped returns at most HistoryWindow entries.
func (h History) Capped() History {
	if len(h) > HistoryWindow {
		return h[:HistoryWindow]
	}
	return h
}

// Streak counts Absent entries from the newest one up to the first Present.
func (h History) Streak() int {
	var n int
	for _, st := range h {
		if st != Absent {
			break
		}
		n++
	}
	return n
}

// Absences counts Absent entries among the first n; a shorter history is not padded.
func (h History) Absences(n int) int {
	if n > len(h) {
		n = len(h)
	}
	var cnt int
	for _, st := range h[:n] {
		if st == Absent {
			cnt++
		}
	}
	return cnt
}

// Pattern renders the first n statuses as A/P joined by "-".
func (h History) Pattern(n int) string {
	if n > len(h) {
		n = len(h)
	}
	parts := make([]string, 0, n)
	for _, st := range h[:n] {
		parts = append(parts, st.Short())
	}
	return strings.Join(parts, "-")
}

type Risk string

const (
	RiskNone        Risk = "NONE"
	RiskConsecutive Risk = "CONSECUTIVE"
	RiskFrequent    Risk = "FREQUENT"
	RiskCritical    Risk = "CRITICAL"
)

// Policy holds the risk thresholds: a streak of at least StreakThreshold
// absences flags a consecutive risk, more than WeeklyLimit absences within the
// WeeklyWindow newest days flags a frequent risk. Both flags make it critical.
type Policy struct {
	StreakThreshold int `json:"streak_threshold"`
	WeeklyWindow    int `json:"weekly_window"`
	WeeklyLimit     int `json:"weekly_limit"`
}

var DefaultPolicy = Policy{StreakThreshold: 3, WeeklyWindow: 6, WeeklyLimit: 2}

func (p Policy) Validate() error {
	err := vala.BeginValidation().Validate(
		vala.GreaterThan(p.StreakThreshold, 0, "streak_threshold"),
		vala.GreaterThan(p.WeeklyWindow, 0, "weekly_window"),
		vala.GreaterThan(p.WeeklyLimit, -1, "weekly_limit"),
		func() (bool, string) {
			return p.WeeklyWindow <= HistoryWindow, fmt.Sprintf("weekly_window cannot exceed %d", HistoryWindow)
		},
		func() (bool, string) {
			return p.StreakThreshold <= HistoryWindow, fmt.Sprintf("streak_threshold cannot exceed %d", HistoryWindow)
		},
	).Check()
	return errors.Wrap(err, "invalid risk policy")
}

// PolicyFromConfig builds and validates the configured Policy.
func PolicyFromConfig(conf core.RiskConfig) (Policy, error) {
	p := Policy{
		StreakThreshold: conf.StreakThreshold,
		WeeklyWindow:    conf.WeeklyWindow,
		WeeklyLimit:     conf.WeeklyLimit,
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

type Classification struct {
	ConsecutiveDays int  `json:"consecutive_days"`
	WeeklyCount     int  `json:"weekly_count"`
	Risk            Risk `json:"risk_type"`
}

// Classify derives the streak, the weekly count and the risk of a history.
func Classify(h History, p Policy) Classification {
	h = h.Capped()
	c := Classification{
		ConsecutiveDays: h.Streak(),
		WeeklyCount:     h.Absences(p.WeeklyWindow),
	}

	consecutive := c.ConsecutiveDays >= p.StreakThreshold
	frequent := c.WeeklyCount > p.WeeklyLimit
	switch {
	case consecutive && frequent:
		c.Risk = RiskCritical
	case consecutive:
		c.Risk = RiskConsecutive
	case frequent:
		c.Risk = RiskFrequent
	default:
		c.Risk = RiskNone
	}
	return c
}

// AbsenteeStats is what storage knows of a student's absences.
type AbsenteeStats struct {
	Student     student.Student
	TotalAbsent int
	Recent      History
}

type AtRisk struct {
	student.Student
	Classification
	Roll        string  `json:"roll"`
	TotalAbsent int     `json:"total_absent"`
	Recent      History `json:"recent"`
	Pattern     string  `json:"pattern"`
}

// Issue is the one line description printed in risk reports.
func (a AtRisk) Issue(p Policy) string {
	switch a.Risk {
	case RiskConsecutive:
		return fmt.Sprintf("Streak: %d Days", a.ConsecutiveDays)
	case RiskFrequent:
		return fmt.Sprintf("Frequent: %d/%d Days", a.WeeklyCount, p.WeeklyWindow)
	case RiskCritical:
		return fmt.Sprintf("CRITICAL: %d Day Streak", a.ConsecutiveDays)
	}
	return ""
}

// AtRiskStudents classifies every student and keeps those with a risk, grouped
// by batch (Batches order, unknown batches last) and in roster order within a batch.
func AtRiskStudents(stats []AbsenteeStats, p Policy) []AtRisk {
	byBatch := make(map[string][]AbsenteeStats)
	for _, st := range stats {
		byBatch[st.Student.Batch] = append(byBatch[st.Student.Batch], st)
	}

	out := make([]AtRisk, 0)
	for _, batch := range batchOrder(byBatch) {
		batchStats := byBatch[batch]
		roster := make([]student.Student, 0, len(batchStats))
		statsByID := make(map[string]AbsenteeStats, len(batchStats))
		for _, st := range batchStats {
			roster = append(roster, st.Student)
			statsByID[st.Student.ID] = st
		}
		rolls := student.DisplayRolls(roster)

		for _, s := range student.SortRoster(roster) {
			st := statsByID[s.ID]
			c := Classify(st.Recent, p)
			if c.Risk == RiskNone {
				continue
			}
			recent := st.Recent.Capped()
			out = append(out, AtRisk{
				Student:        s,
				Classification: c,
				Roll:           rolls[s.ID],
				TotalAbsent:    st.TotalAbsent,
				Recent:         recent,
				Pattern:        recent.Pattern(PatternLength),
			})
		}
	}
	return out
}

type BatchRisk struct {
	Batch    string   `json:"batch"`
	Count    int      `json:"count"`
	Students []AtRisk `json:"students"`
}

// GroupByBatch groups risk cases by batch; every known batch is present, possibly empty.
func GroupByBatch(list []AtRisk) []BatchRisk {
	byBatch := make(map[string][]AtRisk)
	for _, s := range list {
		byBatch[s.Batch] = append(byBatch[s.Batch], s)
	}
	for _, b := range student.Batches {
		if _, ok := byBatch[b]; !ok {
			byBatch[b] = nil
		}
	}

	groups := make([]BatchRisk, 0, len(byBatch))
	for _, b := range batchOrder(byBatch) {
		students := byBatch[b]
		if students == nil {
			students = []AtRisk{}
		}
		groups = append(groups, BatchRisk{Batch: b, Count: len(students), Students: students})
	}
	return groups
}
