package student

import (
	"sort"
	"strconv"

	"github.com/volatiletech/null/v8"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders students of one batch: Female before Male (any other value
// orders as Male), then by name using a case-insensitive collation.
// A Comparator holds collation buffers and must not be shared between goroutines.
type Comparator struct {
	col *collate.Collator
}

func NewComparator() *Comparator {
	return &Comparator{col: collate.New(language.English, collate.IgnoreCase)}
}

func sexRank(sex Sex) int {
	if sex == Female {
		return 0
	}
	return 1
}

// Compare returns -1 when a orders before b, 1 when after and 0 on a tie.
func (c *Comparator) Compare(a, b Student) int {
	if ra, rb := sexRank(a.Sex), sexRank(b.Sex); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return c.col.CompareString(a.Name, b.Name)
}

func (c *Comparator) Less(a, b Student) bool {
	return c.Compare(a, b) < 0
}

// SortRoster returns a sorted copy of students. Ties keep their input order.
func SortRoster(students []Student) []Student {
	sorted := make([]Student, len(students))
	copy(sorted, students)
	cmp := NewComparator()
	sort.SliceStable(sorted, func(i, j int) bool { return cmp.Less(sorted[i], sorted[j]) })
	return sorted
}

// SequentialRoll is the roll number derived from a 0-based roster position.
func SequentialRoll(pos int) string {
	return strconv.Itoa(pos + 1)
}

// AssignRolls returns the roster in canonical order with every roll number
// replaced by its sequential position.
func AssignRolls(students []Student) []Student {
	sorted := SortRoster(students)
	for i := range sorted {
		sorted[i].RollNumber = null.StringFrom(SequentialRoll(i))
	}
	return sorted
}

// DisplayRolls maps student IDs to the roll number to display: the stored one
// when set, else the position in the canonical order of the full roster.
func DisplayRolls(roster []Student) map[string]string {
	sorted := SortRoster(roster)
	rolls := make(map[string]string, len(sorted))
	for i, s := range sorted {
		if s.HasRoll() {
			rolls[s.ID] = s.RollNumber.String
		} else {
			rolls[s.ID] = SequentialRoll(i)
		}
	}
	return rolls
}
