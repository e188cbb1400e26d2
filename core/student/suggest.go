package student

import (
	"context"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wingscc/rollcall/core"
)

// fuzzy matches need at least this similarity ratio
var suggestMinRatio = .6

type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Suggest returns the batch students whose name contains q (case-insensitive), sorted by name.
// When nothing contains q, students with a name similar to q are suggested instead.
func (svc *Service) Suggest(ctx context.Context, batch, q string) ([]Suggestion, error) {
	students, err := svc.repo.QueryStudents(ctx, &QueryFilter{Batch: batch}, nil)
	if err != nil {
		return nil, err
	}
	return suggest(students, q), nil
}

func suggest(students []Student, q string) []Suggestion {
	q = core.CleanString(q)
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(students, func(i, j int) bool {
		return col.CompareString(students[i].Name, students[j].Name) < 0
	})

	out := make([]Suggestion, 0)
	for _, s := range students {
		if core.ContainsFold(s.Name, q) {
			out = append(out, Suggestion{ID: s.ID, Name: s.Name})
		}
	}
	if len(out) > 0 || q == "" {
		return out
	}

	lq := strings.ToLower(q)
	for _, s := range students {
		if similarity(lq, strings.ToLower(s.Name)) >= suggestMinRatio {
			out = append(out, Suggestion{ID: s.ID, Name: s.Name})
		}
	}
	return out
}

// similarity is the best ratio between q and the whole name or any single word of it.
func similarity(q, name string) float64 {
	ratio := func(a, b string) float64 {
		return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
	}
	best := ratio(q, name)
	for _, word := range strings.Fields(name) {
		if r := ratio(q, word); r > best {
			best = r
		}
	}
	return best
}
