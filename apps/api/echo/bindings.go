package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/attendance"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindDay reads a dd-mm-yyyy query param, defaulting to today when absent.
func bindDay(ctx echo.Context, param string) (attendance.Day, error) {
	val := ctx.QueryParam(param)
	if val == "" {
		return attendance.Today(), nil
	}
	day, err := attendance.ParseDay(val)
	if err != nil {
		return attendance.Day{}, core.NewFieldError(param, "date must be in dd-mm-yyyy format")
	}
	return day, nil
}

// bindBatch reads an upper-cased batch from a query or path param.
func bindBatch(ctx echo.Context, param string) string {
	val := ctx.Param(param)
	if val == "" {
		val = ctx.QueryParam(param)
	}
	return strings.ToUpper(core.CleanString(val))
}
