package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/report"
)

// defaultReportDays is the range of a student report when from is not given.
const defaultReportDays = 30

type reportApi struct {
	deps *ServerDeps
	svc  *attendance.Service
}

func registerReportAPI(g *echo.Group, deps *ServerDeps) {
	api := reportApi{deps: deps, svc: deps.AttendanceSvc}

	rg := g.Group("/reports")
	rg.GET("/students/:id", api.student)
	rg.GET("/batches/:batch/daily.pdf", api.dailyPDF)
}

func (api *reportApi) student(ctx echo.Context) error {
	to, err := bindDay(ctx, "to")
	if err != nil {
		return err
	}
	from := to.AddDays(-defaultReportDays)
	if ctx.QueryParam("from") != "" {
		if from, err = bindDay(ctx, "from"); err != nil {
			return err
		}
	}

	rep, err := api.svc.StudentReport(ctx.Request().Context(), ctx.Param("id"), from, to)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) dailyPDF(ctx echo.Context) error {
	date, err := bindDay(ctx, "date")
	if err != nil {
		return err
	}
	batch := bindBatch(ctx, "batch")
	rows, err := api.svc.Sheet(ctx.Request().Context(), batch, date)
	if err != nil {
		return errors.Wrap(err, "fetching day sheet")
	}

	buf := new(bytes.Buffer)
	if err = report.DailyBatchPDF(buf, api.deps.Conf.CenterName, batch, date, rows); err != nil {
		return err
	}
	return sendPDF(ctx, batch+"_"+date.String()+".pdf", buf)
}
