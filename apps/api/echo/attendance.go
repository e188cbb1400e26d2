package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core/attendance"
	"github.com/wingscc/rollcall/core/report"
)

type attendanceApi struct {
	deps *ServerDeps
	svc  *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, deps *ServerDeps) {
	api := attendanceApi{deps: deps, svc: deps.AttendanceSvc}

	g.GET("/attendance", api.sheet)
	g.PUT("/attendance", api.save)
	g.GET("/dashboard", api.dashboard)
	g.GET("/absentees", api.absentees)
	g.GET("/absentees/:batch/report.pdf", api.absenteesPDF)
}

type AbsenteesResponse struct {
	Policy  attendance.Policy      `json:"policy"`
	Total   int                    `json:"total"`
	Batches []attendance.BatchRisk `json:"batches"`
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	date, err := bindDay(ctx, "date")
	if err != nil {
		return err
	}
	rows, err := api.svc.Sheet(ctx.Request().Context(), bindBatch(ctx, "batch"), date)
	if err != nil {
		return errors.Wrap(err, "fetching day sheet")
	}
	return ctx.JSON(http.StatusOK, attendance.Filter(rows, ctx.QueryParam("q")))
}

func (api *attendanceApi) save(ctx echo.Context) error {
	date, err := bindDay(ctx, "date")
	if err != nil {
		return err
	}
	var data attendance.SaveRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveRequest")
	}
	if err = api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sum, err := api.svc.Save(ctx.Request().Context(), bindBatch(ctx, "batch"), date, data.Entries)
	if err != nil {
		return errors.Wrap(err, "saving attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) dashboard(ctx echo.Context) error {
	date, err := bindDay(ctx, "date")
	if err != nil {
		return err
	}
	d, err := api.svc.Dashboard(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *attendanceApi) absentees(ctx echo.Context) error {
	batch := bindBatch(ctx, "batch")
	list, err := api.svc.Absentees(ctx.Request().Context(), batch)
	if err != nil {
		return errors.Wrap(err, "listing absentees")
	}

	groups := attendance.GroupByBatch(list)
	if batch != "" {
		for _, g := range groups {
			if g.Batch == batch {
				groups = []attendance.BatchRisk{g}
				break
			}
		}
	}
	return ctx.JSON(http.StatusOK, AbsenteesResponse{
		Policy:  api.svc.Policy(),
		Total:   len(list),
		Batches: groups,
	})
}

func (api *attendanceApi) absenteesPDF(ctx echo.Context) error {
	batch := bindBatch(ctx, "batch")
	list, err := api.svc.Absentees(ctx.Request().Context(), batch)
	if err != nil {
		return errors.Wrap(err, "listing absentees")
	}

	buf := new(bytes.Buffer)
	if err = report.RiskPDF(buf, api.deps.Conf.CenterName, batch, attendance.Today(), list, api.svc.Policy()); err != nil {
		return err
	}
	return sendPDF(ctx, "absentees_"+batch+".pdf", buf)
}

func sendPDF(ctx echo.Context, filename string, buf *bytes.Buffer) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return ctx.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
