package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
	"github.com/wingscc/rollcall/core/student"
)

const contextStudentKey = "object"

var errStudentNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	deps *ServerDeps
	svc  *student.Service
}

func registerStudentAPI(g *echo.Group, deps *ServerDeps) {
	api := studentApi{deps: deps, svc: deps.StudentSvc}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/recent", api.recent)
	sg.GET("/suggest", api.suggest)
	sg.POST("/assign-rolls", api.assignRolls)
	sg.GET("/export.csv", api.export)
	sg.GET("/template.csv", api.template)
	sg.POST("/import", api.importCSV)

	// detail endpoints
	dg := sg.Group("/:id", studentObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func studentObjectMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding student by ID")
			}
			ctx.Set(contextStudentKey, s)
			return next(ctx)
		}
	}
}

func contextStudent(ctx echo.Context) (student.Student, error) {
	s, ok := ctx.Get(contextStudentKey).(student.Student)
	if !ok {
		return student.Student{}, errors.Wrap(errStudentNotFoundInCtx, "retrieving object from context")
	}
	return s, nil
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) recent(ctx echo.Context) error {
	n, _ := strconv.Atoi(ctx.QueryParam("n"))
	students, err := api.svc.Recent(ctx.Request().Context(), n)
	if err != nil {
		return errors.Wrap(err, "querying recent students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) suggest(ctx echo.Context) error {
	batch := bindBatch(ctx, "batch")
	if !student.IsBatch(batch) {
		return core.NewFieldError("batch", "unknown batch")
	}
	list, err := api.svc.Suggest(ctx.Request().Context(), batch, ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "suggesting students")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *studentApi) assignRolls(ctx echo.Context) error {
	students, err := api.svc.AssignRollNumbers(ctx.Request().Context(), bindBatch(ctx, "batch"))
	if err != nil {
		return errors.Wrap(err, "assigning roll numbers")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) export(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), &student.QueryFilter{Batch: bindBatch(ctx, "batch")}, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	setAttachment(ctx, "text/csv", "students.csv")
	return errors.Wrap(student.WriteCSV(ctx.Response(), student.SortRoster(students)), "writing csv")
}

func (api *studentApi) template(ctx echo.Context) error {
	setAttachment(ctx, "text/csv", "students_template.csv")
	return errors.Wrap(student.WriteTemplate(ctx.Response()), "writing csv template")
}

func (api *studentApi) importCSV(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewFieldError("file", "a csv file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	res, err := api.svc.Import(ctx.Request().Context(), f, api.deps.Validate)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(s, api.deps.Validate); err != nil {
		return err
	}

	s, err = api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func setAttachment(ctx echo.Context, contentType, filename string) {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, contentType)
	h.Set(echo.HeaderContentDisposition, "attachment; filename="+strconv.Quote(filename))
	ctx.Response().WriteHeader(http.StatusOK)
}
