package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wingscc/rollcall/core"
)

// resetPhrase must be typed to confirm a full reset.
const resetPhrase = "RESET"

type (
	ConfirmRequest struct {
		Password string `json:"password" validate:"required"`
	}

	ResetRequest struct {
		Password string `json:"password" validate:"required"`
		Confirm  string `json:"confirm" validate:"required"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

type adminApi struct {
	deps *ServerDeps
}

func registerAdminAPI(g *echo.Group, deps *ServerDeps) {
	api := adminApi{deps: deps}

	ag := g.Group("/admin")
	ag.POST("/clear-attendance", api.clearAttendance)
	ag.POST("/reset", api.reset)
}

// confirmPassword checks the password of the account making the request.
func (api *adminApi) confirmPassword(ctx echo.Context, pwd string) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	return api.deps.UserSvc.ConfirmPassword(ctx.Request().Context(), usr.ID, pwd)
}

func (api *adminApi) clearAttendance(ctx echo.Context) error {
	var data ConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}
	if err := api.confirmPassword(ctx, data.Password); err != nil {
		return err
	}

	if err := api.deps.AttendanceSvc.ClearAll(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing attendance")
	}
	api.deps.Logger.Warn("attendance history cleared", ctx.Get(contextUserKey))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All attendance records have been deleted."})
}

func (api *adminApi) reset(ctx echo.Context) error {
	var data ResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}
	if data.Confirm != resetPhrase {
		return core.NewFieldError("confirm", "type "+resetPhrase+" to confirm")
	}
	if err := api.confirmPassword(ctx, data.Password); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	if err := api.deps.AttendanceSvc.ClearAll(rctx); err != nil {
		return errors.Wrap(err, "clearing attendance")
	}
	if err := api.deps.StudentSvc.DeleteAll(rctx); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	api.deps.Logger.Warn("full reset", ctx.Get(contextUserKey))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All students and attendance records have been deleted."})
}
