package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/user"
)

type noticeApi struct {
	svc     notice.Service
	userSvc user.Service
}

func registerNoticeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc notice.Service, userSvc user.Service) {
	api := noticeApi{svc: svc, userSvc: userSvc}

	ng := g.Group("/notices", jwt)
	ng.GET("", api.query)
	ng.GET("/:id", api.retrieve)

	// management endpoints
	mg := ng.Group("", capabilityMiddleware(user.CapManageNotices))
	mg.POST("", api.create)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

func (api *noticeApi) create(ctx echo.Context) error {
	var data notice.NewNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotice")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		if errors.Cause(err) == file.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "attached file not found")
		}
		return errors.Wrap(err, "creating notice")
	}
	return ctx.JSON(http.StatusCreated, newResponse("Notice created successfully", n))
}

func (api *noticeApi) query(ctx echo.Context) error {
	notices, err := api.svc.Query(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notices")
	}
	if notices == nil {
		notices = []notice.Notice{}
	}
	return ctx.JSON(http.StatusOK, newResponse("Notices retrieved successfully", notices))
}

func (api *noticeApi) retrieve(ctx echo.Context) error {
	n, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding notice by ID")
	}
	return ctx.JSON(http.StatusOK, newResponse("Notice retrieved successfully", n))
}

func (api *noticeApi) update(ctx echo.Context) error {
	n, err := api.getOwnedNotice(ctx)
	if err != nil {
		return err
	}

	var data notice.UpdateNotice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNotice")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	n, err = api.svc.Update(ctx.Request().Context(), n, data)
	if err != nil {
		if errors.Cause(err) == file.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "attached file not found")
		}
		return errors.Wrap(err, "updating notice")
	}
	return ctx.JSON(http.StatusOK, newResponse("Notice updated successfully", n))
}

func (api *noticeApi) destroy(ctx echo.Context) error {
	n, err := api.getOwnedNotice(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), n); err != nil {
		return errors.Wrap(err, "deleting notice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedNotice fetches the notice and checks that the caller is its
// issuer or an admin.
func (api *noticeApi) getOwnedNotice(ctx echo.Context) (notice.Notice, error) {
	n, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return notice.Notice{}, errHttpNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "finding notice by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "getting context user")
	}
	if n.IssuedBy != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return notice.Notice{}, errHttpForbidden
	}
	return n, nil
}
