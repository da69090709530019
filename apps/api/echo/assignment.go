package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
)

type assignmentApi struct {
	svc     assignment.Service
	userSvc user.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc assignment.Service, userSvc user.Service) {
	api := assignmentApi{svc: svc, userSvc: userSvc}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)

	// management endpoints
	mg := ag.Group("", capabilityMiddleware(user.CapManageAssignments))
	mg.POST("", api.create)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asg, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "subject not found")
		}
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, newResponse("Assignment created successfully", asg))
}

func (api *assignmentApi) query(ctx echo.Context) error {
	assignments, err := api.svc.Query(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, newResponse("Assignments retrieved successfully", assignments))
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	asg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, newResponse("Assignment retrieved successfully", asg))
}

func (api *assignmentApi) update(ctx echo.Context) error {
	asg, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	asg, err = api.svc.Update(ctx.Request().Context(), asg, data)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "subject not found")
		}
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, newResponse("Assignment updated successfully", asg))
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	asg, err := api.getAssignment(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), asg.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getAssignment fetches the assignment under mutation. Any teacher or admin
// may mutate any assignment; the capability middleware already gates the role.
func (api *assignmentApi) getAssignment(ctx echo.Context) (assignment.Assignment, error) {
	asg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return assignment.Assignment{}, errHttpNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment by ID")
	}
	return asg, nil
}
