package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/user"
)

type fileApi struct {
	svc     file.Service
	userSvc user.Service
}

func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc file.Service, userSvc user.Service) {
	api := fileApi{svc: svc, userSvc: userSvc}

	fg := g.Group("/files", jwt)
	fg.POST("", api.create)
	fg.GET("", api.query)
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update)
	fg.DELETE("/:id", api.destroy)
}

// bindUpload reads the multipart form into a file.Upload.
func bindUpload(ctx echo.Context) (file.Upload, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return file.Upload{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	if fh.Size > file.MaxSize {
		return file.Upload{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file too large"})
	}

	src, err := fh.Open()
	if err != nil {
		return file.Upload{}, errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(io.LimitReader(src, file.MaxSize+1))
	if err != nil {
		return file.Upload{}, errors.Wrap(err, "reading uploaded file")
	}

	up := file.Upload{
		Type:        file.Type(ctx.FormValue("type")),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}
	return up, up.Validate()
}

func (api *fileApi) create(ctx echo.Context) error {
	up, err := bindUpload(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	f, err := api.svc.Create(ctx.Request().Context(), up, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	return ctx.JSON(http.StatusCreated, newResponse("File uploaded successfully", f))
}

// query lists the caller's own files.
func (api *fileApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	files, err := api.svc.QueryByUser(ctx.Request().Context(), ctxUsr.ID, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying files")
	}
	if files == nil {
		files = []file.File{}
	}
	return ctx.JSON(http.StatusOK, newResponse("Files retrieved successfully", files))
}

func (api *fileApi) retrieve(ctx echo.Context) error {
	f, err := api.getOwnedFile(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newResponse("File retrieved successfully", f))
}

func (api *fileApi) update(ctx echo.Context) error {
	f, err := api.getOwnedFile(ctx)
	if err != nil {
		return err
	}

	up, err := bindUpload(ctx)
	if err != nil {
		return err
	}

	f, err = api.svc.Replace(ctx.Request().Context(), f, up)
	if err != nil {
		return errors.Wrap(err, "replacing file")
	}
	return ctx.JSON(http.StatusOK, newResponse("File updated successfully", f))
}

func (api *fileApi) destroy(ctx echo.Context) error {
	f, err := api.getOwnedFile(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), f); err != nil {
		return errors.Wrap(err, "deleting file")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedFile fetches the file and checks that the caller owns it or is
// an admin.
func (api *fileApi) getOwnedFile(ctx echo.Context) (file.File, error) {
	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == file.ErrNotFound {
			return file.File{}, errHttpNotFound
		}
		return file.File{}, errors.Wrap(err, "finding file by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return file.File{}, errors.Wrap(err, "getting context user")
	}
	if f.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return file.File{}, errHttpNotFound
	}
	return f, nil
}
