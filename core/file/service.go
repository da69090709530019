package file

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("file not found")
)

type (
	// UploadResult describes an object stored in the remote file store.
	UploadResult struct {
		URL      string
		PublicID string
	}

	// Storage is the external object store behind file attachments.
	Storage interface {
		Upload(ctx context.Context, content io.Reader, filename string) (UploadResult, error)
		Delete(ctx context.Context, publicID string) error
	}

	Repository interface {
		CreateFile(ctx context.Context, f File) (File, error)
		GetFileByID(ctx context.Context, id string) (File, error)
		QueryFilesByUser(ctx context.Context, userID string, page core.Pagination) ([]File, error)
		UpdateFile(ctx context.Context, f File) (File, error)
		DeleteFilesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, up Upload, owner user.User) (File, error)
		QueryByUser(ctx context.Context, userID string, page core.Pagination) ([]File, error)
		GetByID(ctx context.Context, id string) (File, error)
		// Replace destroys the remote object of an existing attachment and
		// uploads new content in its place.
		Replace(ctx context.Context, orig File, up Upload) (File, error)
		// Delete removes the remote object first; the row is kept when the
		// remote deletion fails so the reference is never silently dropped.
		Delete(ctx context.Context, f File) error
	}

	service struct {
		repo    Repository
		storage Storage
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, storage Storage) Service {
	return &service{repo: repo, storage: storage}
}

func (svc *service) Create(ctx context.Context, up Upload, owner user.User) (File, error) {
	res, err := svc.storage.Upload(ctx, bytes.NewReader(up.Content), up.Filename)
	if err != nil {
		return File{}, pkgerrors.Wrap(err, "uploading file")
	}

	now := time.Now().UTC()
	f := File{
		URL:       res.URL,
		PublicID:  res.PublicID,
		Type:      up.Type,
		MetaType:  up.MetaType(),
		UserID:    owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateFile(ctx, f)
}

func (svc *service) QueryByUser(ctx context.Context, userID string, page core.Pagination) ([]File, error) {
	return svc.repo.QueryFilesByUser(ctx, userID, page)
}

func (svc *service) GetByID(ctx context.Context, id string) (File, error) {
	return svc.repo.GetFileByID(ctx, id)
}

func (svc *service) Replace(ctx context.Context, orig File, up Upload) (File, error) {
	if err := svc.storage.Delete(ctx, orig.PublicID); err != nil {
		return File{}, pkgerrors.Wrap(err, "deleting old remote object")
	}
	res, err := svc.storage.Upload(ctx, bytes.NewReader(up.Content), up.Filename)
	if err != nil {
		return File{}, pkgerrors.Wrap(err, "uploading file")
	}

	f := orig
	f.URL = res.URL
	f.PublicID = res.PublicID
	f.Type = up.Type
	f.MetaType = up.MetaType()
	f.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateFile(ctx, f)
}

func (svc *service) Delete(ctx context.Context, f File) error {
	if err := svc.storage.Delete(ctx, f.PublicID); err != nil {
		return pkgerrors.Wrap(err, "deleting remote object")
	}
	return svc.repo.DeleteFilesByID(ctx, f.ID)
}
