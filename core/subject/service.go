package subject

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists")
	ErrCodeExists = errors.New("a subject with this code already exists")
)

// GetFilter selects a single Subject. NameOrID matches on either the
// primary key or the unique name; it is the resolver used by assignments.
type GetFilter struct {
	ID       string
	Name     string
	Code     string
	NameOrID string
}

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubject(ctx context.Context, filter GetFilter) (Subject, error)
		QuerySubjects(ctx context.Context, page core.Pagination) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, ns NewSubject, creator user.User) (Subject, error)
		Query(ctx context.Context, page core.Pagination) ([]Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
		// Resolve finds a Subject by name or id; ErrNotFound if unresolved.
		Resolve(ctx context.Context, ref string) (Subject, error)
		Update(ctx context.Context, orig Subject, us UpdateSubject) (Subject, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSubject, creator user.User) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Description: ns.Description,
		Credits:     ns.Credits,
		CreatedBy:   creator.ID,
		CreatorName: creator.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *service) Query(ctx context.Context, page core.Pagination) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, page)
}

func (svc *service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, GetFilter{ID: id})
}

func (svc *service) Resolve(ctx context.Context, ref string) (Subject, error) {
	return svc.repo.GetSubject(ctx, GetFilter{NameOrID: core.CleanString(ref)})
}

func (svc *service) Update(ctx context.Context, orig Subject, us UpdateSubject) (Subject, error) {
	sub := orig
	if us.Name != "" {
		sub.Name = us.Name
	}
	if us.Code != "" {
		sub.Code = us.Code
	}
	if us.Description != "" {
		sub.Description = us.Description
	}
	if us.Credits != 0 {
		sub.Credits = us.Credits
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}
