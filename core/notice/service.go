package notice

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("notice not found")
)

type (
	Repository interface {
		CreateNotice(ctx context.Context, n Notice) (Notice, error)
		GetNoticeByID(ctx context.Context, id string) (Notice, error)
		// QueryNotices returns notices ordered newest-updated-first, with
		// the issuer name expanded.
		QueryNotices(ctx context.Context, page core.Pagination) ([]Notice, error)
		UpdateNotice(ctx context.Context, n Notice) (Notice, error)
		DeleteNoticesByID(ctx context.Context, ids ...string) error
	}

	// Notifier receives fan-out events for created notices.
	Notifier interface {
		NoticeCreated(n Notice)
	}

	Service interface {
		Create(ctx context.Context, nn NewNotice, issuer user.User) (Notice, error)
		Query(ctx context.Context, page core.Pagination) ([]Notice, error)
		GetByID(ctx context.Context, id string) (Notice, error)
		Update(ctx context.Context, orig Notice, un UpdateNotice) (Notice, error)
		// Delete removes the notice; an attached file is destroyed with it
		// (row and remote object).
		Delete(ctx context.Context, n Notice) error
	}

	service struct {
		repo     Repository
		files    file.Service
		notifier Notifier
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, files file.Service, notifier Notifier) Service {
	return &service{repo: repo, files: files, notifier: notifier}
}

// resolveFile checks that an attached file reference exists before any write.
func (svc *service) resolveFile(ctx context.Context, fileID string) (file.File, error) {
	return svc.files.GetByID(ctx, fileID)
}

func (svc *service) Create(ctx context.Context, nn NewNotice, issuer user.User) (Notice, error) {
	var fileURL string
	if nn.FileID != "" {
		f, err := svc.resolveFile(ctx, nn.FileID)
		if err != nil {
			return Notice{}, err
		}
		fileURL = f.URL
	}

	now := time.Now().UTC()
	n := Notice{
		Title:          nn.Title,
		Content:        nn.Content,
		FileID:         nn.FileID,
		FileURL:        fileURL,
		IssuedBy:       issuer.ID,
		IssuerName:     issuer.Name,
		Priority:       nn.Priority,
		Category:       nn.Category,
		TargetAudience: nn.TargetAudience,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	n, err := svc.repo.CreateNotice(ctx, n)
	if err != nil {
		return Notice{}, err
	}
	svc.notifier.NoticeCreated(n)
	return n, nil
}

func (svc *service) Query(ctx context.Context, page core.Pagination) ([]Notice, error) {
	return svc.repo.QueryNotices(ctx, page)
}

func (svc *service) GetByID(ctx context.Context, id string) (Notice, error) {
	return svc.repo.GetNoticeByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, orig Notice, un UpdateNotice) (Notice, error) {
	n := orig
	if un.Title != "" {
		n.Title = un.Title
	}
	if un.Content != "" {
		n.Content = un.Content
	}
	if un.FileID != "" {
		f, err := svc.resolveFile(ctx, un.FileID)
		if err != nil {
			return Notice{}, err
		}
		n.FileID = f.ID
		n.FileURL = f.URL
	}
	if un.Priority != "" {
		n.Priority = un.Priority
	}
	if un.Category != "" {
		n.Category = un.Category
	}
	if len(un.TargetAudience) > 0 {
		n.TargetAudience = un.TargetAudience
	}
	n.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNotice(ctx, n)
}

func (svc *service) Delete(ctx context.Context, n Notice) error {
	if n.FileID != "" {
		f, err := svc.files.GetByID(ctx, n.FileID)
		if err == nil {
			if err = svc.files.Delete(ctx, f); err != nil {
				return err
			}
		} else if err != file.ErrNotFound {
			return err
		}
	}
	return svc.repo.DeleteNoticesByID(ctx, n.ID)
}
