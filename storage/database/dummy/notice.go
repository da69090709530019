package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notice"
)

type noticeRepository struct {
	db *noticeTable
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *DB) notice.Repository {
	return &noticeRepository{db: db.notice}
}

func (repo *noticeRepository) query() []notice.Notice {
	notices := make([]notice.Notice, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		notices = append(notices, *n)
	}
	sort.Slice(notices, func(i, j int) bool { return notices[i].UpdatedAt.After(notices[j].UpdatedAt) })
	return notices
}

func (repo *noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = uuid.NewString()
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notice.Notice{}, notice.ErrNotFound
}

func (repo *noticeRepository) QueryNotices(ctx context.Context, page core.Pagination) ([]notice.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return paginate(repo.query(), page), nil
}

func (repo *noticeRepository) UpdateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[n.ID]; !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) DeleteNoticesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
