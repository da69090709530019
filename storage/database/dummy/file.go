package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/file"
)

type fileRepository struct {
	db *fileTable
}

var _ file.Repository = (*fileRepository)(nil) // interface compliance check

func NewFileRepository(db *DB) file.Repository {
	return &fileRepository{db: db.file}
}

func (repo *fileRepository) CreateFile(ctx context.Context, f file.File) (file.File, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = uuid.NewString()
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *fileRepository) GetFileByID(ctx context.Context, id string) (file.File, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[id]; ok {
		return *f, nil
	}
	return file.File{}, file.ErrNotFound
}

func (repo *fileRepository) QueryFilesByUser(ctx context.Context, userID string, page core.Pagination) ([]file.File, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	files := make([]file.File, 0, len(repo.db.table))
	for _, f := range repo.db.table {
		if f.UserID == userID {
			files = append(files, *f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].UpdatedAt.After(files[j].UpdatedAt) })
	return paginate(files, page), nil
}

func (repo *fileRepository) UpdateFile(ctx context.Context, f file.File) (file.File, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[f.ID]; !ok {
		return file.File{}, file.ErrNotFound
	}
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *fileRepository) DeleteFilesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
