package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) query() []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.table {
		if s.Name == sub.Name {
			return subject.Subject{}, subject.ErrNameExists
		}
		if s.Code == sub.Code {
			return subject.Subject{}, subject.ErrCodeExists
		}
	}

	sub.ID = uuid.NewString()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if sub, ok := repo.db.table[filter.ID]; ok {
			return *sub, nil
		}
		return subject.Subject{}, subject.ErrNotFound
	}
	for _, sub := range repo.query() {
		switch {
		case filter.Name != "" && sub.Name == filter.Name:
			return sub, nil
		case filter.Code != "" && sub.Code == filter.Code:
			return sub, nil
		case filter.NameOrID != "" && (sub.ID == filter.NameOrID || sub.Name == filter.NameOrID):
			return sub, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, page core.Pagination) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return paginate(repo.query(), page), nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sub.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	for _, s := range repo.db.table {
		if s.ID == sub.ID {
			continue
		}
		if s.Name == sub.Name {
			return subject.Subject{}, subject.ErrNameExists
		}
		if s.Code == sub.Code {
			return subject.Subject{}, subject.ErrCodeExists
		}
	}
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
