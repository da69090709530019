package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/subject"
)

var subjectColumns = []string{
	"s.id", "s.name", "s.code", "s.description", "s.credits",
	"s.created_by", `u.name AS creator_name`, "s.created_at", "s.updated_at",
}

type subjectRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	Description string    `db:"description"`
	Credits     int       `db:"credits"`
	CreatedBy   string    `db:"created_by"`
	CreatorName string    `db:"creator_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row subjectRow) unmarshal() subject.Subject {
	return subject.Subject{
		ID:          row.ID,
		Name:        row.Name,
		Code:        row.Code,
		Description: row.Description,
		Credits:     row.Credits,
		CreatedBy:   row.CreatedBy,
		CreatorName: row.CreatorName,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) selectSubjects() sq.SelectBuilder {
	return psql.Select(subjectColumns...).
		From("subject s").
		Join(userTable + ` u ON u.id = s.created_by`)
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.ID = uuid.NewString()
	stmt, args, err := psql.Insert("subject").
		Columns("id", "name", "code", "description", "credits", "created_by", "created_at", "updated_at").
		Values(sub.ID, sub.Name, sub.Code, sub.Description, sub.Credits, sub.CreatedBy, sub.CreatedAt, sub.UpdatedAt).
		ToSql()
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "building subject insert")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		switch {
		case uniqueViolation(err, "subject_name_key"):
			return subject.Subject{}, subject.ErrNameExists
		case uniqueViolation(err, "subject_code_key"):
			return subject.Subject{}, subject.ErrCodeExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter) (subject.Subject, error) {
	q := repo.selectSubjects()

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return subject.Subject{}, subject.ErrNotFound
		}
		q = q.Where(sq.Eq{"s.id": filter.ID})
	case filter.Name != "":
		q = q.Where(sq.Eq{"s.name": filter.Name})
	case filter.Code != "":
		q = q.Where(sq.Eq{"s.code": filter.Code})
	case filter.NameOrID != "":
		if _, err := uuid.Parse(filter.NameOrID); err == nil {
			q = q.Where(sq.Or{sq.Eq{"s.id": filter.NameOrID}, sq.Eq{"s.name": filter.NameOrID}})
		} else {
			q = q.Where(sq.Eq{"s.name": filter.NameOrID})
		}
	default:
		return subject.Subject{}, subject.ErrNotFound
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "building subject query")
	}

	var row subjectRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "finding subject")
	}
	return row.unmarshal(), nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, page core.Pagination) ([]subject.Subject, error) {
	stmt, args, err := repo.selectSubjects().
		OrderBy("s.name ASC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building subjects query")
	}

	var rows []subjectRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.unmarshal())
	}
	return subjects, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	stmt, args, err := psql.Update("subject").
		Set("name", sub.Name).
		Set("code", sub.Code).
		Set("description", sub.Description).
		Set("credits", sub.Credits).
		Set("updated_at", sub.UpdatedAt).
		Where(sq.Eq{"id": sub.ID}).
		ToSql()
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "building subject update")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		switch {
		case uniqueViolation(err, "subject_name_key"):
			return subject.Subject{}, subject.ErrNameExists
		case uniqueViolation(err, "subject_code_key"):
			return subject.Subject{}, subject.ErrCodeExists
		}
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return sub, nil
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	stmt, args, err := psql.Delete("subject").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building subjects delete")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return nil
}
