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
	"github.com/trezcool/darasa/core/file"
)

var fileColumns = []string{"id", "url", "public_id", "type", "meta_type", "user_id", "created_at", "updated_at"}

type fileRow struct {
	ID        string    `db:"id"`
	URL       string    `db:"url"`
	PublicID  string    `db:"public_id"`
	Type      string    `db:"type"`
	MetaType  string    `db:"meta_type"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row fileRow) unmarshal() file.File {
	return file.File{
		ID:        row.ID,
		URL:       row.URL,
		PublicID:  row.PublicID,
		Type:      file.Type(row.Type),
		MetaType:  row.MetaType,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type fileRepository struct {
	db *sqlx.DB
}

var _ file.Repository = (*fileRepository)(nil) // interface compliance check

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

func (repo fileRepository) CreateFile(ctx context.Context, f file.File) (file.File, error) {
	f.ID = uuid.NewString()
	stmt, args, err := psql.Insert("file").
		Columns(fileColumns...).
		Values(f.ID, f.URL, f.PublicID, string(f.Type), f.MetaType, f.UserID, f.CreatedAt, f.UpdatedAt).
		ToSql()
	if err != nil {
		return file.File{}, errors.Wrap(err, "building file insert")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return file.File{}, errors.Wrap(err, "inserting file")
	}
	return f, nil
}

func (repo fileRepository) GetFileByID(ctx context.Context, id string) (file.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return file.File{}, file.ErrNotFound
	}

	stmt, args, err := psql.Select(fileColumns...).From("file").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return file.File{}, errors.Wrap(err, "building file query")
	}

	var row fileRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return file.File{}, file.ErrNotFound
		}
		return file.File{}, errors.Wrap(err, "finding file")
	}
	return row.unmarshal(), nil
}

func (repo fileRepository) QueryFilesByUser(ctx context.Context, userID string, page core.Pagination) ([]file.File, error) {
	stmt, args, err := psql.Select(fileColumns...).
		From("file").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building files query")
	}

	var rows []fileRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying files")
	}
	files := make([]file.File, 0, len(rows))
	for _, row := range rows {
		files = append(files, row.unmarshal())
	}
	return files, nil
}

func (repo fileRepository) UpdateFile(ctx context.Context, f file.File) (file.File, error) {
	stmt, args, err := psql.Update("file").
		Set("url", f.URL).
		Set("public_id", f.PublicID).
		Set("type", string(f.Type)).
		Set("meta_type", f.MetaType).
		Set("updated_at", f.UpdatedAt).
		Where(sq.Eq{"id": f.ID}).
		ToSql()
	if err != nil {
		return file.File{}, errors.Wrap(err, "building file update")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return file.File{}, errors.Wrap(err, "updating file")
	}
	return f, nil
}

func (repo fileRepository) DeleteFilesByID(ctx context.Context, ids ...string) error {
	stmt, args, err := psql.Delete("file").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building files delete")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "deleting files")
	}
	return nil
}
