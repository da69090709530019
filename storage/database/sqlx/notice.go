package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/user"
)

var noticeColumns = []string{
	"n.id", "n.title", "n.content", "n.file_id", `COALESCE(f.url, '') AS file_url`,
	"n.issued_by", `u.name AS issuer_name`, "n.priority", "n.category",
	"n.target_audience", "n.created_at", "n.updated_at",
}

type noticeRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	FileID         sql.NullString `db:"file_id"`
	FileURL        string         `db:"file_url"`
	IssuedBy       string         `db:"issued_by"`
	IssuerName     string         `db:"issuer_name"`
	Priority       string         `db:"priority"`
	Category       string         `db:"category"`
	TargetAudience pq.StringArray `db:"target_audience"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (row noticeRow) unmarshal() notice.Notice {
	audience := make([]user.Faculty, 0, len(row.TargetAudience))
	for _, f := range row.TargetAudience {
		audience = append(audience, user.Faculty(f))
	}
	return notice.Notice{
		ID:             row.ID,
		Title:          row.Title,
		Content:        row.Content,
		FileID:         row.FileID.String,
		FileURL:        row.FileURL,
		IssuedBy:       row.IssuedBy,
		IssuerName:     row.IssuerName,
		Priority:       notice.Priority(row.Priority),
		Category:       notice.Category(row.Category),
		TargetAudience: audience,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func marshalAudience(audience []user.Faculty) pq.StringArray {
	arr := make(pq.StringArray, 0, len(audience))
	for _, f := range audience {
		arr = append(arr, string(f))
	}
	return arr
}

type noticeRepository struct {
	db *sqlx.DB
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *sqlx.DB) *noticeRepository {
	return &noticeRepository{db: db}
}

func (repo noticeRepository) selectNotices() sq.SelectBuilder {
	return psql.Select(noticeColumns...).
		From("notice n").
		Join(userTable + ` u ON u.id = n.issued_by`).
		LeftJoin("file f ON f.id = n.file_id")
}

func (repo noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	n.ID = uuid.NewString()
	stmt, args, err := psql.Insert("notice").
		Columns("id", "title", "content", "file_id", "issued_by", "priority", "category", "target_audience", "created_at", "updated_at").
		Values(
			n.ID, n.Title, n.Content, sql.NullString{String: n.FileID, Valid: n.FileID != ""},
			n.IssuedBy, string(n.Priority), string(n.Category), marshalAudience(n.TargetAudience),
			n.CreatedAt, n.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "building notice insert")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return notice.Notice{}, errors.Wrap(err, "inserting notice")
	}
	return n, nil
}

func (repo noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return notice.Notice{}, notice.ErrNotFound
	}

	stmt, args, err := repo.selectNotices().Where(sq.Eq{"n.id": id}).ToSql()
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "building notice query")
	}

	var row noticeRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return notice.Notice{}, notice.ErrNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "finding notice")
	}
	return row.unmarshal(), nil
}

func (repo noticeRepository) QueryNotices(ctx context.Context, page core.Pagination) ([]notice.Notice, error) {
	stmt, args, err := repo.selectNotices().
		OrderBy("n.updated_at DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building notices query")
	}

	var rows []noticeRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	notices := make([]notice.Notice, 0, len(rows))
	for _, row := range rows {
		notices = append(notices, row.unmarshal())
	}
	return notices, nil
}

func (repo noticeRepository) UpdateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	stmt, args, err := psql.Update("notice").
		Set("title", n.Title).
		Set("content", n.Content).
		Set("file_id", sql.NullString{String: n.FileID, Valid: n.FileID != ""}).
		Set("priority", string(n.Priority)).
		Set("category", string(n.Category)).
		Set("target_audience", marshalAudience(n.TargetAudience)).
		Set("updated_at", n.UpdatedAt).
		Where(sq.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "building notice update")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return notice.Notice{}, errors.Wrap(err, "updating notice")
	}
	return n, nil
}

func (repo noticeRepository) DeleteNoticesByID(ctx context.Context, ids ...string) error {
	stmt, args, err := psql.Delete("notice").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building notices delete")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "deleting notices")
	}
	return nil
}
