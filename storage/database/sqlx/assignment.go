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
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/user"
)

var assignmentColumns = []string{
	"a.id", "a.title", "a.description", "a.subject_id", `s.name AS subject_name`,
	"a.teacher_id", `u.name AS teacher_name`, "a.deadline", "a.semester",
	"a.faculty", "a.created_at", "a.updated_at",
}

type assignmentRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	SubjectID   string    `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	TeacherID   string    `db:"teacher_id"`
	TeacherName string    `db:"teacher_name"`
	Deadline    time.Time `db:"deadline"`
	Semester    string    `db:"semester"`
	Faculty     string    `db:"faculty"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row assignmentRow) unmarshal() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		SubjectID:   row.SubjectID,
		SubjectName: row.SubjectName,
		TeacherID:   row.TeacherID,
		TeacherName: row.TeacherName,
		Deadline:    row.Deadline.UTC(),
		Semester:    row.Semester,
		Faculty:     user.Faculty(row.Faculty),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) selectAssignments() sq.SelectBuilder {
	return psql.Select(assignmentColumns...).
		From("assignment a").
		Join("subject s ON s.id = a.subject_id").
		Join(userTable + ` u ON u.id = a.teacher_id`)
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	asg.ID = uuid.NewString()
	stmt, args, err := psql.Insert("assignment").
		Columns("id", "title", "description", "subject_id", "teacher_id", "deadline", "semester", "faculty", "created_at", "updated_at").
		Values(asg.ID, asg.Title, asg.Description, asg.SubjectID, asg.TeacherID, asg.Deadline, asg.Semester, string(asg.Faculty), asg.CreatedAt, asg.UpdatedAt).
		ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building assignment insert")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}

	stmt, args, err := repo.selectAssignments().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building assignment query")
	}

	var row assignmentRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return row.unmarshal(), nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, page core.Pagination) ([]assignment.Assignment, error) {
	stmt, args, err := repo.selectAssignments().
		OrderBy("a.updated_at DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building assignments query")
	}

	var rows []assignmentRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.unmarshal())
	}
	return assignments, nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	stmt, args, err := psql.Update("assignment").
		Set("title", asg.Title).
		Set("description", asg.Description).
		Set("subject_id", asg.SubjectID).
		Set("deadline", asg.Deadline).
		Set("semester", asg.Semester).
		Set("faculty", string(asg.Faculty)).
		Set("updated_at", asg.UpdatedAt).
		Where(sq.Eq{"id": asg.ID}).
		ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building assignment update")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	stmt, args, err := psql.Delete("assignment").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building assignments delete")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}
