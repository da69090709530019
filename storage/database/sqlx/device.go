package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/user"
)

var deviceColumns = []string{"id", "token", "user_id", "active", "updated_at"}

type deviceRow struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	Active    bool      `db:"active"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row deviceRow) unmarshal() device.Device {
	return device.Device{
		ID:        row.ID,
		Token:     row.Token,
		UserID:    row.UserID,
		Active:    row.Active,
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type deviceRepository struct {
	db *sqlx.DB
}

var _ device.Repository = (*deviceRepository)(nil) // interface compliance check

func NewDeviceRepository(db *sqlx.DB) *deviceRepository {
	return &deviceRepository{db: db}
}

func (repo deviceRepository) CreateDevice(ctx context.Context, dev device.Device) (device.Device, error) {
	dev.ID = uuid.NewString()
	stmt, args, err := psql.Insert("device").
		Columns(deviceColumns...).
		Values(dev.ID, dev.Token, dev.UserID, dev.Active, dev.UpdatedAt).
		ToSql()
	if err != nil {
		return device.Device{}, errors.Wrap(err, "building device insert")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		if uniqueViolation(err, "device_token_key") {
			return device.Device{}, device.ErrTokenExists
		}
		return device.Device{}, errors.Wrap(err, "inserting device")
	}
	return dev, nil
}

func (repo deviceRepository) GetDeviceByToken(ctx context.Context, token string) (device.Device, error) {
	stmt, args, err := psql.Select(deviceColumns...).From("device").Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return device.Device{}, errors.Wrap(err, "building device query")
	}

	var row deviceRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return device.Device{}, device.ErrNotFound
		}
		return device.Device{}, errors.Wrap(err, "finding device")
	}
	return row.unmarshal(), nil
}

func (repo deviceRepository) UpdateDevice(ctx context.Context, dev device.Device) (device.Device, error) {
	stmt, args, err := psql.Update("device").
		Set("user_id", dev.UserID).
		Set("active", dev.Active).
		Set("updated_at", dev.UpdatedAt).
		Where(sq.Eq{"id": dev.ID}).
		ToSql()
	if err != nil {
		return device.Device{}, errors.Wrap(err, "building device update")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return device.Device{}, errors.Wrap(err, "updating device")
	}
	return dev, nil
}

func (repo deviceRepository) QueryActiveTokens(ctx context.Context) ([]string, error) {
	stmt, args, err := psql.Select("token").From("device").Where(sq.Eq{"active": true}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building device tokens query")
	}

	var tokens []string
	if err = repo.db.SelectContext(ctx, &tokens, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying device tokens")
	}
	return tokens, nil
}

func (repo deviceRepository) QueryActiveTokensByFaculty(ctx context.Context, faculties []user.Faculty) ([]string, error) {
	facs := make([]string, 0, len(faculties))
	for _, f := range faculties {
		facs = append(facs, string(f))
	}

	stmt, args, err := psql.Select("d.token").
		From("device d").
		Join(userTable + ` u ON u.id = d.user_id`).
		Where(sq.Eq{"d.active": true}).
		Where(sq.Eq{"u.is_active": true}).
		Where(sq.Eq{"u.faculty": facs}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building device tokens query")
	}

	var tokens []string
	if err = repo.db.SelectContext(ctx, &tokens, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying device tokens")
	}
	return tokens, nil
}
