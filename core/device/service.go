package device

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("device not found")
	ErrTokenExists = errors.New("a device with this registration token already exists")
)

// Device is one physical device registered for push delivery.
type Device struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"` // push registration token, unique
	UserID    string    `json:"user_id"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type (
	Repository interface {
		CreateDevice(ctx context.Context, dev Device) (Device, error)
		GetDeviceByToken(ctx context.Context, token string) (Device, error)
		UpdateDevice(ctx context.Context, dev Device) (Device, error)
		// QueryActiveTokens returns the registration tokens of all active devices.
		QueryActiveTokens(ctx context.Context) ([]string, error)
		// QueryActiveTokensByFaculty returns the registration tokens of active
		// devices owned by users affiliated with any of the given faculties.
		QueryActiveTokensByFaculty(ctx context.Context, faculties []user.Faculty) ([]string, error)
	}

	Service interface {
		// Register records a device token for the given user with
		// get-or-create semantics: an already-known token is reassigned to
		// the user and reactivated instead of creating a duplicate.
		Register(ctx context.Context, owner user.User, token string) (Device, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Register(ctx context.Context, owner user.User, token string) (Device, error) {
	token = core.CleanString(token)
	if token == "" {
		return Device{}, core.NewValidationError(nil, core.FieldError{Field: "deviceToken", Error: "this field is required"})
	}

	dev, err := svc.repo.GetDeviceByToken(ctx, token)
	if err == ErrNotFound {
		return svc.repo.CreateDevice(ctx, Device{
			Token:     token,
			UserID:    owner.ID,
			Active:    true,
			UpdatedAt: time.Now().UTC(),
		})
	}
	if err != nil {
		return Device{}, err
	}

	dev.UserID = owner.ID
	dev.Active = true
	dev.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDevice(ctx, dev)
}
