package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/user"
)

type deviceRepository struct {
	db    *deviceTable
	users *userTable
}

var _ device.Repository = (*deviceRepository)(nil) // interface compliance check

func NewDeviceRepository(db *DB) device.Repository {
	return &deviceRepository{db: db.device, users: db.user}
}

func (repo *deviceRepository) CreateDevice(ctx context.Context, dev device.Device) (device.Device, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, d := range repo.db.table {
		if d.Token == dev.Token {
			return device.Device{}, device.ErrTokenExists
		}
	}

	dev.ID = uuid.NewString()
	repo.db.table[dev.ID] = &dev
	return dev, nil
}

func (repo *deviceRepository) GetDeviceByToken(ctx context.Context, token string) (device.Device, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, dev := range repo.db.table {
		if dev.Token == token {
			return *dev, nil
		}
	}
	return device.Device{}, device.ErrNotFound
}

func (repo *deviceRepository) UpdateDevice(ctx context.Context, dev device.Device) (device.Device, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[dev.ID]; !ok {
		return device.Device{}, device.ErrNotFound
	}
	repo.db.table[dev.ID] = &dev
	return dev, nil
}

func (repo *deviceRepository) QueryActiveTokens(ctx context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tokens := make([]string, 0, len(repo.db.table))
	for _, dev := range repo.db.table {
		if dev.Active {
			tokens = append(tokens, dev.Token)
		}
	}
	return tokens, nil
}

func (repo *deviceRepository) QueryActiveTokensByFaculty(ctx context.Context, faculties []user.Faculty) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.users.RLock()
	defer repo.users.RUnlock()

	wanted := make(map[user.Faculty]bool, len(faculties))
	for _, f := range faculties {
		wanted[f] = true
	}

	var tokens []string
	for _, dev := range repo.db.table {
		if !dev.Active {
			continue
		}
		usr, ok := repo.users.table[dev.UserID]
		if !ok || !usr.IsActive {
			continue
		}
		if wanted[usr.Faculty] {
			tokens = append(tokens, dev.Token)
		}
	}
	return tokens, nil
}
