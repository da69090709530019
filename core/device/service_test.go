package device_test

import (
	"context"
	"testing"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/device"
	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_service_Register(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	repo := dummydb.NewDeviceRepository(db)
	svc := device.NewService(repo)

	owner := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	newOwner := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", user.RoleStudent, user.FacultyBCA, true)

	ctx := context.Background()

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, owner, "  ")
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("err = %v; want a ValidationError", err)
		}
	})

	t.Run("unknown token creates an active device", func(t *testing.T) {
		dev, err := svc.Register(ctx, owner, " tok-1 ")
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if dev.ID == "" || dev.Token != "tok-1" || dev.UserID != owner.ID || !dev.Active {
			t.Errorf("unexpected device; got %+v", dev)
		}
	})

	t.Run("known token is reassigned, not duplicated", func(t *testing.T) {
		dev, err := svc.Register(ctx, newOwner, "tok-1")
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if dev.UserID != newOwner.ID {
			t.Errorf("user_id = %q; want %q", dev.UserID, newOwner.ID)
		}

		tokens, err := repo.QueryActiveTokens(ctx)
		if err != nil {
			t.Fatalf("QueryActiveTokens() failed: %v", err)
		}
		if len(tokens) != 1 {
			t.Errorf("tokens = %v; want exactly one", tokens)
		}
	})

	t.Run("inactive device is reactivated on registration", func(t *testing.T) {
		dev := testutil.CreateDevice(t, repo, "tok-2", owner, false)

		dev, err := svc.Register(ctx, owner, dev.Token)
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if !dev.Active {
			t.Errorf("device not reactivated; got %+v", dev)
		}
	})
}
