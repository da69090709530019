package main

import (
	"context"
	"database/sql"
	"testing"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func newCommandLine(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	return &commandLine{conf: core.NewConfig(), usrRepo: usrRepo}, usrRepo
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()

	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_run_usage(t *testing.T) {
	cli, _ := newCommandLine(t)

	tests := [][]string{
		{"admin"},
		{"admin", "frobnicate"},
		{"admin", "createsuperuser"},
		{"admin", "resetpassword"},
	}
	for _, args := range tests {
		if err := cli.run(args); err != errHelp {
			t.Errorf("run(%v) err = %v; want errHelp", args, err)
		}
	}
}

func Test_commandLine_createSuperuser(t *testing.T) {
	cli, usrRepo := newCommandLine(t)
	mockPassword(t, "Str0ngPass!")

	t.Run("creates an active admin", func(t *testing.T) {
		err := cli.run([]string{"admin", "createsuperuser", "-name", "Root", "-username", "root", "-email", "Root@test.cd"})
		if err != nil {
			t.Fatalf("run() failed: %v", err)
		}

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "root@test.cd"})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if usr.Role != user.RoleAdmin || usr.Faculty != user.FacultyAll || !usr.IsActive {
			t.Errorf("unexpected superuser; got %+v", usr)
		}
		if err = usr.CheckPassword("Str0ngPass!"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})

	t.Run("promotes and reactivates an existing user", func(t *testing.T) {
		testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "old-pass", user.RoleStudent, user.FacultyCSIT, false)

		err := cli.run([]string{"admin", "createsuperuser", "-name", "Hero", "-username", "hero", "-email", "hero@test.cd"})
		if err != nil {
			t.Fatalf("run() failed: %v", err)
		}

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "hero@test.cd"})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if usr.Role != user.RoleAdmin || !usr.IsActive {
			t.Errorf("user not promoted; got %+v", usr)
		}
		if err = usr.CheckPassword("Str0ngPass!"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, usrRepo := newCommandLine(t)
	mockPassword(t, "N3w-Secret!")

	testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "old-pass", user.RoleStudent, user.FacultyCSIT, true)

	t.Run("unknown email", func(t *testing.T) {
		err := cli.run([]string{"admin", "resetpassword", "-email", "ghost@test.cd"})
		if err != user.ErrNotFound {
			t.Errorf("run() err = %v; want user.ErrNotFound", err)
		}
	})

	t.Run("resets the password", func(t *testing.T) {
		if err := cli.run([]string{"admin", "resetpassword", "-email", "Hero@test.cd"}); err != nil {
			t.Fatalf("run() failed: %v", err)
		}

		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "hero@test.cd"})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if err = usr.CheckPassword("N3w-Secret!"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
		if err = usr.CheckPassword("old-pass"); err == nil {
			t.Errorf("old password still accepted")
		}
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := newCommandLine(t)

	var gotCommand string
	var gotArgs []string
	orig := migrationRunFunc
	migrationRunFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { migrationRunFunc = orig })

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if gotCommand != "up" {
		t.Errorf("command = %q; want %q", gotCommand, "up")
	}

	if err := cli.run([]string{"admin", "migrate", "down-to", "2"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if gotCommand != "down-to" || len(gotArgs) != 1 || gotArgs[0] != "2" {
		t.Errorf("command = %q, args = %v; want down-to [2]", gotCommand, gotArgs)
	}
}
