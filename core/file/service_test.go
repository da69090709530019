package file_test

import (
	"context"
	"testing"

	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/services/filestore"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func newService(t *testing.T) (file.Service, file.Repository, *filestore.DummyStorage, user.User) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	repo := dummydb.NewFileRepository(db)
	storage := filestore.NewDummyStorage()

	owner := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	return file.NewService(repo, storage), repo, storage, owner
}

func Test_service_Create(t *testing.T) {
	svc, _, storage, owner := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, file.Upload{
		Type:        file.TypeNotice,
		Filename:    "routine.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	}, owner)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if f.ID == "" || f.URL == "" || f.PublicID == "" {
		t.Errorf("incomplete file; got %+v", f)
	}
	if f.MetaType != "pdf" || f.UserID != owner.ID {
		t.Errorf("unexpected file; got %+v", f)
	}
	if !storage.Exists(f.PublicID) {
		t.Errorf("remote object missing")
	}
}

func Test_service_Replace(t *testing.T) {
	svc, repo, storage, owner := newService(t)
	ctx := context.Background()

	orig, err := svc.Create(ctx, file.Upload{
		Type:        file.TypeProfile,
		Filename:    "me.png",
		ContentType: "image/png",
		Content:     []byte("png-1"),
	}, owner)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	repl, err := svc.Replace(ctx, orig, file.Upload{
		Type:        file.TypeProfile,
		Filename:    "me-v2.png",
		ContentType: "image/png",
		Content:     []byte("png-2"),
	})
	if err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if repl.ID != orig.ID {
		t.Errorf("replace must keep the row; got id %q want %q", repl.ID, orig.ID)
	}
	if repl.PublicID == orig.PublicID || repl.URL == orig.URL {
		t.Errorf("remote object not swapped; got %+v", repl)
	}
	if storage.Exists(orig.PublicID) {
		t.Errorf("old remote object still present")
	}
	if !storage.Exists(repl.PublicID) {
		t.Errorf("new remote object missing")
	}

	stored, err := repo.GetFileByID(ctx, orig.ID)
	if err != nil {
		t.Fatalf("GetFileByID() failed: %v", err)
	}
	if stored.PublicID != repl.PublicID {
		t.Errorf("replacement not persisted; got %+v", stored)
	}
}

func Test_service_Delete(t *testing.T) {
	svc, repo, storage, owner := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, file.Upload{
		Type:        file.TypeNotice,
		Filename:    "routine.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	}, owner)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	t.Run("row kept when remote deletion fails", func(t *testing.T) {
		storage.FailDelete = true
		defer func() { storage.FailDelete = false }()

		if err := svc.Delete(ctx, f); err == nil {
			t.Fatal("Delete() should fail when the remote deletion fails")
		}
		if _, err := repo.GetFileByID(ctx, f.ID); err != nil {
			t.Errorf("file row dropped despite remote failure; err = %v", err)
		}
	})

	t.Run("remote object and row removed together", func(t *testing.T) {
		if err := svc.Delete(ctx, f); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := repo.GetFileByID(ctx, f.ID); err != file.ErrNotFound {
			t.Errorf("file row still present; err = %v", err)
		}
		if storage.Exists(f.PublicID) {
			t.Errorf("remote object still present")
		}
	})
}

func TestUpload_Validate(t *testing.T) {
	tests := []struct {
		name    string
		up      file.Upload
		wantErr bool
	}{
		{name: "valid pdf notice", up: file.Upload{Type: file.TypeNotice, ContentType: "application/pdf", Content: []byte("x")}},
		{name: "valid jpeg profile", up: file.Upload{Type: file.TypeProfile, ContentType: "image/jpeg", Content: []byte("x")}},
		{name: "valid pdf assignment", up: file.Upload{Type: file.TypeAssignment, ContentType: "application/pdf", Content: []byte("x")}},
		{name: "missing type", up: file.Upload{ContentType: "application/pdf", Content: []byte("x")}, wantErr: true},
		{name: "unknown type", up: file.Upload{Type: "resume", ContentType: "application/pdf", Content: []byte("x")}, wantErr: true},
		{name: "empty content", up: file.Upload{Type: file.TypeNotice, ContentType: "application/pdf"}, wantErr: true},
		{name: "oversized content", up: file.Upload{Type: file.TypeNotice, ContentType: "application/pdf", Content: make([]byte, file.MaxSize+1)}, wantErr: true},
		{name: "disallowed content type", up: file.Upload{Type: file.TypeNotice, ContentType: "application/zip", Content: []byte("x")}, wantErr: true},
		{name: "pdf profile", up: file.Upload{Type: file.TypeProfile, ContentType: "application/pdf", Content: []byte("x")}, wantErr: true},
		{name: "image assignment", up: file.Upload{Type: file.TypeAssignment, ContentType: "image/png", Content: []byte("x")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.up.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
