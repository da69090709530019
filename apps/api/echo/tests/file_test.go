package tests

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/trezcool/darasa/core/file"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

// newUploadRequest builds a multipart request carrying a file part with an
// explicit content type plus the declared file type.
func newUploadRequest(t *testing.T, method, path, token, fileType, filename, contentType string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if content != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
		if _, err = part.Write(content); err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
	}
	if err := w.WriteField("type", fileType); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_fileApi_create(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	studentToken := getToken(t, student)

	pdf := []byte("%PDF-1.4 fake body")
	png := []byte("\x89PNG fake body")
	huge := make([]byte, file.MaxSize+1)

	tests := []struct {
		name        string
		token       string
		fileType    string
		filename    string
		contentType string
		content     []byte
		wantCode    int
		wantData    []byte
	}{
		{
			name: "Auth required", fileType: "notice", filename: "a.pdf", contentType: "application/pdf", content: pdf,
			wantCode: http.StatusUnauthorized, wantData: errMissingToken(t),
		},
		{
			name: "File part required", token: studentToken, fileType: "notice",
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"file": "this field is required"}),
		},
		{
			name: "File type required", token: studentToken, fileType: "", filename: "a.pdf", contentType: "application/pdf", content: pdf,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Unknown file type rejected", token: studentToken, fileType: "resume", filename: "a.pdf", contentType: "application/pdf", content: pdf,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Disallowed content type rejected", token: studentToken, fileType: "notice", filename: "a.exe", contentType: "application/octet-stream", content: pdf,
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"file": "invalid file type"}),
		},
		{
			name: "Profile file must be an image", token: studentToken, fileType: "profile", filename: "a.pdf", contentType: "application/pdf", content: pdf,
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"file": "profile files must be an image"}),
		},
		{
			name: "Assignment file must be a PDF", token: studentToken, fileType: "assignment", filename: "a.png", contentType: "image/png", content: png,
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"file": "assignment files must be a PDF"}),
		},
		{
			name: "Oversized file rejected", token: studentToken, fileType: "notice", filename: "big.pdf", contentType: "application/pdf", content: huge,
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"file": "file too large"}),
		},
		{
			name: "Notice file uploaded", token: studentToken, fileType: "notice", filename: "routine.pdf", contentType: "application/pdf", content: pdf,
			wantCode: http.StatusCreated,
		},
		{
			name: "Profile image uploaded", token: studentToken, fileType: "profile", filename: "me.png", contentType: "image/png", content: png,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, http.MethodPost, "/v1/files", tt.token, tt.fileType, tt.filename, tt.contentType, tt.content)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{name: tt.name, wantCode: tt.wantCode, wantData: tt.wantData}, rec)

			if tt.name == "Notice file uploaded" {
				var f file.File
				parseData(t, rec, &f)
				if f.URL == "" || f.MetaType != "pdf" || f.UserID != student.ID {
					t.Errorf("upload result incomplete; got %+v", f)
				}
			}
		})
	}
}

func Test_fileApi_query_retrieve(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", user.RoleStudent, user.FacultyBCA, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)

	own := testutil.CreateFile(t, fileRepo, file.TypeNotice, student)
	foreign := testutil.CreateFile(t, fileRepo, file.TypeProfile, other)

	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/files", wantCode: http.StatusUnauthorized, wantData: errMissingToken(t)},
		{
			name: "Only own files listed", path: "/v1/files", token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "Files retrieved successfully", []file.File{own}),
		},
		{
			name: "Get own file", path: "/v1/files/" + own.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "File retrieved successfully", own),
		},
		{
			name: "Foreign file hidden", path: "/v1/files/" + foreign.ID, token: studentToken,
			wantCode: http.StatusNotFound, wantData: errNotFound(t),
		},
		{
			name: "Admin sees any file", path: "/v1/files/" + foreign.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: successBody(t, "File retrieved successfully", foreign),
		},
		{name: "Not found", path: "/v1/files/bogus", token: studentToken, wantCode: http.StatusNotFound, wantData: errNotFound(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_fileApi_update_destroy(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", user.RoleStudent, user.FacultyBCA, true)
	studentToken := getToken(t, student)

	pdf := []byte("%PDF-1.4 fake body")

	// upload through the API so the remote object exists in storage
	req, rec := newUploadRequest(t, http.MethodPost, "/v1/files", studentToken, "notice", "routine.pdf", "application/pdf", pdf)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seeding upload failed; code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var f file.File
	parseData(t, rec, &f)

	orig, err := fileRepo.GetFileByID(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("GetFileByID() failed: %v", err)
	}

	t.Run("only owner can replace", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPut, "/v1/files/"+f.ID, getToken(t, other), "notice", "routine.pdf", "application/pdf", pdf)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: errNotFound(t)}, rec)
	})

	t.Run("replace swaps the remote object", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPut, "/v1/files/"+f.ID, studentToken, "notice", "routine-v2.pdf", "application/pdf", pdf)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK}, rec)

		repl, err := fileRepo.GetFileByID(context.Background(), f.ID)
		if err != nil {
			t.Fatalf("GetFileByID() failed: %v", err)
		}
		if repl.PublicID == orig.PublicID || repl.URL == orig.URL {
			t.Errorf("remote object not replaced; got %+v", repl)
		}
		if storage.Exists(orig.PublicID) {
			t.Errorf("old remote object still present")
		}
		if !storage.Exists(repl.PublicID) {
			t.Errorf("new remote object missing")
		}
	})

	t.Run("row kept when remote deletion fails", func(t *testing.T) {
		storage.FailDelete = true
		defer func() { storage.FailDelete = false }()

		req, rec := newAuthRequest(http.MethodDelete, "/v1/files/"+f.ID, studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("code = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		if _, err := fileRepo.GetFileByID(context.Background(), f.ID); err != nil {
			t.Errorf("file row dropped despite remote failure; err = %v", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		repl, err := fileRepo.GetFileByID(context.Background(), f.ID)
		if err != nil {
			t.Fatalf("GetFileByID() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodDelete, "/v1/files/"+f.ID, studentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNoContent}, rec)

		if _, err := fileRepo.GetFileByID(context.Background(), f.ID); err != file.ErrNotFound {
			t.Errorf("file row still present; err = %v", err)
		}
		if storage.Exists(repl.PublicID) {
			t.Errorf("remote object still present")
		}
	})
}
