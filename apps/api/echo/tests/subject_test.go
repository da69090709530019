package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_subjectApi_create(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach", "teach@test.cd", "", user.RoleTeacher, user.FacultyCSIT, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)
	testutil.CreateSubject(t, subjRepo, "Operating Systems", "OS301", admin)

	adminToken := getToken(t, admin)

	payload := func(name, code string, credits int) []byte {
		return marshallObj(t, map[string]interface{}{"name": name, "code": code, "credits": credits})
	}

	tests := []httpTest{
		{name: "Auth required", body: payload("Networking", "NET201", 0), wantCode: http.StatusUnauthorized, wantData: errMissingToken(t)},
		{
			name: "Students cannot manage subjects", token: getToken(t, student),
			body: payload("Networking", "NET201", 0), wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{
			name: "Teachers cannot manage subjects", token: getToken(t, teacher),
			body: payload("Networking", "NET201", 0), wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{name: "Subject created by admin", token: adminToken, body: payload("Networking", "net201", 4), wantCode: http.StatusCreated},
		{
			name: "Name required", token: adminToken, body: payload("", "DBMS202", 0),
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"name": "this field is required"}),
		},
		{name: "Duplicate name rejected", token: adminToken, body: payload("Operating Systems", "OS999", 0), wantCode: http.StatusConflict},
		{name: "Duplicate code rejected", token: adminToken, body: payload("Advanced OS", "OS301", 0), wantCode: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("code is normalized and creator recorded", func(t *testing.T) {
		sub, err := subjRepo.GetSubject(context.Background(), subject.GetFilter{Name: "Networking"})
		if err != nil {
			t.Fatalf("GetSubject() failed: %v", err)
		}
		if sub.Code != "NET201" {
			t.Errorf("code = %q; want %q", sub.Code, "NET201")
		}
		if sub.CreatedBy != admin.ID {
			t.Errorf("created_by = %q; want %q", sub.CreatedBy, admin.ID)
		}
		if sub.Credits != 4 {
			t.Errorf("credits = %d; want 4", sub.Credits)
		}
	})
}

func Test_subjectApi_query_retrieve(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)
	os301 := testutil.CreateSubject(t, subjRepo, "Operating Systems", "OS301", admin)
	net201 := testutil.CreateSubject(t, subjRepo, "Networking", "NET201", admin)

	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/subjects", wantCode: http.StatusUnauthorized, wantData: errMissingToken(t)},
		{
			name: "Get all sorted by name", path: "/v1/subjects", token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "Subjects retrieved successfully", []subject.Subject{net201, os301}),
		},
		{
			name: "Paginated", path: "/v1/subjects?page=2&limit=1", token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "Subjects retrieved successfully", []subject.Subject{os301}),
		},
		{
			name: "Get one", path: "/v1/subjects/" + os301.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "Subject retrieved successfully", os301),
		},
		{name: "Not found", path: "/v1/subjects/bogus", token: studentToken, wantCode: http.StatusNotFound, wantData: errNotFound(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_subjectApi_update_destroy(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teach", "teach", "teach@test.cd", "", user.RoleTeacher, user.FacultyCSIT, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)
	os301 := testutil.CreateSubject(t, subjRepo, "Operating Systems", "OS301", admin)
	net201 := testutil.CreateSubject(t, subjRepo, "Networking", "NET201", admin)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Teachers cannot update", method: http.MethodPut, path: "/v1/subjects/" + os301.ID, token: getToken(t, teacher),
			body: marshallObj(t, map[string]string{"name": "Hacked"}), wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{
			name: "Update not found", method: http.MethodPut, path: "/v1/subjects/bogus", token: adminToken,
			body: marshallObj(t, map[string]string{"name": "Ghost"}), wantCode: http.StatusNotFound, wantData: errNotFound(t),
		},
		{
			name: "Subject updated", method: http.MethodPut, path: "/v1/subjects/" + os301.ID, token: adminToken,
			body: marshallObj(t, map[string]interface{}{"description": "Processes, scheduling and memory.", "credits": 5}), wantCode: http.StatusOK,
		},
		{
			name: "Update to taken name rejected", method: http.MethodPut, path: "/v1/subjects/" + os301.ID, token: adminToken,
			body: marshallObj(t, map[string]string{"name": "Networking"}), wantCode: http.StatusConflict,
		},
		{
			name: "Subject deleted", method: http.MethodDelete, path: "/v1/subjects/" + net201.ID, token: adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "Delete not found", method: http.MethodDelete, path: "/v1/subjects/" + net201.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: errNotFound(t),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("update persisted", func(t *testing.T) {
		sub, err := subjRepo.GetSubject(context.Background(), subject.GetFilter{ID: os301.ID})
		if err != nil {
			t.Fatalf("GetSubject() failed: %v", err)
		}
		if sub.Credits != 5 || sub.Description == "" {
			t.Errorf("update not persisted; got %+v", sub)
		}
	})
}
