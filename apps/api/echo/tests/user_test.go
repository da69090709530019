package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)
	testutil.CreateUser(t, usrRepo, "Taken", "taken", "taken@test.cd", "", user.RoleStudent, user.FacultyBCA, true)

	payload := func(name, uname, email, pwd string, role user.Role, faculty user.Faculty) []byte {
		return marshallObj(t, map[string]interface{}{
			"name": name, "username": uname, "email": email, "password": pwd,
			"role": role, "faculty": faculty,
		})
	}

	tests := []httpTest{
		{
			name: "Student registered", wantCode: http.StatusCreated,
			body: payload("Jane Student", "jane_s", "jane@test.cd", "Str0ngPass!", user.RoleStudent, user.FacultyCSIT),
		},
		{
			name: "Teacher registered", wantCode: http.StatusCreated,
			body: payload("John Teacher", "john_t", "john@test.cd", "Str0ngPass!", user.RoleTeacher, user.FacultyBIM),
		},
		{
			name: "Duplicate email rejected", wantCode: http.StatusConflict,
			body: payload("Copy Cat", "copycat", "taken@test.cd", "Str0ngPass!", user.RoleStudent, user.FacultyBCA),
		},
		{
			name: "Duplicate username rejected", wantCode: http.StatusConflict,
			body: payload("Copy Cat", "taken", "copycat@test.cd", "Str0ngPass!", user.RoleStudent, user.FacultyBCA),
		},
		{
			name: "Weak password rejected", wantCode: http.StatusBadRequest,
			body: payload("Weak Pwd", "weakling", "weak@test.cd", "1234567890", user.RoleStudent, user.FacultyBCA),
		},
		{
			name: "Unknown role rejected", wantCode: http.StatusBadRequest,
			body: payload("No Role", "norole", "norole@test.cd", "Str0ngPass!", "superuser", user.FacultyBCA),
		},
		{
			name: "Admin role requires admin caller", wantCode: http.StatusBadRequest,
			body: payload("Sneaky", "sneaky", "sneaky@test.cd", "Str0ngPass!", user.RoleAdmin, user.FacultyAll),
		},
		{
			name: "Admin registered by admin", token: getToken(t, admin), wantCode: http.StatusCreated,
			body: payload("New Admin", "newadmin", "newadmin@test.cd", "Str0ngPass!", user.RoleAdmin, user.FacultyAll),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("welcome email sent", func(t *testing.T) {
		sent := emailsvc.SentMessages
		if len(sent) != 3 { // one per successful registration
			t.Fatalf("expected 3 welcome emails; got %d", len(sent))
		}
		msg := sent[0]
		if msg.Subject != "Welcome aboard!" {
			t.Errorf("subject = %q; want %q", msg.Subject, "Welcome aboard!")
		}
		if len(msg.To) != 1 || msg.To[0].Address != "jane@test.cd" {
			t.Errorf("recipients = %v; want jane@test.cd", msg.To)
		}
	})
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "Str0ngPass!", user.RoleStudent, user.FacultyCSIT, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "Str0ngPass!", user.RoleStudent, user.FacultyBCA, false)

	payload := func(email, pwd, deviceToken string) []byte {
		return marshallObj(t, map[string]string{"email": email, "password": pwd, "deviceToken": deviceToken})
	}
	invalidCreds := errorBody(t, "Invalid credentials", nil)

	tests := []httpTest{
		{name: "Login successful", body: payload("hero@test.cd", "Str0ngPass!", ""), wantCode: http.StatusOK},
		{name: "Login registers device", body: payload("hero@test.cd", "Str0ngPass!", "device-tok-1"), wantCode: http.StatusOK},
		{name: "Unknown email", body: payload("ghost@test.cd", "Str0ngPass!", ""), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
		{name: "Wrong password", body: payload("hero@test.cd", "WrongPass!", ""), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
		{
			name: "Deactivated account", body: payload("ndog@test.cd", "Str0ngPass!", ""),
			wantCode: http.StatusForbidden, wantData: errorBody(t, "account deactivated", nil),
		},
		{
			name: "Email required", body: payload("", "Str0ngPass!", ""),
			wantCode: http.StatusBadRequest, wantData: errorBody(t, "validation failed", map[string]string{"email": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var data struct {
					Token string          `json:"token"`
					User  json.RawMessage `json:"user"`
				}
				parseData(t, rec, &data)
				if data.Token == "" {
					t.Errorf("login response missing token")
				}
			}
		})
	}

	// device registered with get-or-create semantics
	dev, err := deviceRepo.GetDeviceByToken(context.Background(), "device-tok-1")
	if err != nil {
		t.Fatalf("GetDeviceByToken() failed: %v", err)
	}
	if dev.UserID != student.ID || !dev.Active {
		t.Errorf("device not registered to user; got %+v", dev)
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: errMissingToken(t)},
		{name: "Admin required", path: "/v1/users", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: errForbidden(t)},
		{
			name: "Own account via /me", path: "/v1/users/me", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: successBody(t, "User retrieved successfully", student),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK},
		{
			name: "Ordered by name descending", path: "/v1/users?ordering=-name", token: adminToken,
			wantCode: http.StatusOK, wantData: successBody(t, "Users retrieved successfully", []user.User{student, admin}),
		},
		{name: "Paginated", path: "/v1/users?page=1&limit=1", token: adminToken, wantCode: http.StatusOK},
		{name: "Page out of range", path: "/v1/users?page=99", token: adminToken, wantCode: http.StatusOK, wantData: successBody(t, "Users retrieved successfully", []user.User{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "Paginated" {
				var users []user.User
				parseData(t, rec, &users)
				if len(users) != 1 {
					t.Errorf("expected 1 user; got %d", len(users))
				}
			}
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", user.RoleStudent, user.FacultyBCA, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", user.RoleAdmin, user.FacultyAll, true)

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Get self", method: http.MethodGet, path: "/v1/users/" + student.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: successBody(t, "User retrieved successfully", student),
		},
		{
			name: "Get other user forbidden", method: http.MethodGet, path: "/v1/users/" + other.ID, token: studentToken,
			wantCode: http.StatusNotFound, wantData: errNotFound(t),
		},
		{
			name: "Admin gets any user", method: http.MethodGet, path: "/v1/users/" + other.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: successBody(t, "User retrieved successfully", other),
		},
		{
			name: "Self cannot change is_active", method: http.MethodPut, path: "/v1/users/" + student.ID, token: studentToken,
			body: marshallObj(t, map[string]interface{}{"is_active": false}), wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{
			name: "Self update", method: http.MethodPut, path: "/v1/users/" + student.ID, token: studentToken,
			body: marshallObj(t, map[string]interface{}{"name": "Hero Renamed", "contact": "9812345678"}), wantCode: http.StatusOK,
		},
		{
			name: "Admin deactivates user", method: http.MethodPut, path: "/v1/users/" + other.ID, token: adminToken,
			body: marshallObj(t, map[string]interface{}{"is_active": false}), wantCode: http.StatusOK,
		},
		{
			name: "Destroy requires admin", method: http.MethodDelete, path: "/v1/users/" + student.ID, token: studentToken,
			wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{
			name: "Admin cannot delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: errForbidden(t),
		},
		{
			name: "Admin deletes user", method: http.MethodDelete, path: "/v1/users/" + other.ID, token: adminToken,
			wantCode: http.StatusNoContent,
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
		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: student.ID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if usr.Name != "Hero Renamed" {
			t.Errorf("name = %q; want %q", usr.Name, "Hero Renamed")
		}
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", user.RoleStudent, user.FacultyCSIT, true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "", user.RoleStudent, user.FacultyBCA, false)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   student.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     student.Username,
		Email:        student.Email,
		Role:         string(student.Role),
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: errMissingToken(t)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: errorBody(t, "account deactivated", nil),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: errorBody(t, "refresh has expired", nil),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
