package user

import (
	"testing"

	"github.com/trezcool/darasa/core"
)

func TestRole_Can(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  Capability
		want bool
	}{
		{name: "student cannot manage subjects", role: RoleStudent, cap: CapManageSubjects},
		{name: "student cannot manage assignments", role: RoleStudent, cap: CapManageAssignments},
		{name: "student cannot manage notices", role: RoleStudent, cap: CapManageNotices},
		{name: "teacher can manage assignments", role: RoleTeacher, cap: CapManageAssignments, want: true},
		{name: "teacher can manage notices", role: RoleTeacher, cap: CapManageNotices, want: true},
		{name: "teacher cannot manage subjects", role: RoleTeacher, cap: CapManageSubjects},
		{name: "teacher cannot provision admins", role: RoleTeacher, cap: CapProvisionAdmins},
		{name: "admin can manage subjects", role: RoleAdmin, cap: CapManageSubjects, want: true},
		{name: "admin can provision admins", role: RoleAdmin, cap: CapProvisionAdmins, want: true},
		{name: "unknown role has no capabilities", role: Role("superuser"), cap: CapManageSubjects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Can(tt.cap); got != tt.want {
				t.Errorf("Can() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_passwordPolicy(t *testing.T) {
	newUser := func(pwd string) NewUser {
		return NewUser{
			Name:     "Jane Doe",
			Username: "jane_d",
			Email:    "jane@test.cd",
			Password: pwd,
			Role:     RoleStudent,
			Faculty:  FacultyCSIT,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantErr bool
	}{
		{name: "valid", pwd: "Str0ngPass!"},
		{name: "too short", pwd: "Sh0rt!", wantErr: true},
		{name: "contains whitespace", pwd: "Str0ng Pass!", wantErr: true},
		{name: "all numeric", pwd: "1234567890", wantErr: true},
		{name: "missing uppercase", pwd: "str0ngpass!", wantErr: true},
		{name: "missing digit", pwd: "StrongPass!", wantErr: true},
		{name: "missing special", pwd: "Str0ngPass", wantErr: true},
		{name: "similar to username", pwd: "jane_d123!A", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := newUser(tt.pwd)
			err := core.Validate.Struct(&nu)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate.Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_Password(t *testing.T) {
	var usr User
	if err := usr.SetPassword("Str0ngPass!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("Str0ngPass!"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("WrongPass!"); err == nil {
		t.Errorf("CheckPassword() accepted a wrong password")
	}
}
