package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Role is a user's access level. It is fixed at registration.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Capability is a named permission granted to roles via the capability table.
type Capability uint8

const (
	CapManageSubjects Capability = iota
	CapManageAssignments
	CapManageNotices
	CapProvisionAdmins
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleStudent: {},
	RoleTeacher: {
		CapManageAssignments: true,
		CapManageNotices:     true,
	},
	RoleAdmin: {
		CapManageSubjects:    true,
		CapManageAssignments: true,
		CapManageNotices:     true,
		CapProvisionAdmins:   true,
	},
}

func (r Role) Can(cap Capability) bool {
	return roleCapabilities[r][cap]
}

// Faculty is a faculty affiliation tag; FacultyAll is the broadcast sentinel.
type Faculty string

const (
	FacultyAll  Faculty = "ALL"
	FacultyBCA  Faculty = "BCA"
	FacultyBIM  Faculty = "BIM"
	FacultyCSIT Faculty = "CSIT"
)

var AllFaculties = []Faculty{FacultyAll, FacultyBCA, FacultyBIM, FacultyCSIT}

func (f Faculty) Valid() bool {
	switch f {
	case FacultyAll, FacultyBCA, FacultyBIM, FacultyCSIT:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Gender       string    `json:"gender,omitempty"`
	Contact      string    `json:"contact,omitempty"`
	Faculty      Faculty   `json:"faculty,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string  `json:"name" validate:"required"`
	Username string  `json:"username" validate:"required,min=3,alphanum_"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	Role     Role    `json:"role" validate:"required,role"`
	Gender   string  `json:"gender" validate:"omitempty,oneof=male female others"`
	Contact  string  `json:"contact" validate:"omitempty,max=10"`
	Faculty  Faculty `json:"faculty" validate:"omitempty,faculty"`
}

func (nu *NewUser) Validate(svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role is deliberately absent: there is no promotion path.
type UpdateUser struct {
	Name     string  `json:"name"`
	Username string  `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Password string  `json:"password" validate:"omitempty"`
	Gender   string  `json:"gender" validate:"omitempty,oneof=male female others"`
	Contact  string  `json:"contact" validate:"omitempty,max=10"`
	Faculty  Faculty `json:"faculty" validate:"omitempty,faculty"`
	IsActive *bool   `json:"is_active"`
}

func (uu *UpdateUser) Validate(origUsr User, svc Service) error {
	uname := core.CleanString(uu.Username, true /* lower */)
	if uname == "" {
		uname = origUsr.Username
	}
	uu.Username = uname

	email := core.CleanString(uu.Email, true /* lower */)
	if email == "" {
		email = origUsr.Email
	}
	uu.Email = email

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}
