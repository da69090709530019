package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// DeadlineDelta is applied when a new assignment does not specify a deadline.
const DeadlineDelta = 7 * 24 * time.Hour

var Semesters = []string{
	"First Semester",
	"Second Semester",
	"Third Semester",
	"Fourth Semester",
	"Fifth Semester",
	"Sixth Semester",
	"Seventh Semester",
	"Eighth Semester",
}

var (
	semesterTag  = "semester"
	semesterText = "invalid semester"
)

func init() {
	_ = core.Validate.RegisterValidation(semesterTag, semesterValidation)
	core.RegisterCustomTranslation(semesterTag, semesterText)
}

func semesterValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, sem := range Semesters {
		if val == sem {
			return true
		}
	}
	return false
}

type Assignment struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	SubjectID   string       `json:"subject_id"`
	SubjectName string       `json:"subject_name,omitempty"`
	TeacherID   string       `json:"teacher_id"`
	TeacherName string       `json:"teacher_name,omitempty"`
	Deadline    time.Time    `json:"deadline"`
	Semester    string       `json:"semester,omitempty"`
	Faculty     user.Faculty `json:"faculty,omitempty"`
	CreatedAt   time.Time    `json:"created_at"` // UTC
	UpdatedAt   time.Time    `json:"updated_at"` // UTC
}

// NewAssignment contains information needed to create a new Assignment.
// Subject takes the subject's name or id.
type NewAssignment struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Subject     string       `json:"subject" validate:"required"`
	Deadline    time.Time    `json:"deadline"`
	Semester    string       `json:"semester" validate:"omitempty,semester"`
	Faculty     user.Faculty `json:"faculty" validate:"omitempty,faculty"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Subject = core.CleanString(na.Subject)
	return core.Validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment; Subject is re-resolved when provided.
type UpdateAssignment struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Subject     string       `json:"subject"`
	Deadline    time.Time    `json:"deadline"`
	Semester    string       `json:"semester" validate:"omitempty,semester"`
	Faculty     user.Faculty `json:"faculty" validate:"omitempty,faculty"`
}

func (ua *UpdateAssignment) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	ua.Subject = core.CleanString(ua.Subject)
	return core.Validate.Struct(ua)
}
