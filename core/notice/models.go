package notice

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryExam    Category = "exam"
	CategoryHoliday Category = "holiday"
	CategoryGeneral Category = "general"
	CategorySeminar Category = "seminar"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryExam, CategoryHoliday, CategoryGeneral, CategorySeminar:
		return true
	}
	return false
}

var (
	priorityTag  = "priority"
	priorityText = "invalid priority"

	categoryTag  = "category"
	categoryText = "invalid category"

	audienceTag  = "audience"
	audienceText = "invalid target audience"
)

func init() {
	_ = core.Validate.RegisterValidation(priorityTag, priorityValidation)
	core.RegisterCustomTranslation(priorityTag, priorityText)

	_ = core.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(categoryTag, categoryText)

	_ = core.Validate.RegisterValidation(audienceTag, audienceValidation)
	core.RegisterCustomTranslation(audienceTag, audienceText)
}

func priorityValidation(fl validator.FieldLevel) bool {
	return Priority(fl.Field().String()).Valid()
}

func categoryValidation(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).Valid()
}

func audienceValidation(fl validator.FieldLevel) bool {
	audience, ok := fl.Field().Interface().([]user.Faculty)
	if !ok {
		return false
	}
	for _, fac := range audience {
		if !fac.Valid() {
			return false
		}
	}
	return true
}

// Audience is a list of faculty tags a Notice is directed at;
// user.FacultyAll broadcasts.
type Audience []user.Faculty

func (a Audience) IsBroadcast() bool {
	if len(a) == 0 {
		return true
	}
	for _, fac := range a {
		if fac == user.FacultyAll {
			return true
		}
	}
	return false
}

// Faculties returns the audience as plain faculty tags.
func (a Audience) Faculties() []user.Faculty { return a }

type Notice struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	FileID         string    `json:"file_id,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	IssuedBy       string    `json:"issued_by"`
	IssuerName     string    `json:"issuer_name,omitempty"`
	Priority       Priority  `json:"priority"`
	Category       Category  `json:"category"`
	TargetAudience Audience  `json:"target_audience"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// NewNotice contains information needed to create a new Notice.
type NewNotice struct {
	Title          string         `json:"title" validate:"required"`
	Content        string         `json:"content" validate:"required"`
	FileID         string         `json:"file_id"`
	Priority       Priority       `json:"priority" validate:"omitempty,priority"`
	Category       Category       `json:"category" validate:"omitempty,category"`
	TargetAudience []user.Faculty `json:"target_audience" validate:"omitempty,audience"`
}

func (nn *NewNotice) Validate() error {
	nn.Title = core.CleanString(nn.Title)
	nn.Content = core.CleanString(nn.Content)
	nn.FileID = core.CleanString(nn.FileID)
	if nn.Priority == "" {
		nn.Priority = PriorityMedium
	}
	if nn.Category == "" {
		nn.Category = CategoryGeneral
	}
	if len(nn.TargetAudience) == 0 {
		nn.TargetAudience = []user.Faculty{user.FacultyAll}
	}
	return core.Validate.Struct(nn)
}

// UpdateNotice defines what information may be provided to modify an
// existing Notice; FileID is re-resolved when provided.
type UpdateNotice struct {
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	FileID         string         `json:"file_id"`
	Priority       Priority       `json:"priority" validate:"omitempty,priority"`
	Category       Category       `json:"category" validate:"omitempty,category"`
	TargetAudience []user.Faculty `json:"target_audience" validate:"omitempty,audience"`
}

func (un *UpdateNotice) Validate() error {
	un.Title = core.CleanString(un.Title)
	un.Content = core.CleanString(un.Content)
	un.FileID = core.CleanString(un.FileID)
	return core.Validate.Struct(un)
}
