package subject

import (
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
)

const defaultCredits = 3

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"` // normalized upper-case
	Description string    `json:"description,omitempty"`
	Credits     int       `json:"credits"`
	CreatedBy   string    `json:"created_by"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = strings.ToUpper(core.CleanString(ns.Code))
	if ns.Credits == 0 {
		ns.Credits = defaultCredits
	}
	return core.Validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

func (us *UpdateSubject) Validate() error {
	us.Name = core.CleanString(us.Name)
	us.Code = strings.ToUpper(core.CleanString(us.Code))
	return core.Validate.Struct(us)
}
