package file

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// MaxSize is the upload size cap.
const MaxSize = 2 << 20 // 2MB

// Type declares what a stored file is used for; it constrains the
// accepted MIME types.
type Type string

const (
	TypeProfile    Type = "profile"
	TypeNotice     Type = "notice"
	TypeAssignment Type = "assignment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeProfile, TypeNotice, TypeAssignment:
		return true
	}
	return false
}

const pdfContentType = "application/pdf"

// allowed content types and their stored meta (sub)types
var allowedContentTypes = map[string]string{
	"image/jpeg":   "jpeg",
	"image/jpg":    "jpg",
	"image/png":    "png",
	"image/gif":    "gif",
	"image/webp":   "webp",
	pdfContentType: "pdf",
}

var (
	fileTypeTag  = "filetype"
	fileTypeText = "invalid file_type"
)

func init() {
	_ = core.Validate.RegisterValidation(fileTypeTag, fileTypeValidation)
	core.RegisterCustomTranslation(fileTypeTag, fileTypeText)
}

func fileTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).Valid()
}

type File struct {
	ID        string    `json:"id"`
	URL       string    `json:"file_url"`
	PublicID  string    `json:"-"`
	Type      Type      `json:"file_type"`
	MetaType  string    `json:"meta_type"` // detected MIME subtype
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Upload contains the content and declared type of an incoming file.
type Upload struct {
	Type        Type   `json:"file_type" validate:"required,filetype"`
	Filename    string `json:"-"`
	ContentType string `json:"-"`
	Content     []byte `json:"-"`
}

func (up *Upload) Validate() error {
	up.ContentType = core.CleanString(up.ContentType, true /* lower */)
	if err := core.Validate.Struct(up); err != nil {
		return err
	}

	if len(up.Content) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	if len(up.Content) > MaxSize {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file size should not exceed 2MB"})
	}
	if _, ok := allowedContentTypes[up.ContentType]; !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "invalid file type"})
	}
	switch up.Type {
	case TypeProfile:
		if !strings.HasPrefix(up.ContentType, "image/") {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "profile files must be an image"})
		}
	case TypeAssignment:
		if up.ContentType != pdfContentType {
			return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "assignment files must be a PDF"})
		}
	}
	return nil
}

// MetaType returns the stored MIME subtype for the upload's content type.
func (up Upload) MetaType() string {
	return allowedContentTypes[up.ContentType]
}
