// Package validation checks request input before it reaches the services.
package validation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minNameLength     = 2
	maxNameLength     = 80
	maxGroupLength    = 60
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
	MaxNotesLength    = 2000
)

// Error describes one invalid field
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidationError reports whether err carries at least one validation Error
func IsValidationError(err error) bool {
	var ve Error
	return errors.As(err, &ve)
}

// Fields flattens err into its validation Errors
func Fields(err error) []Error {
	var out []Error
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var ve Error
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	walk(err)
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates v against its `validate` tags
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, Error{Field: fe.Field(), Message: message(fe)})
	}
	return errors.Join(errs...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datauri":
		return "must be a data URI"
	default:
		return "is invalid"
	}
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return Error{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

// ValidatePassword checks password length bounds
func ValidatePassword(password string) error {
	n := len(password)
	if n < minPasswordLength {
		return Error{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if n > maxPasswordLength {
		return Error{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordLength)}
	}
	return nil
}

// ValidateName checks a display name after trimming
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minNameLength {
		return Error{Field: "name", Message: fmt.Sprintf("must be at least %d characters", minNameLength)}
	}
	if n > maxNameLength {
		return Error{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	return nil
}

// ValidateGroupName checks a GCEU group name after trimming
func ValidateGroupName(group string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(group))
	if n == 0 {
		return Error{Field: "groupName", Message: "is required"}
	}
	if n > maxGroupLength {
		return Error{Field: "groupName", Message: fmt.Sprintf("must be at most %d characters", maxGroupLength)}
	}
	return nil
}

// ValidateAvatar accepts an empty value (no avatar) or a base64 image data URI of at most maxBytes
func ValidateAvatar(avatar string, maxBytes int64) error {
	if avatar == "" {
		return nil
	}
	if err := validate.Var(avatar, "datauri"); err != nil || !strings.HasPrefix(avatar, "data:image/") {
		return Error{Field: "avatar", Message: "must be an image data URI"}
	}
	_, payload, ok := strings.Cut(avatar, ";base64,")
	if !ok {
		return Error{Field: "avatar", Message: "must be base64 encoded"}
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return Error{Field: "avatar", Message: fmt.Sprintf("must be at most %d bytes", maxBytes)}
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return Error{Field: "avatar", Message: "must be base64 encoded"}
	}
	return nil
}

// ValidateNotes bounds the free-text note on a reading day
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return Error{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", MaxNotesLength)}
	}
	return nil
}
