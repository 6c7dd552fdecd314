package core

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskInput is the payload of an admin task create.
type TaskInput struct {
	Hashtag       string  `json:"hashtag" validate:"required,max=75"`
	Title         string  `json:"title" validate:"required,max=75"`
	Description   string  `json:"description" validate:"max=2000"`
	Karma         int     `json:"karma" validate:"gte=0"`
	UsageCount    int     `json:"usage_count" validate:"gte=0"`
	VariableKarma bool    `json:"variable_karma"`
	Active        *bool   `json:"active"`
	ChannelID     string  `json:"channel_id" validate:"required"`
	TypeID        string  `json:"type_id" validate:"required"`
	LevelID       *string `json:"level_id" validate:"omitempty,min=1"`
	IGID          *string `json:"ig_id" validate:"omitempty,min=1"`
	OrgID         *string `json:"org_id" validate:"omitempty,min=1"`
}

// TaskPatch is the payload of an admin task edit. Only these fields are
// editable; absent fields are left unchanged.
type TaskPatch struct {
	Hashtag       *string `json:"hashtag" validate:"omitnil,min=1,max=75"`
	Title         *string `json:"title" validate:"omitnil,min=1,max=75"`
	Karma         *int    `json:"karma" validate:"omitempty,gte=0"`
	Active        *bool   `json:"active"`
	VariableKarma *bool   `json:"variable_karma"`
	UsageCount    *int    `json:"usage_count" validate:"omitempty,gte=0"`
}

// IDList is a list of ids that remembers whether it was sent at all. An
// absent or null list leaves existing links alone; an empty list clears them.
type IDList struct {
	Present bool
	IDs     []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &l.IDs); err != nil {
		return err
	}
	l.Present = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l IDList) MarshalJSON() ([]byte, error) {
	if !l.Present {
		return []byte("null"), nil
	}
	return json.Marshal(l.IDs)
}

// UserEdit is the payload of an admin user edit.
type UserEdit struct {
	FirstName      *string `json:"first_name" validate:"omitnil,min=1,max=75"`
	LastName       *string `json:"last_name" validate:"omitempty,max=75"`
	Email          *string `json:"email" validate:"omitnil,email,max=200"`
	Mobile         *string `json:"mobile" validate:"omitempty,max=15"`
	Gender         *string `json:"gender" validate:"omitempty,max=10"`
	DOB            *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Orgs           IDList  `json:"orgs"`
	Department     *string `json:"department"`
	GraduationYear *string `json:"graduation_year" validate:"omitempty,len=4,numeric"`
	IGs            IDList  `json:"igs"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a payload's struct tags and reports failures by JSON
// field name as a *ValidationError.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = describeRule(fe)
	}
	return verr
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must not be empty"
	case "gte":
		return "must be >= " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "numeric":
		return "must be numeric"
	}
	return "is invalid"
}
