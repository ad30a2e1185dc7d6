// Package validation evaluates the declarative constraint sets attached to
// request shapes (go-playground/validator struct tags) and reports every
// violated constraint at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"userapi/internal/model"
)

// TagRequiredOne is the rule reported when a partial update sets no field.
const TagRequiredOne = "required_one"

// Violation describes a single failed constraint.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error is returned when input fails its constraint set. It is always the
// caller's fault and never a server fault.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewError builds an Error from a single violation.
func NewError(field, rule, message string) *Error {
	return &Error{Violations: []Violation{{Field: field, Rule: rule, Message: message}}}
}

// Validator is safe for concurrent use; build one per process.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the service's cross-field rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	v.RegisterStructValidation(patchHasField, model.UserPatch{})
	return &Validator{v: v}
}

// Struct validates s against its tags. Constraint failures come back as *Error;
// anything else (e.g. a non-struct argument) is returned unchanged.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &Error{Violations: make([]Violation, 0, len(ves))}
	for _, fe := range ves {
		out.Violations = append(out.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// patchHasField enforces that a partial update carries at least one field.
func patchHasField(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.UserPatch)
	if p.Empty() {
		sl.ReportError(nil, "", "", TagRequiredOne, "name age avatar")
	}
}

// fieldName reports fields by their wire name (json, then query tag).
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", f)
	case "excludes":
		return fmt.Sprintf("%s must not contain %q", f, fe.Param())
	case TagRequiredOne:
		return "at least one field required: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("%s failed %s", f, fe.Tag())
	}
}
