package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kicon/kiconapi/internal/apperr"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	oneOfParams  = regexp.MustCompile(`'[^']*'|\S+`)
)

var (
	once   sync.Once
	global *validator.Validate
)

// Engine returns the shared validator. Field names in errors are the json names.
func Engine() *validator.Validate {
	once.Do(func() {
		global = New()
	})
	return global
}

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("phone", validatePhone)

	return v
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}

	return name
}

// Check validates a struct and returns its violations in field order.
func Check(s any) []apperr.FieldViolation {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldViolation{{Field: "body", Rule: "invalid", Message: err.Error()}}
	}

	out := make([]apperr.FieldViolation, 0, len(verrs))

	for _, fe := range verrs {
		out = append(out, apperr.FieldViolation{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: Message(fe.Tag(), fe.Param()),
		})
	}

	return out
}

// fieldPath drops the root struct name from the namespace: "CreateRequest.interests[0]" -> "interests[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()

	_, rest, found := strings.Cut(ns, ".")
	if !found || rest == "" {
		return fe.Field()
	}

	return rest
}

func Message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be 10 to 15 digits, optionally prefixed with +"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.Join(OneOfValues(param), ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

// OneOfValues splits a oneof parameter, honouring single-quoted values that contain spaces.
func OneOfValues(param string) []string {
	raw := oneOfParams.FindAllString(param, -1)

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, strings.Trim(v, "'"))
	}

	return out
}
