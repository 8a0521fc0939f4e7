package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^[\+]?[0-9\s\-\(\)]+$`)
	objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

const dateOnly = "2006-01-02"

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tag, err))
		}
	}
	must("username", matchString(usernamePattern))
	must("phone", matchString(phonePattern))
	must("role", func(fl validator.FieldLevel) bool { return domain.Role(fl.Field().String()).Valid() })
	must("agency", func(fl validator.FieldLevel) bool { return domain.Agency(fl.Field().String()).Valid() })
	must("clientstatus", func(fl validator.FieldLevel) bool { return domain.ClientStatus(fl.Field().String()).Valid() })
	must("priority", func(fl validator.FieldLevel) bool { return domain.Priority(fl.Field().String()).Valid() })
	// assignee is an object id, or "" to clear the assignment
	must("assignee", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || objectIDPattern.MatchString(s)
	})
	must("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})

	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Every failed constraint
// is reported, not just the first.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Internal(err)
	}
	details := make([]domain.FieldError, 0, len(ve))
	for _, fe := range ve {
		details = append(details, domain.FieldError{Field: fe.Field(), Message: fieldError(fe)})
	}
	return domain.Validation(details)
}

// bindAndValidate binds the request into req and validates it. Malformed
// payloads are reported as validation failures.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}
	return c.Validate(req)
}

func bindError(err error) error {
	msg := "Invalid request payload"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
	}
	return domain.Validation([]domain.FieldError{{Field: "body", Message: msg}})
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// fieldName reports fields by their wire name: json first, then query.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s characters or less", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "username":
		return "Username must contain only letters, numbers, and underscores"
	case "phone":
		return "Invalid phone number format"
	case "role":
		return "Invalid role"
	case "agency":
		return "Invalid agency"
	case "clientstatus":
		return "Invalid status"
	case "priority":
		return "Invalid priority"
	case "isodate":
		return field + " must be a valid ISO 8601 date"
	case "iso4217":
		return "Currency must be a 3-letter ISO 4217 code"
	case "mongodb", "assignee":
		return field + " must be a valid id"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateOnly, s)
}

// optionalDate parses a validated date pointer. nil stays nil.
func optionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}

// inclusiveUpperDate parses an upper bound. A plain YYYY-MM-DD covers the
// whole day, so it resolves to the last instant of that day.
func inclusiveUpperDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return &end
	}
	return optionalDate(&s)
}
