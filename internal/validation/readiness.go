package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
)

// ErrNotReady is wrapped by every readiness failure.
var ErrNotReady = errors.New("not ready")

// FieldError describes one missing or invalid field.
type FieldError struct {
	Field string
	Rule  string
}

// Error lists the fields that keep an entity from being saved.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s (%s)", strings.ToLower(f.Field), describeRule(f.Rule))
	}
	return fmt.Sprintf("%s: %s", ErrNotReady, strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error {
	return ErrNotReady
}

// Has reports whether field failed validation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if strings.EqualFold(f.Field, field) {
			return true
		}
	}
	return false
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("palette_color", func(fl validator.FieldLevel) bool {
			return slices.Contains(constants.ColorPalette, strings.ToUpper(fl.Field().String()))
		})
		_ = validate.RegisterValidation("palette_emoji", func(fl validator.FieldLevel) bool {
			return slices.Contains(constants.EmojiPalette, fl.Field().String())
		})
		_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return models.Weekday(fl.Field().Int()).IsValid()
		})
	})
	return validate
}

// Tracker checks that t can be created or saved. The title is checked in its
// trimmed form.
func Tracker(t models.Tracker) error {
	t.Title = strings.TrimSpace(t.Title)
	err := instance().Struct(t)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &Error{}
	for _, fe := range ve {
		field := fe.StructField()
		// dive errors are reported per element; keep one entry per field
		if strings.HasPrefix(field, "Schedule[") {
			field = "Schedule"
		}
		if out.Has(field) {
			continue
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Rule: fe.Tag()})
	}
	return out
}

// CategoryTitle checks a category title for creation or rename.
func CategoryTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &Error{Fields: []FieldError{{Field: "Title", Rule: "required"}}}
	}
	if strings.EqualFold(title, constants.PinnedCategoryTitle) {
		return &Error{Fields: []FieldError{{Field: "Title", Rule: "reserved"}}}
	}
	return nil
}

func describeRule(rule string) string {
	switch rule {
	case "required":
		return "missing"
	case "max":
		return fmt.Sprintf("longer than %d characters", constants.MaxTitleLength)
	case "min":
		return "no days selected"
	case "palette_color":
		return "not a palette color"
	case "palette_emoji":
		return "not a palette emoji"
	case "weekday":
		return "unknown weekday"
	case "uuid":
		return "malformed id"
	case "reserved":
		return "reserved name"
	default:
		return rule
	}
}
