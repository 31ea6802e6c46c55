// Package validation holds the field rules applied to post and comment payloads
// before anything is written.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinTitleLength          = 2
	MaxTitleLength          = 200
	MinPostContentLength    = 5
	MinCommentContentLength = 2
)

// Errors maps a JSON field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldError is returned by the single-field rules.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Title checks a post title. Whitespace is trimmed only for the length check;
// the original value is returned.
func Title(value string) (string, error) {
	n := trimmedLen(value)
	switch {
	case n < MinTitleLength:
		return value, &FieldError{"title", fmt.Sprintf("Title must be at least %d characters long.", MinTitleLength)}
	case utf8.RuneCountInString(value) > MaxTitleLength:
		return value, &FieldError{"title", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxTitleLength)}
	}
	return value, nil
}

func PostContent(value string) (string, error) {
	if trimmedLen(value) < MinPostContentLength {
		return value, &FieldError{"content", fmt.Sprintf("Content must be at least %d characters long.", MinPostContentLength)}
	}
	return value, nil
}

func CommentContent(value string) (string, error) {
	if trimmedLen(value) < MinCommentContentLength {
		return value, &FieldError{"content", fmt.Sprintf("Comment content must be at least %d characters long.", MinCommentContentLength)}
	}
	return value, nil
}

func trimmedLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

// struct tag -> rule
var rules = map[string]func(string) (string, error){
	"post_title":      Title,
	"post_content":    PostContent,
	"comment_content": CommentContent,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	for tag, rule := range rules {
		rule := rule
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, err := rule(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// Struct validates s against its `validate` tags. Every failing field is
// reported; the result is nil or Errors keyed by JSON field name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	if rule, ok := rules[fe.Tag()]; ok {
		var ferr *FieldError
		if _, err := rule(fmt.Sprint(fe.Value())); errors.As(err, &ferr) {
			return ferr.Message
		}
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "alphanum":
		return "Only letters and digits are allowed."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
