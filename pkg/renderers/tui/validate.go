package tui

import (
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formstudio/pkg/model"
)

var (
	errRequired  = errors.New("a value is required")
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,}$`)
)

// fieldValidator checks typed input for field. Empty input is accepted for
// optional fields.
func fieldValidator(field model.Field) func(string) error {
	return func(raw string) error {
		value := strings.TrimSpace(raw)
		if value == "" {
			if field.IsRequired {
				return errRequired
			}
			return nil
		}
		switch field.Type {
		case model.FieldTypeEmail:
			if _, err := mail.ParseAddress(value); err != nil {
				return errors.New("enter an email address")
			}
		case model.FieldTypeNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return errors.New("enter a number")
			}
		case model.FieldTypeDate:
			if _, err := time.Parse(time.DateOnly, value); err != nil {
				return errors.New("enter a date as YYYY-MM-DD")
			}
		case model.FieldTypePhone:
			if !phonePattern.MatchString(value) {
				return errors.New("enter a phone number")
			}
		}
		return nil
	}
}
