// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as the client sends them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the struct tags of a form. Failures wrap
// service.ErrValidation and name the first offending field.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", service.ErrValidation, fe.Field())
	case "numeric", "number":
		return fmt.Errorf("%w: %s must be a number", service.ErrValidation, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", service.ErrValidation, fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("%w: %s must be a valid email address", service.ErrValidation, fe.Field())
	default:
		return fmt.Errorf("%w: %s is invalid", service.ErrValidation, fe.Field())
	}
}

// RegisterForm is the payload of POST /register.
type RegisterForm struct {
	Username string `form:"username" validate:"required,max=64"`
	Password string `form:"password" validate:"required,max=256"`
	Email    string `form:"email" validate:"omitempty,email,max=254"`
}

// RegisterFormFrom reads and validates a RegisterForm.
func RegisterFormFrom(v url.Values) (*RegisterForm, error) {
	f := &RegisterForm{
		Username: strings.TrimSpace(v.Get("username")),
		Password: v.Get("password"),
		Email:    strings.TrimSpace(v.Get("email")),
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// MoodForm is the payload of POST /mood. The score range is checked by the
// model so that it maps to its own status.
type MoodForm struct {
	Score string `form:"score" validate:"required,numeric"`
	Notes string `form:"notes" validate:"max=2000"`
}

// MoodEntryFrom reads and validates a mood payload.
func MoodEntryFrom(v url.Values) (*model.MoodEntry, error) {
	f := &MoodForm{
		Score: strings.TrimSpace(v.Get("score")),
		Notes: v.Get("notes"),
	}
	if err := Validate(f); err != nil {
		return nil, err
	}

	score, err := strconv.Atoi(f.Score)
	if err != nil {
		return nil, fmt.Errorf("%w: score must be a whole number", service.ErrValidation)
	}
	return &model.MoodEntry{Score: score, Notes: optional(f.Notes)}, nil
}

// ActivityForm is the payload of POST /activity.
type ActivityForm struct {
	Activity string `form:"activity" validate:"required,max=200"`
	Duration string `form:"duration" validate:"required,numeric"`
}

// ActivityEntryFrom reads and validates an activity payload.
func ActivityEntryFrom(v url.Values) (*model.ActivityEntry, error) {
	f := &ActivityForm{
		Activity: strings.TrimSpace(v.Get("activity")),
		Duration: strings.TrimSpace(v.Get("duration")),
	}
	if err := Validate(f); err != nil {
		return nil, err
	}

	duration, err := strconv.Atoi(f.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: duration must be a whole number of minutes", service.ErrValidation)
	}
	return &model.ActivityEntry{Activity: f.Activity, Duration: duration}, nil
}

// JournalForm is the payload of POST /journal. Tags are comma-separated.
type JournalForm struct {
	Entry string `form:"entry" validate:"required,max=20000"`
	Tags  string `form:"tags" validate:"max=1000"`
}

// JournalEntryFrom reads and validates a journal payload.
func JournalEntryFrom(v url.Values) (*model.JournalEntry, error) {
	f := &JournalForm{
		Entry: v.Get("entry"),
		Tags:  v.Get("tags"),
	}
	if strings.TrimSpace(f.Entry) == "" {
		f.Entry = ""
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return &model.JournalEntry{Entry: f.Entry, Tags: ParseTags(f.Tags)}, nil
}

// ParseTags splits a comma-separated tag list, dropping blanks and
// duplicates while keeping the first-seen order.
func ParseTags(raw string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// SearchForm is the payload of POST /icd/search. The minimum length is
// enforced by the condition service.
type SearchForm struct {
	Query string `form:"query" validate:"required,max=200"`
}

// SearchFormFrom reads and validates a SearchForm.
func SearchFormFrom(v url.Values) (*SearchForm, error) {
	f := &SearchForm{Query: v.Get("query")}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// ConditionLinkForm is the payload of POST /icd/links.
type ConditionLinkForm struct {
	EntityID    string `form:"entity_id" validate:"required,max=256"`
	EntityTitle string `form:"entity_title" validate:"max=512"`
	Notes       string `form:"notes" validate:"max=2000"`
}

// ConditionLinkFrom reads and validates a condition link payload.
func ConditionLinkFrom(v url.Values) (*model.ConditionLink, error) {
	f := &ConditionLinkForm{
		EntityID:    strings.TrimSpace(v.Get("entity_id")),
		EntityTitle: strings.TrimSpace(v.Get("entity_title")),
		Notes:       v.Get("notes"),
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return &model.ConditionLink{
		EntityID:    f.EntityID,
		EntityTitle: f.EntityTitle,
		Notes:       optional(f.Notes),
	}, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
