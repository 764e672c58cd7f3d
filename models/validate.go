// ABOUTME: Form-boundary validation for contact and deal inputs
// ABOUTME: Collects per-field messages into a ValidationError
package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError maps field names to the reason they were rejected.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidEmail reports whether s looks like user@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks the required contact fields.
func (in ContactInput) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "Name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		verr.add("email", "Email is required")
	} else if !ValidEmail(in.Email) {
		verr.add("email", "Please enter a valid email address")
	}
	if strings.TrimSpace(in.Phone) == "" {
		verr.add("phone", "Phone is required")
	}

	return verr.orNil()
}

// Validate checks the required deal fields. Value must parse as a number
// greater than zero.
func (in DealInput) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "Deal name is required")
	}

	value := strings.TrimSpace(in.Value)
	if value == "" {
		verr.add("value", "Deal value is required")
	} else if v, err := strconv.ParseFloat(value, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		verr.add("value", "Please enter a valid amount")
	}

	if in.Stage == "" {
		verr.add("stage", "Stage is required")
	} else if !in.Stage.Valid() {
		verr.add("stage", fmt.Sprintf("Unknown stage %q", in.Stage))
	}

	if in.ContactID != "" {
		if _, err := strconv.Atoi(in.ContactID); err != nil {
			verr.add("contactId", "Contact must be a numeric Id")
		}
	}

	return verr.orNil()
}
