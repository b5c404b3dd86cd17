package items

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/najdeno/internal/model"
)

// Input is a submitted item form.
type Input struct {
	Title       string
	Description string
	Category    string
	Location    string
	ContactInfo string

	// Status is optional; empty keeps the current status (Pending on create).
	Status string

	// Image is an optional uploaded photo.
	Image io.Reader
}

// Field error messages.
const (
	msgRequired = "This field is required."
	msgChoice   = "Select a valid choice."
)

// ValidationError lists per-field problems with a submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid item: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Normalize trims surrounding whitespace from the text fields.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	in.Status = strings.TrimSpace(in.Status)
	return in
}

// Validate checks a normalized submission. It returns nil when the input
// can be stored.
func Validate(in Input) *ValidationError {
	verr := &ValidationError{}

	required := []struct{ field, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
		{"location", in.Location},
	}
	for _, r := range required {
		if r.value == "" {
			verr.add(r.field, msgRequired)
		}
	}

	limits := []struct {
		field, value string
		max          int
	}{
		{"title", in.Title, model.MaxTitleLength},
		{"location", in.Location, model.MaxLocationLength},
		{"contact_info", in.ContactInfo, model.MaxContactInfoLength},
	}
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.value); n > l.max {
			verr.add(l.field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", l.max, n))
		}
	}

	if in.Category != "" && !model.ValidCategory(in.Category) {
		verr.add("category", msgChoice)
	}
	if in.Status != "" && !model.ValidStatus(in.Status) {
		verr.add("status", msgChoice)
	}

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}
