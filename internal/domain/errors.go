package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnauthenticated is returned when no caller identity is available at the
// time of an operation.
var ErrUnauthenticated = errors.New("no authenticated caller")

// Field names used in validation errors. These match the JSON field names of
// the capture form so the presentation layer can attach messages to inputs.
const (
	FieldKind            = "kind"
	FieldStartTime       = "start_time"
	FieldEndTime         = "end_time"
	FieldDurationMinutes = "duration_minutes"
	FieldAmount          = "amount"
	FieldUnit            = "unit"
	FieldDiaperKind      = "diaper_kind"
	FieldCustomName      = "custom_name"
)

// FieldErrors maps form field names to validation problems. A non-empty set
// means the draft was rejected before any store call.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", field, e[field])
	}
	return b.String()
}

// Has reports whether the set names the given field.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}
