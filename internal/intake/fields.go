package intake

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// Field is one named form value, used to check required fields in order.
type Field struct {
	Name  string
	Value string
}

// RequireAll returns a ValidationError for the first field that is blank
// after trimming whitespace.
func RequireAll(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return Missing(f.Name)
		}
	}
	return nil
}

// ValidEmail reports whether s has a local@domain shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// OptionalText trims s and returns nil when nothing is left.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// YesNo converts a yes/no selector to a bool. A blank selector takes the
// form default.
func YesNo(s string, blankDefault bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return blankDefault
	case "yes":
		return true
	default:
		return false
	}
}
