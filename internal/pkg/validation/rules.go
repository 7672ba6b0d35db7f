package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	EmailPattern     = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`
	SlugPattern      = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
	PhonePattern     = `^\+?[0-9][0-9 \-]{6,19}$`
	StudentIDPattern = `^[A-Za-z0-9\-/]{3,32}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100
	SlugMaxLength = 80
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email     *regexp.Regexp
	Slug      *regexp.Regexp
	Phone     *regexp.Regexp
	StudentID *regexp.Regexp
}{
	Email:     regexp.MustCompile(EmailPattern),
	Slug:      regexp.MustCompile(SlugPattern),
	Phone:     regexp.MustCompile(PhonePattern),
	StudentID: regexp.MustCompile(StudentIDPattern),
}

// StringValidation checks a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a required string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}
	n := len([]rune(v.Value))
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// FloatRange checks an optional float against inclusive bounds.
type FloatRange struct {
	Min, Max float64
}

// Contains reports whether value is nil or inside the range.
func (r FloatRange) Contains(value *float64) bool {
	if value == nil {
		return true
	}
	return *value >= r.Min && *value <= r.Max
}

// IsSlug reports whether s is a lower-kebab slug.
func IsSlug(s string) bool {
	return NewStringValidation(s).WithMaxLength(SlugMaxLength).WithPattern(CompiledPatterns.Slug).Validate()
}

// IsEmail reports whether s looks like an e-mail address.
func IsEmail(s string) bool {
	return NewStringValidation(strings.ToLower(s)).WithPattern(CompiledPatterns.Email).Validate()
}
