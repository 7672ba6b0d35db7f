package validation

import "testing"

func TestIsSlug(t *testing.T) {
	valid := []string{"techfest", "tech-fest-2025", "a1"}
	invalid := []string{"", "Tech", "tech--fest", "-tech", "tech_fest", "tech fest"}

	for _, s := range valid {
		if !IsSlug(s) {
			t.Errorf("IsSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsSlug(s) {
			t.Errorf("IsSlug(%q) = true, want false", s)
		}
	}
}

func TestStringValidationOptional(t *testing.T) {
	if !NewStringValidation("  ").WithRequired(false).WithMinLength(3).Validate() {
		t.Error("blank optional value should pass")
	}
	if NewStringValidation("ab").WithMinLength(3).Validate() {
		t.Error("short value should fail")
	}
	if !NewStringValidation("+91 98765-43210").WithPattern(CompiledPatterns.Phone).Validate() {
		t.Error("phone number should match")
	}
}

func TestFloatRange(t *testing.T) {
	r := FloatRange{Min: 0, Max: 10}
	in, out := 8.5, 10.5
	if !r.Contains(nil) || !r.Contains(&in) || r.Contains(&out) {
		t.Error("unexpected range result")
	}
}

func TestIsEmail(t *testing.T) {
	if !IsEmail("Student@Campus.edu") {
		t.Error("mixed case email should be accepted")
	}
	if IsEmail("not-an-email") {
		t.Error("invalid email accepted")
	}
}
