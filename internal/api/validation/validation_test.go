package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_numbers", "user123@example456.com", true},
		{"valid_uppercase", "UPPER@EXAMPLE.COM", true},
		{"invalid_empty", "", false},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"invalid_empty_domain", "user@.com", false},
		{"too_long", "a" + string(make([]byte, 250)) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"valid_v4", "7f9c24e5-2f88-4a1c-9c3d-1b2a3c4d5e6f", true},
		{"valid_uppercase", "7F9C24E5-2F88-4A1C-9C3D-1B2A3C4D5E6F", true},
		{"invalid_empty", "", false},
		{"invalid_text", "not-a-uuid", false},
		{"invalid_missing_group", "7f9c24e5-2f88-4a1c-9c3d", false},
		{"invalid_no_dashes", "7f9c24e52f884a1c9c3d1b2a3c4d5e6f", false},
		{"invalid_non_hex", "7f9c24e5-2f88-4a1c-9c3d-1b2a3c4d5ezz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidUUID(tt.id)
			assert.Equal(t, tt.valid, result, "UUID: %s", tt.id)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean_passthrough", "hello world", "hello world"},
		{"strips_null_bytes", "hello\x00world", "helloworld"},
		{"keeps_newline_and_tab", "line1\nline2\tend", "line1\nline2\tend"},
		{"strips_control_chars", "bell\x07escape\x1b", "bellescape"},
		{"mixed", "hello\x00world\n\tok\x07", "helloworld\n\tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.input))
		})
	}
}
