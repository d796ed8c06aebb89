package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"all four classes", "Correct-Horse9x", ""},
		{"minimum length boundary", "Ab1!Ab1!Ab1!", ""},
		{"maximum length boundary", "Z9?" + strings.Repeat("q", 125), ""},
		{"one under minimum", "Ab1!Ab1!Ab1", "at least 12"},
		{"one over maximum", "Z9?" + strings.Repeat("q", 126), "exceed 128"},
		{"missing uppercase", "correct-horse9x", "uppercase"},
		{"missing lowercase", "CORRECT-HORSE9X", "lowercase"},
		{"missing digit", "Correct-Horse!x", "digit"},
		{"missing punctuation", "CorrectHorse9x", "punctuation"},
		{"accented uppercase counts", "Ålesund-ferry7", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"plain", "finderskeeper", false},
		{"digits and separators inside", "lost_and-found42", false},
		{"three characters", "bob", false},
		{"thirty characters", strings.Repeat("n", 30), false},
		{"two characters", "bo", true},
		{"thirty one characters", strings.Repeat("n", 31), true},
		{"leading hyphen", "-night-owl", true},
		{"trailing underscore", "night_owl_", true},
		{"whitespace", "night owl", true},
		{"punctuation outside the charset", "night.owl", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	// 64-char local part plus a domain that lands exactly on the limit.
	longest := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain address", "finder@example.org", false},
		{"plus tag and subdomain", "finder+lost@mail.example.org", false},
		{"at the length limit", longest, false},
		{"over the length limit", "a" + longest, true},
		{"no at sign", "finder.example.org", true},
		{"empty domain", "finder@", true},
		{"doubled at sign", "finder@@example.org", true},
		{"space in local part", "lost finder@example.org", true},
		{"domain ends with a dot", "finder@example.org.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
