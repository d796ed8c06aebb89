package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxDescriptionLen = 2000
	maxTitleLen       = 120
	maxLocationLen    = 200
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-]{6,19}$`)

// ValidateClaimDescription checks the ownership proof text of a claim.
func ValidateClaimDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("claim description is required")
	}
	if len(description) > maxDescriptionLen {
		return fmt.Errorf("claim description must not exceed %d characters", maxDescriptionLen)
	}
	return nil
}

// ValidateItemTitle checks an item's title.
func ValidateItemTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("item title is required")
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("item title must not exceed %d characters", maxTitleLen)
	}
	return nil
}

// ValidateItemLocation checks where an item was lost or found.
func ValidateItemLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return fmt.Errorf("item location is required")
	}
	if len(location) > maxLocationLen {
		return fmt.Errorf("item location must not exceed %d characters", maxLocationLen)
	}
	return nil
}

// ValidatePhone checks an optional contact phone number. Empty is allowed.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number format")
	}
	return nil
}
