package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxIDLength = 128

// ValidateProjectID validates a project identifier for safety and correctness.
// Project ids double as file names in the file-backed store and as Redis key
// segments, so the rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project_id is required")
	}
	return validateID("project_id", id)
}

// ValidateTaskID applies the same rules as ValidateProjectID to a task id.
func ValidateTaskID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "task id is required")
	}
	return validateID("task id", id)
}

func validateID(field, id string) error {
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", field, pattern)
		}
	}

	return nil
}

// isoDateRegex matches the YYYY-MM-DD wire format.
var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDateString checks that s has the YYYY-MM-DD shape. An empty string
// is accepted and means "unset". Calendar validity is checked by the parser.
func ValidateDateString(field, s string) error {
	if s == "" {
		return nil
	}
	if !isoDateRegex.MatchString(s) {
		return New(ErrCodeInvalidDate, "%s must be formatted as YYYY-MM-DD, got %q", field, s)
	}
	return nil
}
