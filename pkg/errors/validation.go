package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateQueryValue checks a value before it is interpolated into a GraphQL
// document (owner, repository name, artifact id, label).
//
// The rules are intentionally conservative:
//   - No empty values
//   - No control characters
//   - No quotes or backslashes (they would terminate the GraphQL string)
//   - Maximum length of 256 characters
func ValidateQueryValue(value string) error {
	if value == "" {
		return New(ErrCodeInvalidValue, "value cannot be empty")
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidValue, "value too long (max 256 characters)")
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidValue, "value contains invalid control characters")
		}
	}
	if strings.ContainsAny(value, "\"\\") {
		return New(ErrCodeInvalidValue, "value contains quotes or backslashes: %q", value)
	}
	return nil
}

// ValidatePath validates a file path within a repository for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes or quotes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.ContainsAny(path, "\\\"") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes or quotes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// mavenIDRegex matches valid Maven groupId and artifactId values.
var mavenIDRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

// ValidateMavenID validates a Maven groupId or artifactId.
func ValidateMavenID(id string) error {
	if err := ValidateQueryValue(id); err != nil {
		return err
	}
	if !mavenIDRegex.MatchString(id) {
		return New(ErrCodeInvalidValue, "invalid Maven identifier: %q", id)
	}
	return nil
}
