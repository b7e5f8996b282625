package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// PEP 508 syntax validation is done separately by ValidatePythonPackageName.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// pythonPackageNameRegex matches valid Python package names (PEP 508).
var pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)

// ValidatePythonPackageName validates a Python package name per PEP 508.
func ValidatePythonPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !pythonPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Python package name: %q", name)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
