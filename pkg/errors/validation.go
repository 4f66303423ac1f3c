package errors

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidateEndpoint validates a GraphQL endpoint URL.
// It must be an absolute http or https URL with a host.
func ValidateEndpoint(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidEndpoint, "endpoint cannot be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return New(ErrCodeInvalidEndpoint, "endpoint must use http or https scheme: %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidEndpoint, err, "parse endpoint %q", raw)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidEndpoint, "endpoint has no host: %q", raw)
	}
	return nil
}

// ValidateTagID validates a tag identifier supplied by the user.
//
// Tag ids are opaque strings, but they never contain whitespace or control
// characters and are at most 64 characters long.
func ValidateTagID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "tag id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "tag id too long (max 64 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "tag id contains invalid characters: %q", id)
		}
	}
	return nil
}

// ValidatePluginID validates a plugin identifier used to look up plugin configuration.
func ValidatePluginID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "plugin id cannot be empty")
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
			return New(ErrCodeInvalidInput, "plugin id contains invalid characters: %q", id)
		}
	}
	return nil
}

// ValidatePattern validates a tag-name glob pattern (doublestar syntax).
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return New(ErrCodeInvalidPattern, "name pattern cannot be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return New(ErrCodeInvalidPattern, "invalid name pattern: %q", pattern)
	}
	return nil
}
