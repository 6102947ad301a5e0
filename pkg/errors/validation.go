package errors

import (
	"net/url"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateAPIName validates a key of the integration mapping.
// Names are free-form but must be non-empty, printable and bounded in length.
func ValidateAPIName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "API name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "API name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "API name contains invalid control characters")
		}
	}
	return nil
}

// ValidateDomain validates a bare host name (optionally with a port) used for
// endpoint resolution. Schemes, paths and whitespace are rejected because the
// domain is spliced into a URL template.
func ValidateDomain(domain string) error {
	if domain == "" {
		return New(ErrCodeInvalidDomain, "domain cannot be empty")
	}
	if strings.Contains(domain, "://") {
		return New(ErrCodeInvalidDomain, "domain must not include a scheme: %q", domain)
	}
	if strings.ContainsAny(domain, "/?#@\\") {
		return New(ErrCodeInvalidDomain, "domain contains invalid characters: %q", domain)
	}
	for _, r := range domain {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidDomain, "domain contains whitespace or control characters")
		}
	}
	return nil
}

// ValidateURL validates a registry URL. It must be absolute and use the http
// or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
