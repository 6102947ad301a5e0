// Package catalog defines the records produced by API discovery.
//
// An [APIRecord] is built once per registry entry and never modified
// afterwards. Its [SpecInfo] describes the documentation format the registry
// advertised for the API, if any.
package catalog

import (
	"fmt"
	"strings"
)

// SpecType classifies the documentation format of an API.
type SpecType string

const (
	// SpecUnknown means the registry entry carried no recognized tag.
	SpecUnknown SpecType = ""
	SpecOpenAPI SpecType = "openapi"
	// SpecSwagger is the legacy (pre-3.0) name of the OpenAPI format.
	SpecSwagger SpecType = "swagger"
)

// DefaultAuthentication is used when a registry entry does not name an auth scheme.
const DefaultAuthentication = "none"

// SpecTypes lists the recognized spec types in tag-matching priority order.
var SpecTypes = []SpecType{SpecOpenAPI, SpecSwagger}

// ParseSpecType converts user input, such as a CLI argument, to a SpecType.
// Matching is case-insensitive and ignores surrounding whitespace. The empty
// string parses to SpecUnknown. Stored configs are not parsed this way; see
// integration.Config.Type.
func ParseSpecType(s string) (SpecType, error) {
	switch t := SpecType(strings.ToLower(strings.TrimSpace(s))); t {
	case SpecUnknown, SpecOpenAPI, SpecSwagger:
		return t, nil
	default:
		return SpecUnknown, fmt.Errorf("unknown spec type %q", s)
	}
}

// Known reports whether t is one of the recognized formats.
func (t SpecType) Known() bool {
	return t == SpecOpenAPI || t == SpecSwagger
}

// Label returns a display name ("OpenAPI", "Swagger", or "-" when unset).
func (t SpecType) Label() string {
	switch t {
	case SpecOpenAPI:
		return "OpenAPI"
	case SpecSwagger:
		return "Swagger"
	default:
		return "-"
	}
}

// SpecInfo is the documentation metadata derived from a registry entry.
//
// Zero values: Type is SpecUnknown and URL is empty when the entry has no
// recognized tag. Authentication defaults to [DefaultAuthentication] and
// RateLimits to an empty, non-nil map.
type SpecInfo struct {
	Type           SpecType       `json:"type,omitempty" yaml:"type,omitempty"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	Authentication string         `json:"authentication" yaml:"authentication"`
	RateLimits     map[string]any `json:"rate_limits" yaml:"rate_limits"`
}

// APIRecord is a single API discovered in a registry.
type APIRecord struct {
	Name             string   `json:"name" yaml:"name"`                           // May be empty if the registry omitted it
	Endpoint         string   `json:"endpoint" yaml:"endpoint"`                   // Base URL of the API
	DocumentationURL string   `json:"documentation_url" yaml:"documentation_url"` // Human-readable docs
	Specs            SpecInfo `json:"specs" yaml:"specs"`
}
