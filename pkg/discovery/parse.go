package discovery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

// Raw registry field names.
const (
	fieldName     = "name"
	fieldEndpoint = "endpoint"
	fieldDocURL   = "docUrl"
	fieldTags     = "tags"
	fieldSpecURL  = "specUrl"
	fieldAuthType = "authType"
	fieldLimits   = "limits"
)

// NewRecord builds an APIRecord from one raw registry entry. Missing fields
// become empty strings.
func NewRecord(entry map[string]any) catalog.APIRecord {
	return catalog.APIRecord{
		Name:             stringField(entry, fieldName, ""),
		Endpoint:         stringField(entry, fieldEndpoint, ""),
		DocumentationURL: stringField(entry, fieldDocURL, ""),
		Specs:            ParseSpecs(entry),
	}
}

// ParseSpecs derives SpecInfo from a raw registry entry.
//
// The spec type comes from "tags": "openapi" is checked before "swagger",
// and whichever matches first also copies "specUrl". Entries with neither
// tag leave Type and URL unset. A list matches whole elements only; a single
// string matches any substring, so "openapi-3" counts as openapi.
func ParseSpecs(entry map[string]any) catalog.SpecInfo {
	info := catalog.SpecInfo{
		Authentication: stringField(entry, fieldAuthType, catalog.DefaultAuthentication),
		RateLimits:     map[string]any{},
	}

	for _, t := range catalog.SpecTypes {
		if hasTag(entry[fieldTags], string(t)) {
			info.Type = t
			info.URL = stringField(entry, fieldSpecURL, "")
			break
		}
	}

	if limits, ok := entry[fieldLimits].(map[string]any); ok {
		info.RateLimits = limits
	}
	return info
}

// stringField returns entry[key] as a string. Missing and null values give
// def; non-string scalars are formatted with %v.
func stringField(entry map[string]any, key, def string) string {
	switch v := entry[key].(type) {
	case nil:
		return def
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// hasTag reports whether the raw "tags" value contains tag: as an element
// of a JSON list, or as a substring of a single string. Other types never match.
func hasTag(tags any, tag string) bool {
	switch v := tags.(type) {
	case string:
		return strings.Contains(v, tag)
	case []any:
		return slices.ContainsFunc(v, func(item any) bool {
			s, ok := item.(string)
			return ok && s == tag
		})
	default:
		return false
	}
}
