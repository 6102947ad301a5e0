package discovery_test

import (
	"fmt"

	"github.com/matzehuels/apiscout/pkg/discovery"
)

func ExampleParseSpecs() {
	info := discovery.ParseSpecs(map[string]any{
		"tags":     []any{"openapi"},
		"specUrl":  "https://petstore.example.com/openapi.json",
		"authType": "apiKey",
	})
	fmt.Println(info.Type, info.URL, info.Authentication, len(info.RateLimits))
	// Output: openapi https://petstore.example.com/openapi.json apiKey 0
}
