package integration

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

// DefaultPath is the mapping file used when New is given an empty path.
const DefaultPath = "config/api_mapping.json"

// Config is the integration configuration of one API. Only the "type" key
// is interpreted; everything else is passed through to hooks unchanged.
type Config map[string]any

// TypeKey is the Config key naming the spec format.
const TypeKey = "type"

// Type returns the configured spec type. The "type" value must be exactly
// "openapi" or "swagger"; anything else, including other casings, is
// SpecUnknown and dispatches nothing.
func (c Config) Type() catalog.SpecType {
	s, _ := c[TypeKey].(string)
	for _, t := range catalog.SpecTypes {
		if s == string(t) {
			return t
		}
	}
	return catalog.SpecUnknown
}

// Clone returns a shallow copy of c.
func (c Config) Clone() Config {
	return maps.Clone(c)
}

// Mapping maps API names to their integration configuration.
type Mapping map[string]Config

// Clone returns a copy of m whose Config values are also copied.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for name, cfg := range m {
		out[name] = cfg.Clone()
	}
	return out
}

// readMapping reads and decodes the mapping file. A JSON null decodes to an
// empty mapping. Entries whose value is not a JSON object are left out and
// their names returned as skipped; the file itself must be an object.
func readMapping(path string) (m Mapping, skipped []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	m = make(Mapping, len(raw))
	for name, v := range raw {
		cfg, ok := v.(map[string]any)
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		m[name] = cfg
	}
	slices.Sort(skipped)
	return m, skipped, nil
}

// writeMapping replaces path with the indented JSON encoding of m. The data
// is written to a temporary file in the same directory and renamed over the
// target, so readers never see a partial file.
func writeMapping(path string, m Mapping) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write mapping: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mapping: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace mapping: %w", err)
	}
	return nil
}
