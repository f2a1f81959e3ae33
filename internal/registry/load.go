package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML registry definition. Families and networks missing from the
// file are taken from DefaultDefinition, so a file may only list assets.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", path, err)
	}

	defaults := DefaultDefinition()
	if len(def.Families) == 0 {
		def.Families = defaults.Families
	}
	if len(def.Networks) == 0 {
		def.Networks = defaults.Networks
	}

	r, err := New(def)
	if err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", path, err)
	}
	return r, nil
}
