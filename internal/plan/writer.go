package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Write writes a plan to a YAML file.
func Write(pl *Plan, path string) error {
	data, err := yaml.Marshal(pl)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a plan from a YAML file.
func Read(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pl Plan
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("plan.Read: %w", err)
	}

	return &pl, nil
}
