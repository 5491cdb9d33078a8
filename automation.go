package flowedit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/recoverly/flowedit/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadAutomationFile reads an automation from a JSON or YAML file (by extension)
// and checks that its graph is consistent.
func LoadAutomationFile(path string) (*domain.Automation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read automation: %w", err)
	}
	return DecodeAutomation(data, filepath.Ext(path))
}

// DecodeAutomation decodes an automation. ext selects the format: ".json",
// or YAML for anything else.
func DecodeAutomation(data []byte, ext string) (*domain.Automation, error) {
	var a domain.Automation
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse automation JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to parse automation YAML: %w", err)
		}
	}
	a.Graph = a.Graph.Normalized()
	if err := a.Graph.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
