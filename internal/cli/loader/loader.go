package loader

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"sigs.k8s.io/yaml"
)

// LoadToolArguments loads tool arguments from a YAML file and returns them as
// a JSON string, the same form the model produces for tool calls. JSON files
// work too since YAML is a superset.
func LoadToolArguments(filepath string) (string, error) {
	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Convert YAML to JSON
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse yaml: %w", err)
	}

	// Tool arguments must be a JSON object at the top level
	var args map[string]interface{}
	if err := sonic.Unmarshal(jsonData, &args); err != nil {
		return "", fmt.Errorf("arguments must be a mapping of parameter names to values")
	}

	return string(jsonData), nil
}
