package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PositionedConfig keeps the YAML node tree next to the decoded Config so
// validation messages can point at a line
type PositionedConfig struct {
	Config   *Config
	Root     *yaml.Node
	FilePath string
}

// ParseWithPosition reads and decodes path, retaining node positions
func ParseWithPosition(path string) (*PositionedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config in %s: %w", path, err)
	}

	return &PositionedConfig{Config: cfg, Root: &root, FilePath: path}, nil
}

// Position returns the line and column of a dotted field path such as
// "terminal.font_size". Sequence items are addressed by index
// ("packages.skip.1"). Zero means unknown.
func (pc *PositionedConfig) Position(fieldPath string) (line, column int) {
	if pc == nil || pc.Root == nil || len(pc.Root.Content) == 0 {
		return 0, 0
	}

	node := pc.Root.Content[0]
	for _, part := range strings.Split(fieldPath, ".") {
		node = childNode(node, part)
		if node == nil {
			return 0, 0
		}
	}
	return node.Line, node.Column
}

func childNode(node *yaml.Node, key string) *yaml.Node {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				return node.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		var idx int
		if _, err := fmt.Sscanf(key, "%d", &idx); err == nil && idx >= 0 && idx < len(node.Content) {
			return node.Content[idx]
		}
	}
	return nil
}
