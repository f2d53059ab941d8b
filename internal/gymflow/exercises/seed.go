package exercises

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Exercises []Exercise `yaml:"exercises"`
}

// LoadSeed reads the exercise catalog seed from a YAML file.
func LoadSeed(path string) ([]Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]Exercise, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unmarshal seed: %w", err)
	}

	seen := make(map[string]bool, len(seed.Exercises))
	for i, e := range seed.Exercises {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.MuscleGroup) == "" {
			return nil, fmt.Errorf("seed exercise #%d: id, name and muscle_group are required", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("seed exercise #%d: %w: %s", i, errDuplicateSeedID, e.ID)
		}
		seen[e.ID] = true
	}
	return seed.Exercises, nil
}

var errDuplicateSeedID = errors.New("duplicate id")
