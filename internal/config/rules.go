package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// rulesFile is the on-disk layout of RULES_FILE.
type rulesFile struct {
	Prefixes       []string        `yaml:"prefixes"`
	CollisionTypes []collisionRule `yaml:"collision_types"`
}

type collisionRule struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

// LoadRules reads classification and address-cleaning rules from a YAML
// file. Sections missing from the file keep their defaults; an empty path
// returns domain.DefaultRules.
func LoadRules(path string) (domain.Rules, error) {
	rules := domain.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if f.Prefixes != nil {
		rules.Prefixes = f.Prefixes
	}
	if f.CollisionTypes != nil {
		collision := make([]domain.CollisionRule, 0, len(f.CollisionTypes))
		for i, r := range f.CollisionTypes {
			if r.Type == "" {
				return domain.Rules{}, fmt.Errorf("rules file %s: collision_types[%d]: %w", path, i, errMissingType)
			}
			collision = append(collision, domain.CollisionRule{
				Type:     domain.CollisionType(r.Type),
				Keywords: r.Keywords,
			})
		}
		rules.CollisionRules = collision
	}

	return rules, nil
}

var errMissingType = errors.New("type is required")
