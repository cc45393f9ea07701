package roles

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule maps a keyword set to an ordered list of candidate roles.
// A role's position in Roles is its priority within the rule.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Roles    []Role   `yaml:"roles"`
}

// Matches reports whether any keyword occurs in the lowercased topic.
func (r Rule) Matches(lowerTopic string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lowerTopic, kw) {
			return true
		}
	}
	return false
}

// Rules is an ordered rule table. Earlier rules have higher priority.
type Rules []Rule

type rulesFile struct {
	Rules Rules `yaml:"rules"`
}

// DefaultRules returns the embedded rule table.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("roles: embedded rules are invalid: %v", err))
	}
	return rules
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table.
// Keywords are normalized to lower case.
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := file.Rules.Validate(); err != nil {
		return nil, err
	}
	for i := range file.Rules {
		for j, kw := range file.Rules[i].Keywords {
			file.Rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return file.Rules, nil
}

// Validate checks every rule has a name, at least one keyword and only known roles.
func (rs Rules) Validate() error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrInvalidRules)
	}
	seen := make(map[string]bool, len(rs))
	for i, r := range rs {
		if r.Name == "" {
			return fmt.Errorf("%w: rule %d: name is required", ErrInvalidRules, i)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: rule %d: duplicate name %q", ErrInvalidRules, i, r.Name)
		}
		seen[r.Name] = true
		if len(r.Keywords) == 0 {
			return fmt.Errorf("%w: rule %d (%s): at least one keyword is required", ErrInvalidRules, i, r.Name)
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: rule %d (%s): empty keyword", ErrInvalidRules, i, r.Name)
			}
		}
		if len(r.Roles) == 0 {
			return fmt.Errorf("%w: rule %d (%s): at least one role is required", ErrInvalidRules, i, r.Name)
		}
		for _, role := range r.Roles {
			if !role.IsValid() {
				return fmt.Errorf("%w: rule %d (%s): unknown role %q", ErrInvalidRules, i, r.Name, role)
			}
		}
	}
	return nil
}
