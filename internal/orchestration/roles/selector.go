package roles

import "strings"

// MaxRoles is the upper bound on a selection.
const MaxRoles = 3

// Selector maps topics to role selections using an ordered rule table.
type Selector struct {
	rules Rules
}

// NewSelector creates a selector over rules. A nil or empty table falls back
// to DefaultRules.
func NewSelector(rules Rules) *Selector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Selector{rules: rules}
}

// Rules returns a copy of the rule table.
func (s *Selector) Rules() Rules {
	return append(Rules(nil), s.rules...)
}

// Select returns 1 to MaxRoles roles for topic, most relevant first.
//
// Rules are evaluated in table order; each matching rule appends its roles in
// declared order, skipping roles already selected. Evaluation stops once
// MaxRoles roles are collected. A topic matching no rule gets DefaultRole.
func (s *Selector) Select(topic string) Selection {
	lower := strings.ToLower(topic)
	selected := make(Selection, 0, MaxRoles)

	for _, rule := range s.rules {
		if len(selected) >= MaxRoles {
			break
		}
		if !rule.Matches(lower) {
			continue
		}
		for _, role := range rule.Roles {
			if len(selected) >= MaxRoles {
				break
			}
			if !selected.Contains(role) {
				selected = append(selected, role)
			}
		}
	}

	if len(selected) == 0 {
		return Selection{DefaultRole}
	}
	return selected
}

// MatchedRules returns the names of rules that match topic, in table order.
func (s *Selector) MatchedRules(topic string) []string {
	lower := strings.ToLower(topic)
	var names []string
	for _, rule := range s.rules {
		if rule.Matches(lower) {
			names = append(names, rule.Name)
		}
	}
	return names
}
