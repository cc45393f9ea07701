package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelect_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		expected Selection
	}{
		{
			name:     "ux topic fills third slot from security rule",
			topic:    "Redesign user authentication interface",
			expected: Selection{RoleUIDesigner, RoleUserResearcher, RoleSecurityExpert},
		},
		{
			name:     "architecture topic fills all slots from first rule",
			topic:    "Design scalable microservices architecture",
			expected: Selection{RoleSystemArchitect, RoleDataArchitect, RoleSecurityExpert},
		},
		{
			name:     "no keyword falls back to default role",
			topic:    "Plan the team offsite",
			expected: Selection{RoleUIDesigner},
		},
		{
			name:     "business only",
			topic:    "Revise pricing strategy",
			expected: Selection{RoleProductManager, RoleBusinessAnalyst},
		},
		{
			name:     "ux then business truncated at three",
			topic:    "Improve mobile onboarding for customer growth",
			expected: Selection{RoleUIDesigner, RoleUserResearcher, RoleProductManager},
		},
		{
			name:     "innovation only",
			topic:    "Explore emerging trends",
			expected: Selection{RoleInnovationLead},
		},
		{
			name:     "matching is case insensitive",
			topic:    "SECURITY REVIEW",
			expected: Selection{RoleSecurityExpert},
		},
		{
			name:     "duplicate roles across rules are skipped",
			topic:    "database security",
			expected: Selection{RoleSystemArchitect, RoleDataArchitect, RoleSecurityExpert},
		},
	}

	s := NewSelector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, s.Select(tt.topic))
		})
	}
}

func TestSelect_StopsAfterThreeRoles(t *testing.T) {
	rules := Rules{
		{Name: "a", Keywords: []string{"x"}, Roles: []Role{RoleUIDesigner, RoleUserResearcher}},
		{Name: "b", Keywords: []string{"x"}, Roles: []Role{RoleUIDesigner, RoleProductManager, RoleBusinessAnalyst}},
		{Name: "c", Keywords: []string{"x"}, Roles: []Role{RoleInnovationLead}},
	}

	got := NewSelector(rules).Select("x")

	require.Equal(t, Selection{RoleUIDesigner, RoleUserResearcher, RoleProductManager}, got)
}

func TestSelect_IsDeterministic(t *testing.T) {
	s := NewSelector(nil)
	topic := "Secure cloud data platform for customer analytics"

	first := s.Select(topic)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, s.Select(topic))
	}
}

func TestMatchedRules(t *testing.T) {
	s := NewSelector(nil)

	require.Equal(t, []string{"product-ux", "security-compliance"},
		s.MatchedRules("Redesign user authentication interface"))
	require.Empty(t, s.MatchedRules("Plan the team offsite"))
}

func TestNewSelector_EmptyRulesUsesDefaults(t *testing.T) {
	s := NewSelector(Rules{})
	require.Equal(t, DefaultRules(), s.Rules())
}
