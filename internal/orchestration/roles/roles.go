package roles

import (
	"strings"
)

// Role identifies an analyzer perspective applied to a topic.
// Role ids double as artifact directory names, so they are validated strictly.
type Role string

const (
	RoleUIDesigner      Role = "ui-designer"
	RoleSystemArchitect Role = "system-architect"
	RoleSecurityExpert  Role = "security-expert"
	RoleUserResearcher  Role = "user-researcher"
	RoleProductManager  Role = "product-manager"
	RoleBusinessAnalyst Role = "business-analyst"
	RoleDataArchitect   Role = "data-architect"
	RoleInnovationLead  Role = "innovation-lead"
)

// DefaultRole is selected when no rule matches a topic.
const DefaultRole = RoleUIDesigner

// allRoles lists every known role in catalogue order.
var allRoles = []Role{
	RoleUIDesigner,
	RoleSystemArchitect,
	RoleSecurityExpert,
	RoleUserResearcher,
	RoleProductManager,
	RoleBusinessAnalyst,
	RoleDataArchitect,
	RoleInnovationLead,
}

// knownRoles is the set of valid roles for validation.
var knownRoles = func() map[Role]bool {
	m := make(map[Role]bool, len(allRoles))
	for _, r := range allRoles {
		m[r] = true
	}
	return m
}()

// All returns every known role in catalogue order.
func All() []Role {
	return append([]Role(nil), allRoles...)
}

// IsValid returns true if the role is a known role.
// It also rejects shell metacharacters and path traversal attempts, since the
// role id is passed to external commands and used as a directory name.
func (r Role) IsValid() bool {
	s := string(r)
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, ";|&$`\\\"'<>(){}[]!#*?~ ") {
		return false
	}
	if strings.Contains(s, "..") || strings.Contains(s, "/") {
		return false
	}
	return knownRoles[r]
}

// String returns the role id.
func (r Role) String() string {
	return string(r)
}

// Selection is an ordered, deduplicated list of 1–3 roles, most relevant first.
type Selection []Role

// Contains reports whether the selection includes role.
func (s Selection) Contains(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Strings returns the role ids in order.
func (s Selection) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}
