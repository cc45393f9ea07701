package roles

import "fmt"

// RolePrompt describes how a role approaches a topic.
type RolePrompt struct {
	// Title is the human-readable role name used in progress labels.
	Title string

	// Focus returns the analysis focus handed to the role command.
	Focus func(topic string) string
}

// Registry maps roles to their prompt definitions.
var Registry = map[Role]RolePrompt{
	RoleUIDesigner: {
		Title: "UI Designer",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from an interface design perspective: layout, interaction flows, visual hierarchy and design-system consistency.", topic)
		},
	},
	RoleSystemArchitect: {
		Title: "System Architect",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a system architecture perspective: component boundaries, scalability, integration points and operational trade-offs.", topic)
		},
	},
	RoleSecurityExpert: {
		Title: "Security Expert",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a security perspective: threat model, authentication and authorization, data protection and compliance exposure.", topic)
		},
	},
	RoleUserResearcher: {
		Title: "User Researcher",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a user research perspective: target users, needs and pain points, and how to validate assumptions.", topic)
		},
	},
	RoleProductManager: {
		Title: "Product Manager",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a product perspective: problem framing, scope, prioritization and success metrics.", topic)
		},
	},
	RoleBusinessAnalyst: {
		Title: "Business Analyst",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a business process perspective: stakeholders, process changes, costs and measurable outcomes.", topic)
		},
	},
	RoleDataArchitect: {
		Title: "Data Architect",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from a data perspective: data model, storage and consistency, data flows and governance.", topic)
		},
	},
	RoleInnovationLead: {
		Title: "Innovation Lead",
		Focus: func(topic string) string {
			return fmt.Sprintf("Analyze %q from an innovation perspective: emerging approaches, differentiation and experiments worth running.", topic)
		},
	},
}

// GetPrompt returns the prompt definition for role.
// Unknown roles fall back to the DefaultRole definition.
func GetPrompt(role Role) RolePrompt {
	if p, ok := Registry[role]; ok {
		return p
	}
	return Registry[DefaultRole]
}

// Title returns the display title for role.
func Title(role Role) string {
	return GetPrompt(role).Title
}

// FocusOverride customizes the focus text for a role.
type FocusOverride struct {
	// Append is added after the default focus.
	Append string `mapstructure:"append"`

	// Replace completely replaces the default focus.
	Replace string `mapstructure:"replace"`
}

// ComposeFocus resolves the focus text for role:
//  1. Start from the registry focus for the role
//  2. If override is nil, return it
//  3. If override.Replace is set, return the replacement
//  4. If override.Append is set, return base + append
func ComposeFocus(role Role, topic string, override *FocusOverride) string {
	base := GetPrompt(role).Focus(topic)
	if override == nil {
		return base
	}
	if override.Replace != "" {
		return override.Replace
	}
	if override.Append != "" {
		return base + "\n\n" + override.Append
	}
	return base
}
