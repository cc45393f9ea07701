package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

var rolesShowFocus bool

var rolesCmd = &cobra.Command{
	Use:   "roles <topic>",
	Short: "Preview the roles selected for a topic",
	Long:  `Show which roles a topic selects, in order of relevance, and which keyword rules matched.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoles,
}

func init() {
	rolesCmd.Flags().BoolVar(&rolesShowFocus, "focus", false, "show each role's focus text")
	rootCmd.AddCommand(rolesCmd)
}

func runRoles(cmd *cobra.Command, args []string) error {
	selector, err := newSelector()
	if err != nil {
		return err
	}

	topic := strings.Join(args, " ")
	selection := selector.Select(topic)
	out := cmd.OutOrStdout()

	matched := selector.MatchedRules(topic)
	if len(matched) == 0 {
		matched = []string{"(none, default role)"}
	}
	_, _ = fmt.Fprintln(out, styles.MutedStyle.Render("rules: "+strings.Join(matched, ", ")))

	maxLen := 0
	for _, r := range selection {
		maxLen = max(maxLen, len(r))
	}
	for i, r := range selection {
		_, _ = fmt.Fprintf(out, "%d. %-*s  %s\n", i+1, maxLen, r, roles.Title(r))
		if rolesShowFocus {
			focus := roles.ComposeFocus(r, topic, cfg.FocusOverride(r))
			_, _ = fmt.Fprintf(out, "   %s\n", styles.MutedStyle.Render(focus))
		}
	}
	return nil
}
