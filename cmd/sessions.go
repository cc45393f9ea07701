package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/brainstorm/internal/sessions/domain"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

var sessionsAll bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List brainstorm sessions",
	Long:  `List sessions, newest first. Archived sessions are hidden unless --all is set.`,
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var sessionsArchiveCmd = &cobra.Command{
	Use:   "archive <session-id>",
	Short: "Archive a session",
	Long:  `Archive a session so it is no longer offered for new runs.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsArchive,
}

func init() {
	sessionsCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "include archived sessions")
	sessionsCmd.AddCommand(sessionsArchiveCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	list, err := store.List(cmd.Context(), sessionsAll)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No sessions. Start one with: brainstorm run <topic>")
		return nil
	}

	for _, s := range list {
		_, _ = fmt.Fprintf(out, "%s  %s  %s  %s\n",
			s.GUID(),
			sessionStateStyle(s.State()).Render(fmt.Sprintf("%-9s", s.State())),
			styles.MutedStyle.Render(s.CreatedAt().Local().Format(time.DateTime)),
			styles.TruncateString(s.Topic(), 48))
	}
	return nil
}

func runSessionsArchive(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Archive(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("archiving session: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", args[0])
	return nil
}

func sessionStateStyle(state domain.SessionState) lipgloss.Style {
	switch state {
	case domain.SessionActive:
		return styles.InProgressStyle
	case domain.SessionCompleted:
		return styles.CompletedStyle
	default:
		return styles.MutedStyle
	}
}
