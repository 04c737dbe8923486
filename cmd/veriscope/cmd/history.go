package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage past analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := veriscopeApp.Store.LoadAll()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			cmd.Println("No stored sessions.")
			return nil
		}
		for _, s := range sessions {
			cmd.Printf("%-14s  %-5s  %-5s  %-20s  %s\n", s.ID, s.Type, s.Status, s.Timestamp, s.Name)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the full stored result for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, ok, err := veriscopeApp.Store.LoadResult(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no stored result for session %s", args[0])
		}
		return printJSON(cmd, result)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := veriscopeApp.Orchestrator.DeleteSession(args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

// marshalIndent keeps JSON output formatting in one place.
func marshalIndent(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
