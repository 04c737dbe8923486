package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/veriscope/veriscope/internal/export"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a session's heatmap overlays to disk as JPEG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, ok, err := veriscopeApp.Store.LoadResult(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no stored result for session %s", args[0])
		}
		if len(result.Heatmaps) == 0 {
			cmd.Println("This result has no heatmap overlays.")
			return nil
		}

		dir := exportDir
		if dir == "" {
			dir = filepath.Join(cfg.Data.Directory, "exports", args[0])
		}
		written, err := export.Heatmaps(result, dir)
		if err != nil {
			return err
		}
		for _, path := range written {
			cmd.Println(path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (default: data dir exports)")
	rootCmd.AddCommand(exportCmd)
}
