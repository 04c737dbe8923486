package cmd

import (
	"github.com/spf13/cobra"
	"github.com/veriscope/veriscope/internal/mockserver"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local mock detection service",
	Long: `Runs a stand-in detection service implementing the upload/predict/health
contract with fabricated, deterministic verdicts. Useful for developing and
demoing the dashboard without the real inference backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mockserver.NewServer().ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
