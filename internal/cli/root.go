package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leaven",
	Short: "Memory and change-proposal engine for conversational agents",
	Long:  "Leaven extracts machine-readable change proposals from model responses, queues them for review, and weights stored memories by recency. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(proposalsCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(rememberCmd)
}
