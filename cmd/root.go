package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the newsmind CLI.
func Execute() {
	root := &cobra.Command{
		Use:   "newsmind",
		Short: "Conversational research over scraped news articles",
	}
	root.AddCommand(serveCMD(), chatCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
