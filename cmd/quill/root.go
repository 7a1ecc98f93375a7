package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "A content pipeline for static sites",
	Long:  "Quill discovers Markdown content, parses it with pluggable front matter, and serves or builds the resulting site.",
}

func init() {
	rootCmd.PersistentFlags().String("config", "quill.yaml", "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
