package main

import (
	"context"
	"fmt"

	"github.com/brackenfield/quill/internal/config"
	"github.com/brackenfield/quill/internal/engine"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the static site once",
	Long:  "Build starts a loopback server, fetches every planned page from it, and writes the static output tree.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		overrides := map[string]any{}
		if baseURL, _ := cmd.Flags().GetString("baseURL"); baseURL != "" {
			overrides["baseURL"] = baseURL
		}
		if dest, _ := cmd.Flags().GetString("destination"); dest != "" {
			overrides["outputDir"] = dest
		}
		cfg.WithOverrides(overrides)

		eng, err := engine.New(cfg)
		if err != nil {
			return fmt.Errorf("starting engine: %w", err)
		}

		return eng.RunOrBuild(context.Background(), []string{"build"})
	},
}

func init() {
	buildCmd.Flags().String("baseURL", "", "override base URL")
	buildCmd.Flags().StringP("destination", "d", "", "override output directory")

	rootCmd.AddCommand(buildCmd)
}
