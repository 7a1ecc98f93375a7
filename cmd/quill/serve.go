package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brackenfield/quill/internal/config"
	"github.com/brackenfield/quill/internal/engine"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long:  "Serve starts a local HTTP server that renders pages on demand and pushes live-reload notifications as content changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		overrides := map[string]any{}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			overrides["port"] = port
		}
		if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
			overrides["host"] = bind
		}
		if noLiveReload, _ := cmd.Flags().GetBool("no-live-reload"); noLiveReload {
			overrides["livereload"] = false
		}
		cfg.WithOverrides(overrides)

		eng, err := engine.New(cfg)
		if err != nil {
			return fmt.Errorf("starting engine: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			cancel()
		}()

		return eng.RunOrBuild(ctx, []string{"serve"})
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().String("bind", "", "bind address (overrides config)")
	serveCmd.Flags().Bool("no-live-reload", false, "disable live reload")

	rootCmd.AddCommand(serveCmd)
}
