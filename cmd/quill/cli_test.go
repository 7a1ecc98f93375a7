package main

import "testing"

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "quill" {
		t.Errorf("expected root command Use to be 'quill', got %q", rootCmd.Use)
	}

	expectedSubcommands := []string{"build", "serve", "version", "config"}
	nameSet := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		nameSet[cmd.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		if !nameSet[expected] {
			t.Errorf("expected root command to have subcommand %q", expected)
		}
	}
}

func TestBuildFlags(t *testing.T) {
	for _, name := range []string{"baseURL", "destination"} {
		if buildCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected build command to have flag %q", name)
		}
	}
}

func TestServeFlags(t *testing.T) {
	for _, name := range []string{"port", "bind", "no-live-reload"} {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected serve command to have flag %q", name)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("expected root command to have persistent flag \"config\"")
	}
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("expected root command to have persistent flag \"verbose\"")
	}
}
