package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/dailypaper/internal/config"
	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml and create the data directory",
	Long: `Write a starter config.yaml and create the data directory.

Creates:
  config.yaml          # arXiv categories, classification keywords, venue tables
  data/
  └── cache/           # Ephemeral SQLite index (safe to delete)

The config path follows --config, then $DP_CONFIG, then ./config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(configPath)

	if _, err := os.Stat(path); err == nil && !initForce {
		exitWithError(ExitError, "%s already exists (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			exitWithError(ExitError, "creating config directory: %v", err)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	// Reload so the data directory resolves relative to the written file.
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading written config: %v", err)
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(config.CachePath(dataDir), 0755); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}

	if humanOutput {
		fmt.Printf("Wrote %s\n", path)
		fmt.Printf("Data directory: %s\n", dataDir)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   path,
		})
	}

	return nil
}
