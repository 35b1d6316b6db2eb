/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/bankscope/internal/config"
	"github.com/friendsincode/bankscope/internal/logbuffer"
	"github.com/friendsincode/bankscope/internal/logging"
	"github.com/friendsincode/bankscope/internal/version"
)

var (
	logger  zerolog.Logger
	cfg     *config.Config
	logBuf  *logbuffer.Buffer
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "bankscope",
	Short: "Catalog sound banks and the media their sidecars describe",
	Long: `bankscope finds bank files with a glob pattern, reads the JSON sidecar next
to each one, and reports every bank with its language, id and media list.
It never modifies the files it scans.

Examples:
  bankscope scan 'GeneratedSoundBanks/Windows/**/*.bnk'
  bankscope scan 'banks/*.bnk' --lang 'English(US)' --name 'boss_*' --format json
  bankscope info GeneratedSoundBanks/Windows/SoundbanksInfo.json
  bankscope serve`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.AddCommand(scanCmd, infoCmd, serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and sets up logging (called by commands that need it).
// Log lines are also captured in logBuf so skipped bundles can be reported.
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env := cfg.Environment
	switch {
	case quiet:
		env = "quiet"
	case verbose:
		env = "development"
	case cfg.IsDevelopment():
		// Debug noise is opt-in on the command line.
		env = "production"
	}

	logBuf = logbuffer.New(cfg.LogBufferSize)
	logger = logging.SetupWithWriter(env, logbuffer.NewWriter(logBuf, nil))
	return nil
}
