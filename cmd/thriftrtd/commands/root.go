// Package commands implements thriftrtd's CLI, grounded on the teacher's
// cmd/dittofs/commands/root.go: a cobra root command with a persistent
// --config flag and SilenceUsage/SilenceErrors so RunE's own error
// reporting is what the user sees.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time via -ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "thriftrtd",
	Short: "thriftrtd runs a standalone RPC reactor server",
	Long: `thriftrtd hosts a non-blocking reactor, a binary-protocol codec, and a
call/reply dispatcher over a framed TCP transport.

Use "thriftrtd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./thriftrtd.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// ConfigFile returns the --config flag's value.
func ConfigFile() string { return cfgFile }
