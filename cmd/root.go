// Package cmd provides the mailframe command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--config, --port)
//  2. MAILFRAME_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (MAILFRAME_SERVER_PORT, etc.)
//  4. Configuration file (.mailframe.yml in the working directory)
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mailframe",
	Short: "A component-based email template authoring tool",
	Long: `Mailframe edits component-markup email templates with a live compiled
preview. Templates are plain text: frontmatter metadata, an x-base root,
and a flat list of x-core.* components.

Quick Start:
  mailframe serve template.mf     Edit a template with live preview
  mailframe fmt template.mf       Normalize a template's formatting
  mailframe version               Print version information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .mailframe.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MAILFRAME_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mailframe")
	}

	viper.SetEnvPrefix("MAILFRAME")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env vars still apply.
	viper.ReadInConfig()
}
