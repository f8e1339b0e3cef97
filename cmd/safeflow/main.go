package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "safeflow",
	Short: "SafeFlow assistant for UPI transaction and fraud questions",
	Long: `safeflow talks to a hosted language model on behalf of a SafeFlow user.

Replies are tagged as warnings, confirmations or plain information, and can
be read aloud when a speech command is configured.

Examples:
  safeflow chat
  safeflow chat --profile fraud-alert
  safeflow ask "Is a collect request from an unknown UPI id safe?"
  echo "$GEMINI_API_KEY" | safeflow key set
  safeflow usage --since 168h`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagProfile  string
	flagEnvFile  string
	flagLogLevel string
)

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(profilesCmd)

	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Assistant profile (overrides assistant.profile)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before configuration")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides log.level)")
}
