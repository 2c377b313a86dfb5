/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pingbot",
	Short: "Zulip bot that pings recent topic participants",
	Long: "PingBot listens for a trigger keyword in Zulip streams and replies " +
		"mentioning everyone who recently participated in the topic.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = args
		// Optional .env file; credentials usually live there in development.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
