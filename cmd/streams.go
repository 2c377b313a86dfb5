/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"pingbot/pkg/config"
	"pingbot/pkg/zulip"

	"github.com/spf13/cobra"
)

// streamsCmd lists the streams the bot can see, mostly useful to check
// credentials and pick values for bot.streams.
var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List streams visible to the bot",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		client, err := zulip.NewClient(cfg.Zulip, nil)
		if err != nil {
			fmt.Printf("invalid zulip configuration: %v\n", err)
			return
		}

		streams, err := client.GetStreams(context.Background())
		if err != nil {
			fmt.Printf("failed to list streams: %v\n", err)
			return
		}

		for _, stream := range streams {
			if stream.Description != "" {
				fmt.Printf("%s - %s\n", stream.Name, stream.Description)
				continue
			}
			fmt.Println(stream.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(streamsCmd)
}
