/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pingbot/pkg/channel"
	zulipchannel "pingbot/pkg/channel/zulip"
	"pingbot/pkg/config"
	"pingbot/pkg/logger"
	"pingbot/pkg/responder"
	"pingbot/pkg/service"
	"pingbot/pkg/zulip"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pinging bot",
	Long:  "Subscribes to the configured streams and responds to trigger messages with participant pings.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.run")

		client, err := zulip.NewClient(cfg.Zulip, appLogger)
		if err != nil {
			log.Error("Zulip configuration invalid", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := subscribeStreams(runCtx, client, cfg.Bot.Streams, log); err != nil {
			// Includes bad credentials; the bot cannot run without its streams.
			log.Error("Stream subscription failed", "error", err)
			return
		}

		bot := responder.New(cfg.Bot, client.GetMessages, client.SendMessage, appLogger)

		adapter, err := zulipchannel.NewAdapter(client, client.Email(), appLogger)
		if err != nil {
			log.Error("Failed to initialize zulip channel", "error", err)
			return
		}

		svc, err := service.NewService(cfg, []channel.Adapter{adapter}, bot.HandleMessage, client.Me, appLogger)
		if err != nil {
			log.Error("Failed to initialize service", "error", err)
			return
		}

		log.Info("PingBot started", "site", cfg.Zulip.Site, "keyword", cfg.Bot.Keyword, "short_keyword", cfg.Bot.ShortKeyword)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("PingBot runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// subscribeStreams subscribes the bot to the configured streams; an empty
// list means every stream visible to the bot.
func subscribeStreams(ctx context.Context, client *zulip.Client, streams []string, log *slog.Logger) error {
	if len(streams) == 0 {
		all, err := client.GetStreams(ctx)
		if err != nil {
			return fmt.Errorf("enumerate streams: %w", err)
		}
		for _, stream := range all {
			streams = append(streams, stream.Name)
		}
	}

	if len(streams) == 0 {
		log.Warn("No streams to subscribe to")
		return nil
	}

	return client.AddSubscriptions(ctx, streams)
}
