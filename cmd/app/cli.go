package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "slacksum-agent",
		Short: "Slack channel summarization agent",
		Long:  "slacksum-agent summarizes Slack channel messages for the dashboard and relays browser push notifications.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyGlobalFlags(cfgFile, logLevel)
		},
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newNotifyCmd())

	return cmd
}

// applyGlobalFlags exports flag values so config.Load and logger.New pick them up.
func applyGlobalFlags(cfgFile, logLevel string) error {
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_PATH", cfgFile); err != nil {
			return err
		}
	}
	if logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", logLevel); err != nil {
			return err
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("application stopped with error: %w", err)
	}
	return nil
}

func newNotifyCmd() *cobra.Command {
	var userID, channel, message string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send an important-message push notification for a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := initializeNotificationService()
			if err != nil {
				return fmt.Errorf("failed to wire notification service: %w", err)
			}
			result, err := svc.NotifyImportant(cmd.Context(), userID, channel, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "dashboard user id")
	cmd.Flags().StringVar(&channel, "channel", "", "channel name without #")
	cmd.Flags().StringVar(&message, "message", "", "message text, truncated to 100 characters")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("channel")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
