package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/medassist/medchat/internal/config"
	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
	chatservice "github.com/medassist/medchat/internal/service/chat"
	"github.com/medassist/medchat/internal/service/transport"
	"github.com/medassist/medchat/internal/tui"
)

type options struct {
	baseURL  string
	endpoint string
	timeout  time.Duration
	logFile  string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "chatcli",
		Short: "Terminal client for the medical assistant",
		Long: `chatcli opens a full-screen chat with the medical assistant.

Each message is posted on its own to the inference endpoint; nothing is
saved when the program exits.`,
		Example: `  $ chatcli
  $ chatcli --base-url http://localhost:8081 --timeout 30s
  $ chatcli ask "What is a fever?"`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), opts)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "inference server base URL (default from API_BASE_URL)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "inference endpoint path (default from API_ENDPOINT)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, 0 for none (default from API_TIMEOUT)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of discarding them")

	root.AddCommand(newAskCmd(opts))
	return root
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cmd.ErrOrStderr())

			controller := newController(cfg)
			if err := controller.TrySend(cmd.Context(), strings.Join(args, " ")); err != nil {
				return fmt.Errorf("message not sent: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), controller.Snapshot().Last().Text)
			return nil
		},
	}
}

func runChat(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.Init(cfg.LogLevel, logOut)

	profile := assistant.Seed(cfg.App.Name, cfg.App.Description, cfg.App.MaxMessageLength)
	if err := tui.Run(ctx, newController(cfg), profile); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}
	return nil
}

func newController(cfg *config.Config) *chatservice.Controller {
	client := transport.NewClient(cfg.Client)
	return chatservice.NewController(chat.NewConversation(assistant.WelcomeText), client, assistant.ErrorText)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.baseURL != "" {
		cfg.Client.BaseURL = opts.baseURL
	}
	if opts.endpoint != "" {
		cfg.Client.Endpoint = opts.endpoint
		if !strings.HasPrefix(cfg.Client.Endpoint, "/") {
			cfg.Client.Endpoint = "/" + cfg.Client.Endpoint
		}
	}
	if opts.timeout > 0 {
		cfg.Client.Timeout = opts.timeout
	}
	return cfg, nil
}
