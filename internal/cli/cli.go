// Package cli implements the one-shot chat command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zava/storefront-chat/internal/chat"
	"github.com/zava/storefront-chat/internal/config"
	"github.com/zava/storefront-chat/internal/logging"
	"github.com/zava/storefront-chat/internal/version"
)

// ErrSendFailed is returned when a message was dispatched but did not succeed.
// The error text has already been printed.
var ErrSendFailed = errors.New("send failed")

var (
	colorReply = color.New(color.FgGreen)
	colorError = color.New(color.FgRed, color.Bold)
	colorLabel = color.New(color.Bold)
)

// App holds the CLI application state.
type App struct {
	root       *cobra.Command
	configPath string
	endpoint   string
	apiKey     string
	noColor    bool

	cfg     *config.Config
	logger  *logrus.Entry
	cleanup func()
}

// NewApp builds the command tree.
func NewApp() *App {
	a := &App{cleanup: func() {}}

	a.root = &cobra.Command{
		Use:           "chat",
		Short:         "Send messages to the storefront chat endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				color.NoColor = true
			}
			return a.load()
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (json, yaml or toml)")
	flags.StringVar(&a.endpoint, "endpoint", "", "override the chat endpoint URL")
	flags.StringVar(&a.apiKey, "api-key", "", "override the endpoint API key")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	a.root.AddCommand(a.sendCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.versionCmd())
	return a
}

// SetArgs replaces os.Args for the root command.
func (a *App) SetArgs(args []string) { a.root.SetArgs(args) }

// SetOutput redirects command output.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	defer a.cleanup()
	return a.root.Execute()
}

func (a *App) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.endpoint != "" {
		cfg.Chat.EndpointURL = a.endpoint
	}
	if a.apiKey != "" {
		cfg.Chat.APIKey = a.apiKey
	}

	logger, cleanup, err := logging.New("chat-cli", cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.cfg, a.logger, a.cleanup = cfg, logger, cleanup
	return nil
}

func (a *App) sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := chat.New(a.cfg.Chat, chat.WithLogger(a.logger), chat.WithTimeout(a.cfg.Timeout))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			res := d.Send(ctx, strings.Join(args, " "))
			if !res.Success {
				colorError.Fprintln(cmd.ErrOrStderr(), res.Error)
				return ErrSendFailed
			}
			colorReply.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			s := a.cfg.Chat.Redacted()
			source := a.cfg.Source
			if source == "" {
				source = "(defaults and environment)"
			}
			rows := [][2]string{
				{"source", source},
				{"endpoint", s.EndpointURL},
				{"api key", s.APIKey},
				{"model", s.ModelName},
				{"timeout", a.cfg.Timeout.String()},
			}
			for _, row := range rows {
				colorLabel.Fprintf(out, "%-9s", row[0])
				fmt.Fprintf(out, " %s\n", row[1])
			}
		},
	}
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// version needs no settings
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
