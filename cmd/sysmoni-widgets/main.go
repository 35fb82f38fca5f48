package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/api"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/fetch"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/glances"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/sampler"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/ui"
)

func main() {
	var (
		configPath string
		logFile    string
		logLevel   string
		listen     string
	)

	rootCmd := &cobra.Command{
		Use:          "sysmoni-widgets",
		Short:        "Live system resource widgets for the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "widgets.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	flags := config.BindFlags(rootCmd.PersistentFlags())

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnv()
		flags.Apply(cfg)
		if logFile != "" {
			cfg.LogFile = logFile
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return cfg, cfg.Validate()
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the widgets in the terminal (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			closeLog, err := setupTUILogging(cfg.LogFile, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closeLog()
			return ui.RunTUI(cfg, fetch.NewClient(cfg.Server.Timeout))
		},
	}
	rootCmd.RunE = tuiCmd.RunE

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve widget data at /api/widgets/{glances,local}",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			local := sampler.New(cfg.Server.SampleInterval)
			go local.Run(ctx)

			err = api.NewServer(cfg.Server, local).ListenAndServe(ctx)
			slog.Info("Shutting down")
			return err
		},
	}
	serveCmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")

	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Fetch every widget once and print the derived values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))
			return printJSON(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	rootCmd.AddCommand(tuiCmd, serveCmd, jsonCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupTUILogging keeps logs off the terminal while the program owns it.
func setupTUILogging(path, level string) (func(), error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "sysmoni-widgets")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(level)})))
	return func() { f.Close() }, nil
}

type itemJSON struct {
	Icon          string  `json:"icon"`
	Value         string  `json:"value"`
	Label         string  `json:"label"`
	ExpandedValue string  `json:"expanded_value,omitempty"`
	ExpandedLabel string  `json:"expanded_label,omitempty"`
	Percentage    float64 `json:"percentage"`
}

type widgetJSON struct {
	Endpoint string     `json:"endpoint"`
	Provider string     `json:"provider"`
	Label    string     `json:"label,omitempty"`
	State    string     `json:"state"`
	Error    string     `json:"error,omitempty"`
	Items    []itemJSON `json:"items,omitempty"`
}

func printJSON(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := fetch.NewClient(cfg.Server.Timeout)
	result := make([]widgetJSON, 0, len(cfg.Widgets))
	for _, wc := range cfg.Widgets {
		ctx, cancel := context.WithTimeout(ctx, cfg.Server.Timeout+time.Second)
		samp, err := client.Fetch(ctx, wc)
		cancel()

		entry := widgetJSON{Endpoint: wc.Endpoint, Provider: wc.Provider, Label: wc.Label}
		switch {
		case err != nil:
			entry.State, entry.Error = "error", err.Error()
		case samp.HasError():
			entry.State, entry.Error = "error", string(samp.Error)
		default:
			entry.State = "data"
			for _, it := range glances.Items(glances.New(wc).Compose(samp)) {
				entry.Items = append(entry.Items, itemJSON{
					Icon:          it.Icon,
					Value:         it.Value,
					Label:         it.Label,
					ExpandedValue: it.ExpandedValue,
					ExpandedLabel: it.ExpandedLabel,
					Percentage:    it.Percentage,
				})
			}
		}
		result = append(result, entry)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
