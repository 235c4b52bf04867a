package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/config"
	"github.com/csheth/expertdesk/internal/llm"
	"github.com/csheth/expertdesk/internal/logger"
	"github.com/csheth/expertdesk/internal/tui"
)

var (
	configPath  string
	envFiles    []string
	noAltScreen bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./expertdesk.yaml or the user config dir)")
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")
	flags.String("provider", "", "model provider: openai or ollama")
	flags.String("model", "", "model name (default depends on the provider)")
	flags.String("endpoint", "", "provider base URL, eg. http://localhost:11434 for ollama")
	flags.Float64("temperature", answer.DefaultTemperature, "sampling temperature")
	flags.String("mode", string(answer.ModeStream), "response mode: batch or stream")
	flags.String("log-file", "", "write logs to this file")
	flags.String("log-mode", "dev", "log encoding: dev or prod")

	rootCmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	rootCmd.AddCommand(serveCmd)
}

var rootCmd = &cobra.Command{
	Use:   "expertdesk",
	Short: "Ask a cooking or education expert",
	Long: `expertdesk puts a question to one of two expert personas and shows the answer.

Examples:
  expertdesk                          # terminal form
  expertdesk --mode batch             # wait for the whole answer
  expertdesk --provider ollama        # use a local model
  expertdesk serve --addr :8501       # web form`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	RunE:              runTUI,
}

// app is everything a surface needs, resolved from config.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	generator  *answer.Generator
	clientName string
}

// bootstrap loads config and builds the generator. When toStderr is false and
// no log file is configured, logs are discarded so the TUI owns the terminal.
func bootstrap(flags *pflag.FlagSet, toStderr bool) (*app, error) {
	cfg, err := config.Load(config.Options{Path: configPath, EnvFiles: envFiles, Flags: flags})
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	if cfg.LogFile != "" || toStderr {
		log, err = logger.New(cfg.LogMode, cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	mode, err := answer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewFromEnv(llm.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}
	log.Info("configured model", "client", client.Name(), "mode", string(mode), "temperature", cfg.Temperature)

	gen := answer.New(client, answer.Options{
		Mode:        mode,
		Temperature: &cfg.Temperature,
		Logger:      log,
	})
	return &app{cfg: cfg, log: log, generator: gen, clientName: client.Name()}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Flags(), false)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	opts := []tea.ProgramOption{}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Generator:  a.generator,
			ClientName: a.clientName,
			Logger:     a.log,
		}),
		opts...,
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
