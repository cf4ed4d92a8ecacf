package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anime-shed/heatmap-inspector-go/internal/config"
	"github.com/anime-shed/heatmap-inspector-go/internal/container"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
)

// RootOptions holds global CLI flags
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the root command with every subcommand attached
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Score green/red heatmap images",
		Long: "heatmap classifies the pixels of a green/red heatmap into shade buckets\n" +
			"and reduces them to a sentiment score between -100 and 100.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.LogLevel != "" {
				logger.SetLevel(opts.LogLevel)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		newServeCommand(),
		newStreamCommand(),
		newAnalyzeCommand(),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command with interrupt handling
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// loadContainer reads the environment and wires the application. An
// explicit --log-level wins over LOG_LEVEL.
func loadContainer(cmd *cobra.Command) (*container.Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flag := cmd.Flag("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel = flag.Value.String()
	}
	logger.SetLevel(cfg.LogLevel)
	return container.NewContainer(cfg)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
