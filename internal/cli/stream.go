package cli

import (
	"github.com/spf13/cobra"

	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
)

func newStreamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Answer line-delimited JSON requests from stdin on stdout",
		Long: "stream reads one JSON request per line from stdin and writes exactly one\n" +
			"JSON response line per non-blank input line. Logs go to stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			logger.SetOutput(cmd.ErrOrStderr())

			c, err := loadContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			_, err = transport.Stream(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), c.Service(), c.Config().StreamMaxLineBytes)
			return err
		},
	}
}
