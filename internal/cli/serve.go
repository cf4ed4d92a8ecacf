package cli

import (
	"github.com/spf13/cobra"

	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (POST /analyze, GET /health, GET /metrics)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			return transport.Serve(cmd.Context(), c.Config(), c.Handler())
		},
	}
}
