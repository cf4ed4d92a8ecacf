package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/anime-shed/heatmap-inspector-go/internal/backend"
	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build capabilities",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "heatmap %s (%s, opencv=%t)\n", transport.Version, runtime.Version(), backend.OpenCVAvailable)
		},
	}
}
