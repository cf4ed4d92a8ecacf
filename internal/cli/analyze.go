package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/service"
	"github.com/anime-shed/heatmap-inspector-go/internal/transport"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
	"github.com/anime-shed/heatmap-inspector-go/pkg/validation"
)

type analyzeOptions struct {
	optionsPath string
	pretty      bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE|URL",
		Short: "Score one heatmap image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := loadRawOptions(opts.optionsPath)
			if err != nil {
				return err
			}

			c, err := loadContainer(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			var analysis *models.HeatmapAnalysis
			source := args[0]
			if strings.Contains(source, "://") {
				analysis, err = c.Service().AnalyzeHeatmap(cmd.Context(), &models.HeatmapRequest{ImageURL: source, Options: raw})
			} else {
				analysis, err = analyzeFile(cmd.Context(), c.Service(), source, raw)
			}
			if err != nil {
				if werr := writeJSON(cmd.OutOrStdout(), transport.ErrorResponse(err), opts.pretty); werr != nil {
					return werr
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.HeatmapResponse{Heatmap: analysis}, opts.pretty)
		},
	}

	cmd.Flags().StringVar(&opts.optionsPath, "options", "", "JSON file with the complete options object (default: built-in defaults)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	return cmd
}

// analyzeFile scores a local image; the options go through the same
// parser as wire requests
func analyzeFile(ctx context.Context, svc service.HeatmapAnalysisService, path string, raw map[string]json.RawMessage) (*models.HeatmapAnalysis, error) {
	opts, issues := validation.ParseOptions(raw)
	if len(issues) > 0 {
		return nil, apperrors.NewConfigurationError(validation.SummarizeIssues(issues), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read image file", err)
	}
	return svc.AnalyzeImageBytes(ctx, data, opts)
}

// loadRawOptions reads an options file, or marshals the defaults
func loadRawOptions(path string) (map[string]json.RawMessage, error) {
	var data []byte
	if path == "" {
		var err error
		if data, err = json.Marshal(models.DefaultHeatmapOptions()); err != nil {
			return nil, err
		}
	} else {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read options: %w", err)
		}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewConfigurationError("options file is not a JSON object", err)
	}
	return raw, nil
}
