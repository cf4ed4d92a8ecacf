package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/heatmap-inspector-go/internal/errors"
	"github.com/anime-shed/heatmap-inspector-go/internal/logger"
	"github.com/anime-shed/heatmap-inspector-go/internal/service"
	"github.com/anime-shed/heatmap-inspector-go/pkg/models"
)

// StreamStats summarises one stream run
type StreamStats struct {
	Lines     int
	Succeeded int
	Failed    int
}

// Stream answers every non-blank line of r with exactly one JSON line on w.
// Per-line failures become error lines; only read or write failures, or
// ctx ending, stop the loop.
func Stream(ctx context.Context, r io.Reader, w io.Writer, svc service.HeatmapAnalysisService, maxLineBytes int) (StreamStats, error) {
	var stats StreamStats
	reader := bufio.NewReaderSize(r, 64*1024)
	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line, tooLong, readErr := readLine(reader, maxLineBytes)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return stats, fmt.Errorf("read request line: %w", readErr)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 || tooLong {
			stats.Lines++
			resp := handleLine(ctx, svc, trimmed, tooLong, maxLineBytes)
			if resp.Error != "" {
				stats.Failed++
			} else {
				stats.Succeeded++
			}
			if err := enc.Encode(resp); err != nil {
				return stats, fmt.Errorf("write response line: %w", err)
			}
			if err := out.Flush(); err != nil {
				return stats, fmt.Errorf("write response line: %w", err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			logger.WithFields(logrus.Fields{
				"lines":     stats.Lines,
				"succeeded": stats.Succeeded,
				"failed":    stats.Failed,
			}).Info("Stream finished")
			return stats, nil
		}
	}
}

func handleLine(ctx context.Context, svc service.HeatmapAnalysisService, line []byte, tooLong bool, maxLineBytes int) models.HeatmapResponse {
	if tooLong {
		return ErrorResponse(apperrors.NewValidationError(fmt.Sprintf("request line exceeds %d bytes", maxLineBytes), nil))
	}

	var req models.HeatmapRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return ErrorResponse(apperrors.NewValidationError("invalid request line", err))
	}

	analysis, err := svc.AnalyzeHeatmap(ctx, &req)
	if err != nil {
		return ErrorResponse(err)
	}
	return models.HeatmapResponse{Heatmap: analysis}
}

// readLine returns the next line without its terminator. A line longer than
// maxBytes is consumed and discarded, and reported through tooLong.
func readLine(r *bufio.Reader, maxBytes int) (line []byte, tooLong bool, err error) {
	for {
		var chunk []byte
		chunk, err = r.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if maxBytes > 0 && len(bytes.TrimRight(line, "\r\n")) > maxBytes {
				tooLong = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}
