// Package stream drives one run: traversal, rendering and formatting, one descriptor at a time.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/rcat/internal/highlight"
	"github.com/temirov/rcat/internal/output"
	"github.com/temirov/rcat/internal/render"
	"github.com/temirov/rcat/internal/traversal"
	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

var (
	// ErrRootNotFound is returned when the root path does not exist.
	ErrRootNotFound = errors.New("root path not found")
	// ErrRootUnreadable is returned when the root path exists but cannot be inspected.
	ErrRootUnreadable = errors.New("root path unreadable")
	// ErrInvalidConfiguration is returned for configurations the pipeline cannot run.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Options configures Run.
type Options struct {
	Config      types.TraversalConfig
	Highlighter highlight.Highlighter
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *zap.Logger
	// RenderOptions are passed to the content renderer.
	RenderOptions []render.Option
	// TraversalOptions are passed to the walker.
	TraversalOptions []traversal.Option
}

// Run executes the pipeline. A fatal error or a cancelled context returns an error and, in JSON mode,
// leaves stdout untouched. Recoverable problems are counted in the returned Summary.
func Run(ctx context.Context, options Options) (Summary, error) {
	var summary Summary
	logger := utils.LoggerOrNop(options.Logger)
	config := options.Config

	if strings.TrimSpace(config.RootPath) == "" {
		return summary, fmt.Errorf("%w: root path is empty", ErrInvalidConfiguration)
	}

	walker, walkerErr := traversal.NewWalker(config, append([]traversal.Option{traversal.WithLogger(logger)}, options.TraversalOptions...)...)
	if walkerErr != nil {
		return summary, fmt.Errorf("%w: %w", ErrInvalidConfiguration, walkerErr)
	}
	renderer := render.New(config, options.Highlighter, append([]render.Option{render.WithLogger(logger)}, options.RenderOptions...)...)
	formatter := output.NewFormatter(output.Options{
		Mode:         config.OutputMode,
		Stdout:       options.Stdout,
		Stderr:       options.Stderr,
		ColorEnabled: config.ColorEnabled,
	})

	for descriptor, walkErr := range walker.Walk() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, ctxErr
		}
		if walkErr != nil {
			if traversal.IsFatal(walkErr) {
				if errors.Is(walkErr, traversal.ErrNotFound) {
					return summary, fmt.Errorf("%w: %w", ErrRootNotFound, walkErr)
				}
				return summary, fmt.Errorf("%w: %w", ErrRootUnreadable, walkErr)
			}
			summary.recordUnreadable()
			logger.Warn("skipping unreadable entry", zap.Error(walkErr))
			continue
		}

		rendered := renderer.Render(descriptor)
		summary.record(rendered)
		if rendered.Content.IsReadError() {
			logger.Warn("skipping unreadable file", zap.String("path", descriptor.RelativePath), zap.String("reason", rendered.Content.Reason))
		}
		if handleErr := formatter.Handle(rendered); handleErr != nil {
			return summary, fmt.Errorf("write output: %w", handleErr)
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}
	if flushErr := formatter.Flush(); flushErr != nil {
		return summary, fmt.Errorf("write output: %w", flushErr)
	}

	summaryFields := []zap.Field{
		zap.Int("files", summary.Files),
		zap.Int("directories", summary.Directories),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	}
	if summary.SkippedEntries() > 0 {
		logger.Info(fmt.Sprintf("%d entries skipped", summary.SkippedEntries()), summaryFields...)
	} else {
		logger.Debug("run finished", summaryFields...)
	}
	return summary, nil
}
