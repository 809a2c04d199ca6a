// Package render turns a selected file into displayable content.
package render

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/rcat/internal/highlight"
	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

// FileReader reads a whole file. os.ReadFile is used unless overridden.
type FileReader func(path string) ([]byte, error)

// Option customizes a Renderer.
type Option func(*Renderer)

// WithFileReader replaces os.ReadFile.
func WithFileReader(reader FileReader) Option {
	return func(renderer *Renderer) {
		if reader != nil {
			renderer.readFile = reader
		}
	}
}

// WithLogger sets the logger used for highlighting diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(renderer *Renderer) {
		renderer.logger = utils.LoggerOrNop(logger)
	}
}

// Renderer produces RenderedFile values for descriptors.
type Renderer struct {
	config      types.TraversalConfig
	highlighter highlight.Highlighter
	readFile    FileReader
	logger      *zap.Logger
}

// New builds a Renderer. highlighter may be nil, in which case content is never styled.
func New(config types.TraversalConfig, highlighter highlight.Highlighter, options ...Option) *Renderer {
	renderer := &Renderer{
		config:      config,
		highlighter: highlighter,
		readFile:    os.ReadFile,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(renderer)
	}
	return renderer
}

// Render reads and renders descriptor. It never fails: problems become Skipped content.
func (renderer *Renderer) Render(descriptor types.FileDescriptor) types.RenderedFile {
	rendered := types.RenderedFile{Descriptor: descriptor}
	if descriptor.IsDirectory {
		return rendered
	}
	if renderer.config.OutputMode == types.OutputModeList {
		rendered.Content = types.Skipped(types.SkipReasonListMode)
		return rendered
	}

	data, readErr := renderer.readFile(descriptor.AbsolutePath)
	if readErr != nil {
		rendered.Content = types.Skipped(types.SkipReasonReadErrorPrefix + readErrorDetail(readErr))
		return rendered
	}
	if utils.IsBinary(data) {
		rendered.Content = types.Skipped(types.SkipReasonBinary)
		return rendered
	}

	plain := string(data)
	if !renderer.config.StylingEnabled() || renderer.highlighter == nil {
		rendered.Content = types.Raw(plain)
		return rendered
	}

	styled, highlightErr := renderer.highlighter.Highlight(data, filepath.Base(descriptor.AbsolutePath))
	if highlightErr != nil {
		if !errors.Is(highlightErr, highlight.ErrUnsupportedSyntax) {
			renderer.logger.Debug("highlighting failed, using raw content", zap.String("path", descriptor.RelativePath), zap.Error(highlightErr))
		}
		rendered.Content = types.Raw(plain)
		return rendered
	}
	rendered.Content = types.Highlighted(styled, plain)
	return rendered
}

// readErrorDetail strips the path from *fs.PathError messages; the path is already part of the notice.
func readErrorDetail(readErr error) string {
	var pathError *os.PathError
	if errors.As(readErr, &pathError) {
		return pathError.Err.Error()
	}
	return readErr.Error()
}
