// Package output serializes rendered files as a content dump, a plain listing or a JSON document.
package output

import (
	"io"

	"github.com/fatih/color"

	"github.com/temirov/rcat/internal/types"
)

// Formatter consumes rendered files one at a time. Flush completes the output once every entry was handled;
// it is not called for runs that were cancelled or failed fatally.
type Formatter interface {
	Handle(rendered types.RenderedFile) error
	Flush() error
}

// Options configures a Formatter.
type Options struct {
	Mode         types.OutputMode
	Stdout       io.Writer
	Stderr       io.Writer
	ColorEnabled bool
}

// NewFormatter returns the Formatter for options.Mode.
func NewFormatter(options Options) Formatter {
	if options.Stdout == nil {
		options.Stdout = io.Discard
	}
	if options.Stderr == nil {
		options.Stderr = io.Discard
	}
	switch options.Mode {
	case types.OutputModeList:
		return newListFormatter(options.Stdout)
	case types.OutputModeJSON:
		return newJSONFormatter(options.Stdout, options.Stderr)
	default:
		return newContentFormatter(options.Stdout, options.ColorEnabled)
	}
}

// SkipNotice formats the one-line notice for a skipped file.
func SkipNotice(relativePath, reason string) string {
	return relativePath + ": skipped (" + reason + ")"
}

func newPalette(enabled bool, attributes ...color.Attribute) *color.Color {
	palette := color.New(attributes...)
	if enabled {
		palette.EnableColor()
	} else {
		palette.DisableColor()
	}
	return palette
}
