package output

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/rcat/internal/types"
)

// contentFormatter prints a header line and the content of every file, with a blank line between files.
type contentFormatter struct {
	stdout       io.Writer
	colorEnabled bool
	header       *color.Color
	notice       *color.Color
	printed      int
}

func newContentFormatter(stdout io.Writer, colorEnabled bool) *contentFormatter {
	return &contentFormatter{
		stdout:       stdout,
		colorEnabled: colorEnabled,
		header:       newPalette(colorEnabled, color.FgGreen, color.Bold),
		notice:       newPalette(colorEnabled, color.FgYellow),
	}
}

func (formatter *contentFormatter) Handle(rendered types.RenderedFile) error {
	if rendered.Descriptor.IsDirectory {
		return nil
	}

	var builder strings.Builder
	if formatter.printed > 0 {
		builder.WriteString("\n")
	}
	formatter.printed++

	relativePath := rendered.Descriptor.RelativePath
	switch rendered.Content.Kind {
	case types.ContentSkipped:
		builder.WriteString(formatter.notice.Sprint(SkipNotice(relativePath, rendered.Content.Reason)))
		builder.WriteString("\n")
	case types.ContentHighlighted:
		formatter.writeFile(&builder, relativePath, formatter.pick(rendered.Content))
	case types.ContentRaw:
		formatter.writeFile(&builder, relativePath, rendered.Content.Text)
	default:
		formatter.writeFile(&builder, relativePath, "")
	}

	_, err := io.WriteString(formatter.stdout, builder.String())
	return err
}

func (formatter *contentFormatter) pick(content types.RenderedContent) string {
	if formatter.colorEnabled {
		return content.Styled
	}
	return content.Text
}

func (formatter *contentFormatter) writeFile(builder *strings.Builder, relativePath string, body string) {
	builder.WriteString(formatter.header.Sprint(relativePath))
	builder.WriteString("\n")
	if body == "" {
		return
	}
	builder.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		builder.WriteString("\n")
	}
}

func (formatter *contentFormatter) Flush() error {
	return nil
}
