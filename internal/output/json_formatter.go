package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/rcat/internal/types"
)

// jsonEntry is one element of the JSON document.
type jsonEntry struct {
	Path        string  `json:"path"`
	Depth       int     `json:"depth"`
	IsDirectory bool    `json:"isDirectory"`
	Content     *string `json:"content"`
	Skipped     *string `json:"skipped"`
}

// jsonFormatter buffers every entry and writes a single array on Flush.
type jsonFormatter struct {
	stdout  io.Writer
	stderr  io.Writer
	entries []jsonEntry
}

func newJSONFormatter(stdout, stderr io.Writer) *jsonFormatter {
	return &jsonFormatter{stdout: stdout, stderr: stderr, entries: []jsonEntry{}}
}

func (formatter *jsonFormatter) Handle(rendered types.RenderedFile) error {
	entry := jsonEntry{
		Path:        rendered.Descriptor.RelativePath,
		Depth:       rendered.Descriptor.Depth,
		IsDirectory: rendered.Descriptor.IsDirectory,
	}
	switch rendered.Content.Kind {
	case types.ContentHighlighted, types.ContentRaw:
		text := rendered.Content.Text
		entry.Content = &text
	case types.ContentSkipped:
		reason := rendered.Content.Reason
		entry.Skipped = &reason
		if _, err := fmt.Fprintln(formatter.stderr, SkipNotice(rendered.Descriptor.RelativePath, reason)); err != nil {
			return err
		}
	}
	formatter.entries = append(formatter.entries, entry)
	return nil
}

func (formatter *jsonFormatter) Flush() error {
	encoder := json.NewEncoder(formatter.stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(formatter.entries); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}
