package output

import (
	"fmt"
	"io"

	"github.com/temirov/rcat/internal/types"
)

// listFormatter prints one relative path per selected file.
type listFormatter struct {
	stdout io.Writer
}

func newListFormatter(stdout io.Writer) *listFormatter {
	return &listFormatter{stdout: stdout}
}

func (formatter *listFormatter) Handle(rendered types.RenderedFile) error {
	if rendered.Descriptor.IsDirectory {
		return nil
	}
	_, err := fmt.Fprintln(formatter.stdout, rendered.Descriptor.RelativePath)
	return err
}

func (formatter *listFormatter) Flush() error {
	return nil
}
