// Package highlight turns source bytes into ANSI styled terminal text.
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	// DefaultTheme is the chroma style used when no theme is configured.
	DefaultTheme = "monokai"
	// terminalFormatterName emits 24-bit colour escape sequences.
	terminalFormatterName = "terminal16m"
	plainTextLexerName    = "plaintext"
)

// ErrUnsupportedSyntax reports that no grammar matches the file.
var ErrUnsupportedSyntax = errors.New("unsupported syntax")

// Highlighter styles file content using filename as the grammar hint.
type Highlighter interface {
	Highlight(data []byte, filename string) (string, error)
}

// ChromaHighlighter implements Highlighter with chroma lexers, styles and the terminal formatter.
type ChromaHighlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// ThemeExists reports whether chroma knows a style named theme.
func ThemeExists(theme string) bool {
	return slices.Contains(styles.Names(), theme)
}

// NewChromaHighlighter builds a highlighter for theme. Unknown themes use chroma's fallback style.
func NewChromaHighlighter(theme string) *ChromaHighlighter {
	if theme == "" {
		theme = DefaultTheme
	}
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get(terminalFormatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &ChromaHighlighter{style: style, formatter: formatter}
}

// Highlight implements Highlighter. The lexer is chosen by file name first, then by content analysis
// (shebang lines and similar markers). Plain text is reported as unsupported.
func (highlighter *ChromaHighlighter) Highlight(data []byte, filename string) (string, error) {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(string(data))
	}
	if lexer == nil || lexer.Config().Name == plainTextLexerName {
		return "", fmt.Errorf("%s: %w", filename, ErrUnsupportedSyntax)
	}

	iterator, tokeniseErr := chroma.Coalesce(lexer).Tokenise(nil, string(data))
	if tokeniseErr != nil {
		return "", fmt.Errorf("tokenise %s: %w", filename, tokeniseErr)
	}
	var buffer bytes.Buffer
	if formatErr := highlighter.formatter.Format(&buffer, highlighter.style, iterator); formatErr != nil {
		return "", fmt.Errorf("format %s: %w", filename, formatErr)
	}
	return buffer.String(), nil
}

var _ Highlighter = (*ChromaHighlighter)(nil)
