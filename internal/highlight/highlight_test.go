package highlight_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/rcat/internal/highlight"
)

func TestChromaHighlighterStylesKnownLanguage(t *testing.T) {
	highlighter := highlight.NewChromaHighlighter(highlight.DefaultTheme)

	styled, err := highlighter.Highlight([]byte("package main\n\nfunc main() {}\n"), "main.go")

	require.NoError(t, err)
	assert.Contains(t, styled, "\x1b[")
	assert.Contains(t, styled, "func")
}

func TestChromaHighlighterRejectsPlainText(t *testing.T) {
	highlighter := highlight.NewChromaHighlighter("")

	_, err := highlighter.Highlight([]byte("just some notes"), "notes.txt")

	assert.ErrorIs(t, err, highlight.ErrUnsupportedSyntax)
}

func TestChromaHighlighterUnknownThemeFallsBack(t *testing.T) {
	assert.False(t, highlight.ThemeExists("no-such-theme"))
	assert.True(t, highlight.ThemeExists(highlight.DefaultTheme))

	highlighter := highlight.NewChromaHighlighter("no-such-theme")
	styled, err := highlighter.Highlight([]byte("fn main() {}\n"), "main.rs")

	require.NoError(t, err)
	assert.True(t, strings.Contains(styled, "main"))
}
