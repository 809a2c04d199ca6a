package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/rcat/internal/output"
	"github.com/temirov/rcat/internal/types"
)

func fileEntry(relativePath string, depth int, content types.RenderedContent) types.RenderedFile {
	return types.RenderedFile{
		Descriptor: types.FileDescriptor{AbsolutePath: "/project/" + relativePath, RelativePath: relativePath, Depth: depth},
		Content:    content,
	}
}

func directoryEntry(relativePath string, depth int) types.RenderedFile {
	return types.RenderedFile{
		Descriptor: types.FileDescriptor{AbsolutePath: "/project/" + relativePath, RelativePath: relativePath, Depth: depth, IsDirectory: true},
	}
}

func handleAll(t *testing.T, formatter output.Formatter, entries ...types.RenderedFile) {
	t.Helper()
	for _, entry := range entries {
		require.NoError(t, formatter.Handle(entry))
	}
	require.NoError(t, formatter.Flush())
}

func TestListFormatterPrintsFilePathsOnly(t *testing.T) {
	var stdout, stderr bytes.Buffer
	formatter := output.NewFormatter(output.Options{Mode: types.OutputModeList, Stdout: &stdout, Stderr: &stderr})

	handleAll(t, formatter,
		fileEntry("a.rs", 0, types.Skipped(types.SkipReasonListMode)),
		directoryEntry("sub", 0),
		fileEntry("sub/c.rs", 1, types.Skipped(types.SkipReasonListMode)),
	)

	assert.Equal(t, "a.rs\nsub/c.rs\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestContentFormatterWithoutColor(t *testing.T) {
	var stdout bytes.Buffer
	formatter := output.NewFormatter(output.Options{Mode: types.OutputModeContent, Stdout: &stdout})

	handleAll(t, formatter,
		fileEntry("a.rs", 0, types.Raw("fn a() {}\n")),
		directoryEntry("assets", 0),
		fileEntry("assets/logo.png", 1, types.Skipped(types.SkipReasonBinary)),
		fileEntry("b.rs", 0, types.Highlighted("\x1b[1mfn b\x1b[0m", "fn b() {}")),
	)

	expected := "a.rs\nfn a() {}\n" +
		"\n" +
		"assets/logo.png: skipped (binary)\n" +
		"\n" +
		"b.rs\nfn b() {}\n"
	assert.Equal(t, expected, stdout.String())
}

func TestContentFormatterWithColorUsesStyledText(t *testing.T) {
	var stdout bytes.Buffer
	formatter := output.NewFormatter(output.Options{Mode: types.OutputModeContent, Stdout: &stdout, ColorEnabled: true})

	handleAll(t, formatter, fileEntry("b.rs", 0, types.Highlighted("STYLED", "plain")))

	assert.Contains(t, stdout.String(), "STYLED\n")
	assert.NotContains(t, stdout.String(), "plain")
	assert.Contains(t, stdout.String(), "\x1b[", "header is coloured")
}

func TestJSONFormatterEmitsSingleDocument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	formatter := output.NewFormatter(output.Options{Mode: types.OutputModeJSON, Stdout: &stdout, Stderr: &stderr, ColorEnabled: true})

	require.NoError(t, formatter.Handle(directoryEntry("sub", 0)))
	require.NoError(t, formatter.Handle(fileEntry("sub/c.rs", 1, types.Highlighted("\x1b[31mfn c\x1b[0m", "fn c() {}"))))
	require.NoError(t, formatter.Handle(fileEntry("blob.bin", 0, types.Skipped(types.SkipReasonBinary))))
	assert.Empty(t, stdout.String(), "nothing is emitted before Flush")
	require.NoError(t, formatter.Flush())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.Len(t, decoded, 3)

	assert.Equal(t, map[string]any{"path": "sub", "depth": float64(0), "isDirectory": true, "content": nil, "skipped": nil}, decoded[0])
	assert.Equal(t, map[string]any{"path": "sub/c.rs", "depth": float64(1), "isDirectory": false, "content": "fn c() {}", "skipped": nil}, decoded[1])
	assert.Equal(t, map[string]any{"path": "blob.bin", "depth": float64(0), "isDirectory": false, "content": nil, "skipped": "binary"}, decoded[2])
	assert.NotContains(t, stdout.String(), "\\u001b", "styled text never reaches JSON")
	assert.Equal(t, "blob.bin: skipped (binary)\n", stderr.String())
}

func TestJSONFormatterEmptyRunIsValidDocument(t *testing.T) {
	var stdout bytes.Buffer
	formatter := output.NewFormatter(output.Options{Mode: types.OutputModeJSON, Stdout: &stdout})

	require.NoError(t, formatter.Flush())

	assert.JSONEq(t, "[]", stdout.String())
}

func TestSkipNotice(t *testing.T) {
	assert.Equal(t, "dir/x.txt: skipped (read-error: permission denied)", output.SkipNotice("dir/x.txt", "read-error: permission denied"))
}
