// Package types defines every cross‑package data structure used by the rcat CLI.
package types

import "strings"

// OutputMode selects how selected files are presented.
type OutputMode int

const (
	// OutputModeContent prints a header and the rendered content of every file.
	OutputModeContent OutputMode = iota
	// OutputModeList prints the relative path of every file without reading it.
	OutputModeList
	// OutputModeJSON prints a single JSON array describing every entry.
	OutputModeJSON
)

const (
	outputModeContentName = "content"
	outputModeListName    = "list"
	outputModeJSONName    = "json"
)

// String returns the lower-case name of the mode.
func (mode OutputMode) String() string {
	switch mode {
	case OutputModeList:
		return outputModeListName
	case OutputModeJSON:
		return outputModeJSONName
	default:
		return outputModeContentName
	}
}

// IgnoreMatcher reports whether an absolute path is ignored by an external rule set such as a .gitignore file.
type IgnoreMatcher interface {
	Match(path string, isDir bool) bool
}

// TraversalConfig is the immutable configuration of one run.
type TraversalConfig struct {
	RootPath string
	// MaxDepth is nil when traversal depth is unbounded.
	MaxDepth *int
	// ExtensionFilter holds lower-case extensions without the leading dot. Empty means no filtering.
	ExtensionFilter map[string]struct{}
	Exclusions      []string
	ColorEnabled    bool
	OutputMode      OutputMode
	Theme           string
	IgnoreMatcher   IgnoreMatcher
}

// StylingEnabled reports whether content should be syntax highlighted.
func (config TraversalConfig) StylingEnabled() bool {
	return config.ColorEnabled && config.OutputMode == OutputModeContent
}

// NewExtensionFilter normalizes extension names into a filter set.
// Values may carry a leading dot, mixed case or comma separated lists.
func NewExtensionFilter(extensions []string) map[string]struct{} {
	filter := make(map[string]struct{})
	for _, rawExtension := range extensions {
		for _, part := range strings.Split(rawExtension, ",") {
			normalized := NormalizeExtension(part)
			if normalized == "" {
				continue
			}
			filter[normalized] = struct{}{}
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// NormalizeExtension lower-cases an extension and strips surrounding whitespace and the leading dot.
func NormalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}

// FileDescriptor describes one visited file-system entry.
type FileDescriptor struct {
	AbsolutePath string
	// RelativePath uses forward slashes and is relative to the traversal root.
	RelativePath string
	Depth        int
	IsDirectory  bool
}

// ContentKind enumerates the outcomes of rendering a file.
type ContentKind int

const (
	// ContentNone marks entries that were never rendered, such as directories.
	ContentNone ContentKind = iota
	// ContentHighlighted carries styled text alongside the plain text.
	ContentHighlighted
	// ContentRaw carries plain text only.
	ContentRaw
	// ContentSkipped carries a reason instead of content.
	ContentSkipped
)

// Skip reasons reported by the renderer.
const (
	SkipReasonListMode        = "list-mode"
	SkipReasonBinary          = "binary"
	SkipReasonReadErrorPrefix = "read-error: "
)

// RenderedContent is the closed set of rendering outcomes.
type RenderedContent struct {
	Kind   ContentKind
	Text   string
	Styled string
	Reason string
}

// Highlighted builds styled content. Plain keeps the unstyled text for structured output.
func Highlighted(styled, plain string) RenderedContent {
	return RenderedContent{Kind: ContentHighlighted, Styled: styled, Text: plain}
}

// Raw builds plain content.
func Raw(plain string) RenderedContent {
	return RenderedContent{Kind: ContentRaw, Text: plain}
}

// Skipped builds a skipped outcome with the provided reason.
func Skipped(reason string) RenderedContent {
	return RenderedContent{Kind: ContentSkipped, Reason: reason}
}

// IsReadError reports whether the content was skipped because the file could not be read.
func (content RenderedContent) IsReadError() bool {
	return content.Kind == ContentSkipped && strings.HasPrefix(content.Reason, SkipReasonReadErrorPrefix)
}

// RenderedFile pairs a descriptor with its rendering outcome.
type RenderedFile struct {
	Descriptor FileDescriptor
	Content    RenderedContent
}
