package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/rcat/internal/utils"
)

const (
	wildcard         = "*"
	segmentSeparator = '/'
)

// exclusionPattern is a compiled exclusion. Only "*" is a wildcard and it never spans a "/".
type exclusionPattern struct {
	source        string
	segments      []glob.Glob
	directoryOnly bool
	// anchored patterns contain a "/" and match the leading components of a relative path.
	anchored bool
}

// compileExclusion compiles one exclusion pattern. A trailing "/" restricts the pattern to directories.
func compileExclusion(source string) (exclusionPattern, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(source, "\\", "/"))
	directoryOnly := strings.HasSuffix(trimmed, "/")
	trimmed = strings.TrimPrefix(strings.TrimRight(trimmed, "/"), "./")
	anchored := strings.Contains(strings.TrimPrefix(trimmed, "/"), "/") || strings.HasPrefix(trimmed, "/")
	rawSegments := utils.SplitPathSegments(trimmed)
	if len(rawSegments) == 0 {
		return exclusionPattern{}, fmt.Errorf("empty exclusion pattern %q", source)
	}

	compiled := make([]glob.Glob, 0, len(rawSegments))
	for _, rawSegment := range rawSegments {
		segmentGlob, compileErr := glob.Compile(quoteExceptWildcard(rawSegment), segmentSeparator)
		if compileErr != nil {
			return exclusionPattern{}, fmt.Errorf("compile exclusion pattern %q: %w", source, compileErr)
		}
		compiled = append(compiled, segmentGlob)
	}
	return exclusionPattern{
		source:        source,
		segments:      compiled,
		directoryOnly: directoryOnly,
		anchored:      anchored,
	}, nil
}

// quoteExceptWildcard escapes every glob meta character except "*".
func quoteExceptWildcard(segment string) string {
	literalParts := strings.Split(segment, wildcard)
	for index, literalPart := range literalParts {
		literalParts[index] = glob.QuoteMeta(literalPart)
	}
	return strings.Join(literalParts, wildcard)
}

// matches reports whether the pattern matches the path segments of an entry.
func (pattern exclusionPattern) matches(pathSegments []string, isDirectory bool) bool {
	if pattern.anchored {
		if len(pathSegments) < len(pattern.segments) {
			return false
		}
		for index, segmentGlob := range pattern.segments {
			if !segmentGlob.Match(pathSegments[index]) {
				return false
			}
		}
		if len(pathSegments) == len(pattern.segments) && pattern.directoryOnly {
			return isDirectory
		}
		return true
	}

	segmentGlob := pattern.segments[len(pattern.segments)-1]
	lastIndex := len(pathSegments) - 1
	for index, pathSegment := range pathSegments {
		if !segmentGlob.Match(pathSegment) {
			continue
		}
		// Every component but the last one is a directory.
		if index < lastIndex || !pattern.directoryOnly || isDirectory {
			return true
		}
	}
	return false
}
