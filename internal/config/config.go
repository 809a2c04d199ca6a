// Package config loads configuration files, .gitignore rules and assembles the TraversalConfig of a run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

// DefaultExclusions are applied unless disabled with --no-default-excludes.
var DefaultExclusions = []string{"target", ".idea", ".vscode", utils.GitDirectoryName, "Cargo.lock", utils.GitIgnoreFileName}

// ErrNegativeDepth is returned when a negative depth limit is requested.
var ErrNegativeDepth = errors.New("depth must not be negative")

// BuildOptions are the already merged flag and configuration values of a run.
type BuildOptions struct {
	RootPath          string
	MaxDepth          *int
	Extensions        []string
	Exclusions        []string
	NoDefaultExcludes bool
	UseGitignore      bool
	ColorEnabled      bool
	OutputMode        types.OutputMode
	Theme             string
}

// BuildTraversalConfig validates options and produces the immutable configuration of a run.
func BuildTraversalConfig(options BuildOptions) (types.TraversalConfig, error) {
	rootPath := strings.TrimSpace(options.RootPath)
	if rootPath == "" {
		rootPath = "."
	}
	if options.MaxDepth != nil && *options.MaxDepth < 0 {
		return types.TraversalConfig{}, fmt.Errorf("%w: %d", ErrNegativeDepth, *options.MaxDepth)
	}

	var exclusions []string
	if !options.NoDefaultExcludes {
		exclusions = append(exclusions, DefaultExclusions...)
	}
	exclusions = utils.DeduplicatePatterns(append(exclusions, options.Exclusions...))

	config := types.TraversalConfig{
		RootPath:        rootPath,
		MaxDepth:        cloneInt(options.MaxDepth),
		ExtensionFilter: types.NewExtensionFilter(options.Extensions),
		Exclusions:      exclusions,
		ColorEnabled:    options.ColorEnabled,
		OutputMode:      options.OutputMode,
		Theme:           options.Theme,
	}

	if options.UseGitignore {
		matcher, loadErr := LoadGitIgnore(rootPath)
		if loadErr != nil {
			return types.TraversalConfig{}, loadErr
		}
		if matcher != nil {
			config.IgnoreMatcher = matcher
		}
	}
	return config, nil
}

// LoadGitIgnore parses the .gitignore file at the root of a directory tree.
// It returns nil without error when rootPath is a file or has no .gitignore.
func LoadGitIgnore(rootPath string) (types.IgnoreMatcher, error) {
	absoluteRoot, absoluteErr := filepath.Abs(rootPath)
	if absoluteErr != nil {
		return nil, fmt.Errorf("resolve %s: %w", rootPath, absoluteErr)
	}
	rootInfo, statErr := os.Stat(absoluteRoot)
	if statErr != nil || !rootInfo.IsDir() {
		return nil, nil
	}

	gitIgnorePath := filepath.Join(absoluteRoot, utils.GitIgnoreFileName)
	if _, err := os.Stat(gitIgnorePath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", gitIgnorePath, err)
	}
	matcher, parseErr := gitignore.NewGitIgnore(gitIgnorePath, absoluteRoot)
	if parseErr != nil {
		return nil, fmt.Errorf("loading %s from %s: %w", utils.GitIgnoreFileName, absoluteRoot, parseErr)
	}
	return matcher, nil
}
