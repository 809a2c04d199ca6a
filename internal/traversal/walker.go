// Package traversal walks a directory tree and yields the entries selected by a filter policy.
package traversal

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/rcat/internal/filter"
	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

// DirectoryReader lists a directory. os.ReadDir is used unless overridden.
type DirectoryReader func(directoryPath string) ([]os.DirEntry, error)

// Option customizes a Walker.
type Option func(*Walker)

// WithLogger sets the logger used to report pruned and skipped entries.
func WithLogger(logger *zap.Logger) Option {
	return func(walker *Walker) {
		walker.logger = utils.LoggerOrNop(logger)
	}
}

// WithDirectoryReader replaces os.ReadDir.
func WithDirectoryReader(reader DirectoryReader) Option {
	return func(walker *Walker) {
		if reader != nil {
			walker.readDirectory = reader
		}
	}
}

// Walker traverses config.RootPath depth-first in lexicographic order.
type Walker struct {
	config        types.TraversalConfig
	policy        *filter.Policy
	logger        *zap.Logger
	readDirectory DirectoryReader
}

// NewWalker compiles the filter policy for config.
func NewWalker(config types.TraversalConfig, options ...Option) (*Walker, error) {
	policy, policyErr := filter.New(config)
	if policyErr != nil {
		return nil, policyErr
	}
	walker := &Walker{
		config:        config,
		policy:        policy,
		logger:        zap.NewNop(),
		readDirectory: os.ReadDir,
	}
	for _, option := range options {
		option(walker)
	}
	return walker, nil
}

// Walk returns a lazy sequence of selected descriptors. Errors are *TraversalError values: a fatal
// NotFound or RootUnreadable error is the only element yielded for a root that cannot be stat'ed,
// Unreadable errors are followed by the remaining entries. Each call walks the tree again from scratch.
func (walker *Walker) Walk() iter.Seq2[types.FileDescriptor, error] {
	return func(yield func(types.FileDescriptor, error) bool) {
		absoluteRoot, absoluteErr := filepath.Abs(walker.config.RootPath)
		if absoluteErr != nil {
			yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindRootUnreadable, Path: walker.config.RootPath, Err: absoluteErr})
			return
		}

		rootInfo, statErr := os.Stat(absoluteRoot)
		if statErr != nil {
			if rootMissing(statErr) {
				yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindNotFound, Path: walker.config.RootPath, Err: statErr})
				return
			}
			yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindRootUnreadable, Path: absoluteRoot, Err: statErr})
			return
		}

		if !rootInfo.IsDir() {
			yield(types.FileDescriptor{
				AbsolutePath: absoluteRoot,
				RelativePath: filepath.Base(absoluteRoot),
				Depth:        0,
			}, nil)
			return
		}

		state := &walkState{walker: walker, yield: yield, visited: map[string]struct{}{}}
		if canonicalRoot, canonicalErr := filepath.EvalSymlinks(absoluteRoot); canonicalErr == nil {
			state.visited[canonicalRoot] = struct{}{}
		}
		state.walkDirectory(absoluteRoot, "", 0)
	}
}

// rootMissing reports stat failures meaning the root path does not exist, including a path running
// through a regular file (ENOTDIR) or one too long to resolve.
func rootMissing(statErr error) bool {
	return errors.Is(statErr, fs.ErrNotExist) || errors.Is(statErr, syscall.ENOTDIR) || errors.Is(statErr, syscall.ENAMETOOLONG)
}

// walkState holds the bookkeeping of one Walk call.
type walkState struct {
	walker  *Walker
	yield   func(types.FileDescriptor, error) bool
	visited map[string]struct{}
}

// walkDirectory visits the children of directoryPath, which sit at childDepth.
// It returns false when the consumer stopped the iteration.
func (state *walkState) walkDirectory(directoryPath string, relativeDirectory string, childDepth int) bool {
	entries, readErr := state.walker.readDirectory(directoryPath)
	if readErr != nil {
		return state.yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindUnreadable, Path: directoryPath, Err: readErr})
	}

	slices.SortFunc(entries, func(left, right os.DirEntry) int {
		return strings.Compare(left.Name(), right.Name())
	})

	for _, entry := range entries {
		childPath := filepath.Join(directoryPath, entry.Name())
		isDirectory := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			targetInfo, targetErr := os.Stat(childPath)
			if targetErr != nil {
				if !state.yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindUnreadable, Path: childPath, Err: targetErr}) {
					return false
				}
				continue
			}
			isDirectory = targetInfo.IsDir()
		}

		descriptor := types.FileDescriptor{
			AbsolutePath: childPath,
			RelativePath: path.Join(relativeDirectory, entry.Name()),
			Depth:        childDepth,
			IsDirectory:  isDirectory,
		}
		if !state.visitEntry(descriptor) {
			return false
		}
	}
	return true
}

func (state *walkState) visitEntry(descriptor types.FileDescriptor) bool {
	logger := state.walker.logger
	policy := state.walker.policy

	if pattern, excluded := policy.ExclusionReason(descriptor); excluded {
		logger.Info("skipping excluded entry", zap.String("path", descriptor.RelativePath), zap.String("pattern", pattern))
		return true
	}
	if !policy.WithinDepth(descriptor) {
		logger.Debug("skipping entry beyond depth limit", zap.String("path", descriptor.RelativePath))
		return true
	}
	if !descriptor.IsDirectory && !policy.ExtensionAllowed(descriptor) {
		logger.Debug("skipping file with unselected extension", zap.String("path", descriptor.RelativePath))
		return true
	}

	canonicalPath, canonicalErr := filepath.EvalSymlinks(descriptor.AbsolutePath)
	if canonicalErr != nil {
		return state.yield(types.FileDescriptor{}, &TraversalError{Kind: ErrorKindUnreadable, Path: descriptor.AbsolutePath, Err: canonicalErr})
	}
	if _, seen := state.visited[canonicalPath]; seen {
		logger.Debug("skipping already visited entry", zap.String("path", descriptor.RelativePath), zap.String("target", canonicalPath))
		return true
	}
	state.visited[canonicalPath] = struct{}{}

	if !state.yield(descriptor, nil) {
		return false
	}
	if !descriptor.IsDirectory {
		return true
	}
	if !policy.ShouldDescend(descriptor) {
		logger.Info("not descending past depth limit", zap.String("path", descriptor.RelativePath))
		return true
	}
	return state.walkDirectory(descriptor.AbsolutePath, descriptor.RelativePath, descriptor.Depth+1)
}
