package traversal_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/rcat/internal/traversal"
	"github.com/temirov/rcat/internal/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
}

type walkResult struct {
	descriptors []types.FileDescriptor
	errs        []error
}

func (result walkResult) filePaths() []string {
	var paths []string
	for _, descriptor := range result.descriptors {
		if !descriptor.IsDirectory {
			paths = append(paths, descriptor.RelativePath)
		}
	}
	return paths
}

func (result walkResult) allPaths() []string {
	var paths []string
	for _, descriptor := range result.descriptors {
		paths = append(paths, descriptor.RelativePath)
	}
	return paths
}

func walk(t *testing.T, config types.TraversalConfig, options ...traversal.Option) walkResult {
	t.Helper()
	walker, err := traversal.NewWalker(config, options...)
	require.NoError(t, err)
	var result walkResult
	for descriptor, walkErr := range walker.Walk() {
		if walkErr != nil {
			result.errs = append(result.errs, walkErr)
			continue
		}
		result.descriptors = append(result.descriptors, descriptor)
	}
	return result
}

func depthLimit(value int) *int {
	return &value
}

func TestWalkExtensionFilterSelectsMatchingFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src")
	writeTree(t, root, map[string]string{"a.rs": "fn a() {}", "b.py": "pass", "sub/c.rs": "fn c() {}"})

	result := walk(t, types.TraversalConfig{RootPath: root, ExtensionFilter: types.NewExtensionFilter([]string{"rs"})})

	require.Empty(t, result.errs)
	assert.Equal(t, []string{"a.rs", "sub/c.rs"}, result.filePaths())
	assert.Equal(t, []string{"a.rs", "sub", "sub/c.rs"}, result.allPaths(), "directories are yielded before their contents")
}

func TestWalkOrderIsLexicographic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"zeta.txt": "z", "alpha/one.txt": "1", "beta.txt": "b", "Alpha.txt": "A"})

	result := walk(t, types.TraversalConfig{RootPath: root})

	assert.Equal(t, []string{"Alpha.txt", "alpha", "alpha/one.txt", "beta.txt", "zeta.txt"}, result.allPaths())
}

func TestWalkDepthZeroYieldsDirectChildrenOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"top.txt": "t", "nested/inner.txt": "i", "nested/deeper/leaf.txt": "l"})

	opened := map[string]int{}
	reader := func(directoryPath string) ([]os.DirEntry, error) {
		opened[directoryPath]++
		return os.ReadDir(directoryPath)
	}
	result := walk(t, types.TraversalConfig{RootPath: root, MaxDepth: depthLimit(0)}, traversal.WithDirectoryReader(reader))

	assert.Equal(t, []string{"nested", "top.txt"}, result.allPaths())
	assert.Zero(t, opened[filepath.Join(root, "nested")], "directory beyond the depth limit must not be opened")
}

func TestWalkNeverExceedsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":           "a",
		"l1/b.txt":        "b",
		"l1/l2/c.txt":     "c",
		"l1/l2/l3/d.txt":  "d",
		"x1/x2/x3/x4/e.t": "e",
	})
	for limit := 0; limit <= 4; limit++ {
		result := walk(t, types.TraversalConfig{RootPath: root, MaxDepth: depthLimit(limit)})
		require.Empty(t, result.errs)
		for _, descriptor := range result.descriptors {
			assert.LessOrEqual(t, descriptor.Depth, limit, "depth limit %d violated by %s", limit, descriptor.RelativePath)
		}
	}
	unbounded := walk(t, types.TraversalConfig{RootPath: root})
	assert.Contains(t, unbounded.filePaths(), "x1/x2/x3/x4/e.t")
}

func TestWalkPrunesExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":          "fn main() {}",
		"target/debug/app.rs":  "compiled",
		"src/target/nested.rs": "nested",
		"Cargo.lock":           "lock",
	})

	opened := map[string]int{}
	reader := func(directoryPath string) ([]os.DirEntry, error) {
		opened[directoryPath]++
		return os.ReadDir(directoryPath)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	result := walk(t,
		types.TraversalConfig{RootPath: root, Exclusions: []string{"target", "*.lock"}},
		traversal.WithDirectoryReader(reader),
		traversal.WithLogger(zap.New(core)),
	)

	assert.Equal(t, []string{"src/main.rs"}, result.filePaths())
	assert.Zero(t, opened[filepath.Join(root, "target")])
	assert.Zero(t, opened[filepath.Join(root, "src", "target")])
	assert.Equal(t, 3, logs.FilterMessage("skipping excluded entry").Len(), "each pruned entry is reported")
}

func TestWalkSuppressesSymlinkCycles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real/file.txt": "data", "other.txt": "o"})
	if err := os.Symlink(root, filepath.Join(root, "real", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "file.txt"), filepath.Join(root, "alias.txt")))

	result := walk(t, types.TraversalConfig{RootPath: root})

	require.Empty(t, result.errs)
	seen := map[string]int{}
	for _, descriptor := range result.descriptors {
		canonical, err := filepath.EvalSymlinks(descriptor.AbsolutePath)
		require.NoError(t, err)
		seen[canonical]++
	}
	for canonical, count := range seen {
		assert.Equal(t, 1, count, "%s yielded more than once", canonical)
	}
	assert.NotContains(t, result.allPaths(), "real/loop")
}

func TestWalkFollowsSymlinkedDirectory(t *testing.T) {
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"shared.rs": "pub fn shared() {}"})
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.rs": "fn main() {}"})
	if err := os.Symlink(outside, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := walk(t, types.TraversalConfig{RootPath: root})

	assert.Equal(t, []string{"linked", "linked/shared.rs", "main.rs"}, result.allPaths())
	assert.True(t, result.descriptors[0].IsDirectory)
}

func TestWalkReportsBrokenSymlinkAndContinues(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"z.txt": "z"})
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := walk(t, types.TraversalConfig{RootPath: root})

	require.Len(t, result.errs, 1)
	assert.ErrorIs(t, result.errs[0], traversal.ErrUnreadable)
	assert.False(t, traversal.IsFatal(result.errs[0]))
	assert.Equal(t, []string{"z.txt"}, result.filePaths())
}

func TestWalkMissingRootIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	result := walk(t, types.TraversalConfig{RootPath: missing})

	assert.Empty(t, result.descriptors)
	require.Len(t, result.errs, 1)
	assert.ErrorIs(t, result.errs[0], traversal.ErrNotFound)
	assert.ErrorIs(t, result.errs[0], fs.ErrNotExist)
	assert.True(t, traversal.IsFatal(result.errs[0]))

	var traversalError *traversal.TraversalError
	require.True(t, errors.As(result.errs[0], &traversalError))
	assert.Equal(t, missing, traversalError.Path)
}

func TestWalkRootBelowRegularFileIsFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	missing := filepath.Join(root, "a.txt", "missing")

	result := walk(t, types.TraversalConfig{RootPath: missing})

	assert.Empty(t, result.descriptors)
	require.Len(t, result.errs, 1)
	assert.ErrorIs(t, result.errs[0], traversal.ErrNotFound)
	assert.True(t, traversal.IsFatal(result.errs[0]))
}

func TestWalkReportsDepthPrunedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"top.txt": "t", "nested/inner.txt": "i"})
	core, logs := observer.New(zapcore.InfoLevel)

	result := walk(t, types.TraversalConfig{RootPath: root, MaxDepth: depthLimit(0)}, traversal.WithLogger(zap.New(core)))

	assert.Equal(t, []string{"nested", "top.txt"}, result.allPaths())
	pruned := logs.FilterMessage("not descending past depth limit").All()
	require.Len(t, pruned, 1)
	assert.Equal(t, "nested", pruned[0].ContextMap()["path"])
}

func TestWalkRootFileYieldsSingleDescriptor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"single.py": "print(1)"})
	filePath := filepath.Join(root, "single.py")

	result := walk(t, types.TraversalConfig{
		RootPath:        filePath,
		MaxDepth:        depthLimit(0),
		ExtensionFilter: types.NewExtensionFilter([]string{"rs"}),
	})

	require.Len(t, result.descriptors, 1)
	assert.Equal(t, types.FileDescriptor{AbsolutePath: filePath, RelativePath: "single.py", Depth: 0}, result.descriptors[0])
}

func TestWalkContinuesPastUnreadableDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/one.txt": "1", "b/two.txt": "2", "c/three.txt": "3"})
	lockedDirectory := filepath.Join(root, "b")
	reader := func(directoryPath string) ([]os.DirEntry, error) {
		if directoryPath == lockedDirectory {
			return nil, &fs.PathError{Op: "open", Path: directoryPath, Err: fs.ErrPermission}
		}
		return os.ReadDir(directoryPath)
	}

	result := walk(t, types.TraversalConfig{RootPath: root}, traversal.WithDirectoryReader(reader))

	require.Len(t, result.errs, 1)
	assert.ErrorIs(t, result.errs[0], traversal.ErrUnreadable)
	assert.ErrorIs(t, result.errs[0], fs.ErrPermission)
	assert.Equal(t, []string{"a/one.txt", "c/three.txt"}, result.filePaths())
}

func TestWalkStopsWhenConsumerBreaks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	walker, err := traversal.NewWalker(types.TraversalConfig{RootPath: root})
	require.NoError(t, err)

	count := 0
	for range walker.Walk() {
		count++
		break
	}
	assert.Equal(t, 1, count)

	again := 0
	for range walker.Walk() {
		again++
	}
	assert.Equal(t, 3, again, "a fresh Walk re-walks from scratch")
}

func TestNewWalkerRejectsInvalidExclusion(t *testing.T) {
	_, err := traversal.NewWalker(types.TraversalConfig{RootPath: ".", Exclusions: []string{"/"}})
	require.Error(t, err)
}
