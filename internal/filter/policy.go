// Package filter decides which traversed entries are selected.
//
// A Policy is compiled once from a TraversalConfig and evaluated for every entry. Evaluation is pure:
// it never touches the file system, so the traversal engine can ask whether a directory would be
// excluded before opening it.
package filter

import (
	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

// Policy evaluates descriptors against depth, extension and exclusion configuration.
type Policy struct {
	maxDepth      *int
	extensions    map[string]struct{}
	exclusions    []exclusionPattern
	ignoreMatcher types.IgnoreMatcher
}

// New compiles the filtering parts of config into a Policy.
func New(config types.TraversalConfig) (*Policy, error) {
	policy := &Policy{
		extensions:    config.ExtensionFilter,
		ignoreMatcher: config.IgnoreMatcher,
	}
	if config.MaxDepth != nil {
		depthLimit := *config.MaxDepth
		policy.maxDepth = &depthLimit
	}
	for _, source := range utils.DeduplicatePatterns(config.Exclusions) {
		compiled, compileErr := compileExclusion(source)
		if compileErr != nil {
			return nil, compileErr
		}
		policy.exclusions = append(policy.exclusions, compiled)
	}
	return policy, nil
}

// Accepts compiles config and evaluates descriptor against it.
// Invalid exclusion patterns reject every descriptor.
func Accepts(descriptor types.FileDescriptor, config types.TraversalConfig) bool {
	policy, policyErr := New(config)
	if policyErr != nil {
		return false
	}
	return policy.Accepts(descriptor)
}

// Accepts reports whether descriptor passes the depth, extension and exclusion checks.
func (policy *Policy) Accepts(descriptor types.FileDescriptor) bool {
	return policy.WithinDepth(descriptor) && policy.ExtensionAllowed(descriptor) && !policy.Excluded(descriptor)
}

// WithinDepth reports whether descriptor respects the configured depth limit.
func (policy *Policy) WithinDepth(descriptor types.FileDescriptor) bool {
	return policy.maxDepth == nil || descriptor.Depth <= *policy.maxDepth
}

// ExtensionAllowed reports whether a file's extension is in the filter. Directories always pass.
func (policy *Policy) ExtensionAllowed(descriptor types.FileDescriptor) bool {
	if descriptor.IsDirectory || len(policy.extensions) == 0 {
		return true
	}
	_, allowed := policy.extensions[utils.FileExtension(descriptor.RelativePath)]
	return allowed
}

// Excluded reports whether descriptor matches an exclusion pattern or the ignore matcher.
func (policy *Policy) Excluded(descriptor types.FileDescriptor) bool {
	_, excluded := policy.ExclusionReason(descriptor)
	return excluded
}

// ExclusionReason returns the pattern that excludes descriptor.
func (policy *Policy) ExclusionReason(descriptor types.FileDescriptor) (string, bool) {
	pathSegments := utils.SplitPathSegments(descriptor.RelativePath)
	if len(pathSegments) == 0 {
		return "", false
	}
	for _, pattern := range policy.exclusions {
		if pattern.matches(pathSegments, descriptor.IsDirectory) {
			return pattern.source, true
		}
	}
	if policy.ignoreMatcher != nil && descriptor.AbsolutePath != "" && policy.ignoreMatcher.Match(descriptor.AbsolutePath, descriptor.IsDirectory) {
		return utils.GitIgnoreFileName, true
	}
	return "", false
}

// ShouldDescend reports whether the children of a directory descriptor can contain selected entries.
// Excluded directories and directories whose children would exceed the depth limit are pruned.
func (policy *Policy) ShouldDescend(descriptor types.FileDescriptor) bool {
	if !descriptor.IsDirectory || policy.Excluded(descriptor) {
		return false
	}
	return policy.maxDepth == nil || descriptor.Depth < *policy.maxDepth
}
