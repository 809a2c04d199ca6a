package stream

import "github.com/temirov/rcat/internal/types"

// ExitStatus is the process exit code of a run.
type ExitStatus int

const (
	// ExitSuccess reports a run without fatal or read errors.
	ExitSuccess ExitStatus = 0
	// ExitUsage reports invalid flags or configuration.
	ExitUsage ExitStatus = 1
	// ExitRootNotFound reports a missing root path.
	ExitRootNotFound ExitStatus = 2
	// ExitPartial reports a completed run that hit unreadable directories or files.
	ExitPartial ExitStatus = 3
	// ExitInterrupted reports a run stopped by SIGINT or SIGTERM.
	ExitInterrupted ExitStatus = 130
)

// Summary accumulates per-entry outcomes of a run.
type Summary struct {
	Files       int
	Directories int
	// Skipped counts files that were not displayed: binary files and read errors.
	Skipped int
	// Unreadable counts directories and entries the walker could not read or resolve.
	Unreadable int
	// Errors counts unreadable entries plus files that failed to read.
	Errors int
}

func (summary *Summary) record(rendered types.RenderedFile) {
	if rendered.Descriptor.IsDirectory {
		summary.Directories++
		return
	}
	summary.Files++
	if rendered.Content.Kind != types.ContentSkipped || rendered.Content.Reason == types.SkipReasonListMode {
		return
	}
	summary.Skipped++
	if rendered.Content.IsReadError() {
		summary.Errors++
	}
}

func (summary *Summary) recordUnreadable() {
	summary.Unreadable++
	summary.Errors++
}

// SkippedEntries is the number of entries left out of the output.
func (summary Summary) SkippedEntries() int {
	return summary.Skipped + summary.Unreadable
}

// ExitStatus maps the summary of a completed run to an exit code.
func (summary Summary) ExitStatus() ExitStatus {
	if summary.Errors > 0 {
		return ExitPartial
	}
	return ExitSuccess
}
