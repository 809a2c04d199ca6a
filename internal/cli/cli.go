// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/rcat/internal/config"
	"github.com/temirov/rcat/internal/highlight"
	"github.com/temirov/rcat/internal/services/clipboard"
	"github.com/temirov/rcat/internal/services/stream"
	"github.com/temirov/rcat/internal/types"
	"github.com/temirov/rcat/internal/utils"
)

const (
	depthFlagName             = "depth"
	extensionFlagName         = "ext"
	noColorFlagName           = "no-color"
	listFlagName              = "list"
	jsonFlagName              = "json"
	exclusionFlagName         = "exclude"
	exclusionFlagShorthand    = "e"
	noDefaultExcludesFlagName = "no-default-excludes"
	gitignoreFlagName         = "gitignore"
	themeFlagName             = "theme"
	clipboardFlagName         = "clipboard"
	configFlagName            = "config"
	verboseFlagName           = "verbose"
	verboseFlagShorthand      = "v"
	versionFlagName           = "version"

	versionTemplate      = "%s version: %s\n"
	defaultPath          = "."
	rootUse              = utils.ApplicationName + " [path]"
	rootShortDescription = "print a directory tree of source files with syntax highlighting"
	rootLongDescription  = `rcat walks a directory tree depth-first in lexicographic order and prints every selected file
with a header line and syntax highlighted content. Use --depth, --ext and -e to narrow the selection,
--list to print paths only and --json for a machine readable document.`
	rootUsageExample = `  # Print every Rust file under src
  rcat --ext rs src

  # List direct children only
  rcat --depth 0 --list .

  # JSON document without build output
  rcat --json -e dist -e "*.min.js" web`

	depthFlagDescription             = "maximum nesting depth; 0 prints direct children only"
	extensionFlagDescription         = "only include files with this extension (repeatable, comma separated)"
	noColorFlagDescription           = "disable syntax highlighting and colored headers"
	listFlagDescription              = "print file paths only"
	jsonFlagDescription              = "print a single JSON array"
	exclusionFlagDescription         = "exclude entries matching pattern (repeatable)"
	noDefaultExcludesFlagDescription = "do not apply the built-in exclusions"
	gitignoreFlagDescription         = "also exclude entries matched by the root .gitignore"
	themeFlagDescription             = "syntax highlighting theme"
	clipboardFlagDescription         = "also copy the uncolored output to the system clipboard"
	configFlagDescription            = "configuration file (default ./.rcat.yaml)"
	verboseFlagDescription           = "increase log verbosity"
	versionFlagDescription           = "display application version"

	unknownThemeWarning = "unknown theme, using fallback style"
)

// Dependencies are the process resources the command uses. Zero values fall back to the real process.
type Dependencies struct {
	Stdout           io.Writer
	Stderr           io.Writer
	Clipboard        clipboard.Copier
	WorkingDirectory string
	Environment      func(key string) (string, bool)
	// IsTerminal reports whether colored output may be written to writer.
	IsTerminal func(writer io.Writer) bool
}

// ExitError carries the exit status of a failed or partially successful run.
type ExitError struct {
	Status stream.ExitStatus
	Err    error
}

func (exitError *ExitError) Error() string {
	if exitError.Err == nil {
		return fmt.Sprintf("exit status %d", exitError.Status)
	}
	return exitError.Err.Error()
}

func (exitError *ExitError) Unwrap() error {
	return exitError.Err
}

// Execute runs rcat with the process arguments and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], Dependencies{})
}

// Run executes the command line and maps the outcome to an exit code.
func Run(ctx context.Context, arguments []string, dependencies Dependencies) int {
	dependencies = dependencies.withDefaults()
	rootCommand := createRootCommand(dependencies)
	rootCommand.SetArgs(arguments)
	rootCommand.SetOut(dependencies.Stdout)
	rootCommand.SetErr(dependencies.Stderr)

	runErr := rootCommand.ExecuteContext(ctx)
	if runErr == nil {
		return int(stream.ExitSuccess)
	}
	var exitError *ExitError
	if !errors.As(runErr, &exitError) {
		exitError = &ExitError{Status: stream.ExitUsage, Err: runErr}
	}
	if exitError.Err != nil {
		fmt.Fprintf(dependencies.Stderr, "%s: %v\n", utils.ApplicationName, exitError.Err)
	}
	return int(exitError.Status)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Stderr == nil {
		dependencies.Stderr = os.Stderr
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.Environment == nil {
		dependencies.Environment = os.LookupEnv
	}
	if dependencies.IsTerminal == nil {
		dependencies.IsTerminal = isTerminal
	}
	return dependencies
}

func isTerminal(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// commandOptions stores the raw flag values of one invocation.
type commandOptions struct {
	depth             int
	extensions        []string
	noColor           bool
	listMode          bool
	jsonMode          bool
	exclusions        []string
	noDefaultExcludes bool
	useGitignore      bool
	theme             string
	copyToClipboard   bool
	configPath        string
	verbosity         int
	showVersion       bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	var options commandOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, err := fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.ApplicationName, utils.GetApplicationVersion())
				return err
			}
			return runRcat(command, arguments, options, dependencies)
		},
	}

	flags := rootCommand.Flags()
	flags.IntVar(&options.depth, depthFlagName, 0, depthFlagDescription)
	flags.StringSliceVar(&options.extensions, extensionFlagName, nil, extensionFlagDescription)
	flags.BoolVar(&options.noColor, noColorFlagName, false, noColorFlagDescription)
	flags.BoolVar(&options.listMode, listFlagName, false, listFlagDescription)
	flags.BoolVar(&options.jsonMode, jsonFlagName, false, jsonFlagDescription)
	flags.StringArrayVarP(&options.exclusions, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	flags.BoolVar(&options.noDefaultExcludes, noDefaultExcludesFlagName, false, noDefaultExcludesFlagDescription)
	registerBooleanFlag(flags, &options.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	flags.StringVar(&options.theme, themeFlagName, highlight.DefaultTheme, themeFlagDescription)
	registerBooleanFlag(flags, &options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.CountVarP(&options.verbosity, verboseFlagName, verboseFlagShorthand, verboseFlagDescription)
	flags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.MarkFlagsMutuallyExclusive(listFlagName, jsonFlagName)
	return rootCommand
}

// runRcat merges flags with configuration, runs the pipeline and maps the outcome to an ExitError.
func runRcat(command *cobra.Command, arguments []string, options commandOptions, dependencies Dependencies) error {
	logger := utils.NewApplicationLogger(utils.VerbosityLevel(options.verbosity), dependencies.Stderr)
	defer func() { _ = logger.Sync() }()

	applicationConfig, configErr := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: dependencies.WorkingDirectory,
		ExplicitFilePath: options.configPath,
		Environment:      dependencies.Environment,
	})
	if configErr != nil {
		return &ExitError{Status: stream.ExitUsage, Err: configErr}
	}

	flags := command.Flags()
	buildOptions := config.BuildOptions{
		RootPath:          resolveRootPath(arguments, dependencies.Environment),
		MaxDepth:          applicationConfig.Depth,
		Extensions:        applicationConfig.Ext,
		Exclusions:        append(append([]string{}, applicationConfig.Exclude...), options.exclusions...),
		NoDefaultExcludes: options.noDefaultExcludes,
		OutputMode:        outputMode(options),
		Theme:             applicationConfig.Theme,
	}
	if flags.Changed(depthFlagName) {
		depth := options.depth
		buildOptions.MaxDepth = &depth
	}
	if flags.Changed(extensionFlagName) {
		buildOptions.Extensions = options.extensions
	}
	if flags.Changed(gitignoreFlagName) || applicationConfig.Gitignore == nil {
		buildOptions.UseGitignore = options.useGitignore
	} else {
		buildOptions.UseGitignore = *applicationConfig.Gitignore
	}
	if flags.Changed(themeFlagName) || buildOptions.Theme == "" {
		buildOptions.Theme = options.theme
	}
	if !highlight.ThemeExists(buildOptions.Theme) {
		logger.Warn(unknownThemeWarning, zap.String("theme", buildOptions.Theme))
	}

	colorConfigured := applicationConfig.Color == nil || *applicationConfig.Color
	buildOptions.ColorEnabled = colorConfigured && !options.noColor && !options.copyToClipboard && dependencies.IsTerminal(dependencies.Stdout)

	traversalConfig, buildErr := config.BuildTraversalConfig(buildOptions)
	if buildErr != nil {
		return &ExitError{Status: stream.ExitUsage, Err: buildErr}
	}
	logger.Debug("starting traversal",
		zap.String("root", traversalConfig.RootPath),
		zap.String("mode", traversalConfig.OutputMode.String()),
		zap.Bool("color", traversalConfig.ColorEnabled),
		zap.Strings("exclusions", traversalConfig.Exclusions),
	)

	stdout := dependencies.Stdout
	var clipboardBuffer bytes.Buffer
	if options.copyToClipboard {
		stdout = io.MultiWriter(dependencies.Stdout, &clipboardBuffer)
	}

	summary, runErr := stream.Run(command.Context(), stream.Options{
		Config:      traversalConfig,
		Highlighter: highlight.NewChromaHighlighter(traversalConfig.Theme),
		Stdout:      stdout,
		Stderr:      dependencies.Stderr,
		Logger:      logger,
	})
	if runErr != nil {
		return classifyRunError(runErr)
	}

	if options.copyToClipboard {
		if copyErr := dependencies.Clipboard.Copy(clipboardBuffer.String()); copyErr != nil {
			logger.Warn("failed to copy output to clipboard", zap.Error(copyErr))
		} else {
			logger.Debug("copied output to clipboard", zap.Int("bytes", clipboardBuffer.Len()))
		}
	}

	if status := summary.ExitStatus(); status != stream.ExitSuccess {
		return &ExitError{Status: status}
	}
	return nil
}

func classifyRunError(runErr error) error {
	switch {
	case errors.Is(runErr, stream.ErrRootNotFound):
		return &ExitError{Status: stream.ExitRootNotFound, Err: runErr}
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		return &ExitError{Status: stream.ExitInterrupted, Err: errors.New("interrupted")}
	case errors.Is(runErr, stream.ErrRootUnreadable):
		return &ExitError{Status: stream.ExitPartial, Err: runErr}
	default:
		return &ExitError{Status: stream.ExitUsage, Err: runErr}
	}
}

func resolveRootPath(arguments []string, environment func(string) (string, bool)) string {
	if len(arguments) > 0 && strings.TrimSpace(arguments[0]) != "" {
		return arguments[0]
	}
	if value, present := environment(utils.RootPathEnvironmentVariable); present && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultPath
}

func outputMode(options commandOptions) types.OutputMode {
	switch {
	case options.listMode:
		return types.OutputModeList
	case options.jsonMode:
		return types.OutputModeJSON
	default:
		return types.OutputModeContent
	}
}
