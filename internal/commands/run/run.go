package run

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thomas-vilte/patchrelease/internal/builder"
	"github.com/thomas-vilte/patchrelease/internal/config"
	"github.com/thomas-vilte/patchrelease/internal/git"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/patch"
	"github.com/thomas-vilte/patchrelease/internal/pipeline"
	"github.com/thomas-vilte/patchrelease/internal/report"
	"github.com/thomas-vilte/patchrelease/internal/runner"
	"github.com/urfave/cli/v3"
)

// ReleasePipeline is the part of pipeline.Pipeline the command drives.
type ReleasePipeline interface {
	Run(ctx context.Context, req pipeline.Request) (*models.Result, error)
}

// PipelineProvider builds a pipeline for validated settings.
type PipelineProvider func(settings *config.Settings) ReleasePipeline

// DefaultPipeline wires the real git, patch and tar backed steps. Tools run
// in the C locale so their stderr, kept in error context, reads the same on
// every runner.
func DefaultPipeline(settings *config.Settings) ReleasePipeline {
	r := runner.New(runner.WithEnv("LC_ALL", "C"))
	gitService := git.NewGitService(r, git.WithExcludes(settings.Exclude...))

	return pipeline.New(
		patch.NewGenerator(gitService),
		patch.NewApplier(r),
		builder.NewPackageBuilder(settings.Workspace, builder.WithRunner(r)),
	)
}

type RunCommandFactory struct {
	newPipeline PipelineProvider
	resolveOpts []config.ResolveOption
	stdout      io.Writer
	stderr      io.Writer
}

type Option func(*RunCommandFactory)

func WithPipelineProvider(p PipelineProvider) Option {
	return func(f *RunCommandFactory) {
		f.newPipeline = p
	}
}

func WithResolveOptions(opts ...config.ResolveOption) Option {
	return func(f *RunCommandFactory) {
		f.resolveOpts = append(f.resolveOpts, opts...)
	}
}

// WithOutput sets where the report (stdout) and logs (stderr) go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(f *RunCommandFactory) {
		f.stdout = stdout
		f.stderr = stderr
	}
}

func NewRunCommandFactory(opts ...Option) *RunCommandFactory {
	f := &RunCommandFactory{
		newPipeline: DefaultPipeline,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RunCommandFactory) CreateCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Generate, apply and stamp the patch, then package the project",
		Flags:  Flags(),
		Action: f.Action,
	}
}

// Flags returns a fresh set of run flags. Each one can also be set from the
// environment GitHub Actions provides.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML file with default inputs",
		},
		&cli.StringFlag{
			Name:    "workspace",
			Usage:   "Workspace root; the package is written here",
			Sources: cli.EnvVars("GITHUB_WORKSPACE"),
		},
		&cli.StringFlag{
			Name:    "project-dir",
			Usage:   "Project directory, relative to the workspace root",
			Sources: cli.EnvVars("INPUT_PROJECT_DIR"),
		},
		&cli.StringFlag{
			Name:    "project-type",
			Usage:   "One of core-package, module-package, extension-package",
			Sources: cli.EnvVars("INPUT_PROJECT_TYPE"),
		},
		&cli.StringFlag{
			Name:    "project-name",
			Usage:   "Package name prefix (defaults to the repository name)",
			Sources: cli.EnvVars("INPUT_PROJECT_NAME"),
		},
		&cli.StringFlag{
			Name:    "base-version",
			Usage:   "Base version; also names the <base>-patches branch",
			Sources: cli.EnvVars("INPUT_BASE_VERSION"),
		},
		&cli.StringFlag{
			Name:    "revision",
			Usage:   "Current revision (defaults to HEAD)",
			Sources: cli.EnvVars("GITHUB_SHA"),
		},
		&cli.StringFlag{
			Name:    "repository",
			Usage:   "owner/repo slug used for the default project name",
			Sources: cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringSliceFlag{
			Name:    "exclude",
			Usage:   "Paths left out of the patch (default .github)",
			Sources: cli.EnvVars("INPUT_EXCLUDE"),
		},
		&cli.StringFlag{
			Name:    "output-file",
			Usage:   "File the outputs are appended to",
			Sources: cli.EnvVars("GITHUB_OUTPUT"),
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Report format: text, json or yaml",
			Value: string(report.FormatText),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Show debug logs",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Show informational logs",
		},
	}
}

func (f *RunCommandFactory) Action(ctx context.Context, cmd *cli.Command) error {
	log := logger.New(f.stderr, cmd.Bool("debug"), cmd.Bool("verbose"), os.Getenv("GITHUB_ACTIONS") == "true").
		With("run_id", uuid.NewString())
	ctx = logger.WithLogger(ctx, log)
	start := time.Now()

	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	inputs, err := loadInputs(cmd)
	if err != nil {
		logger.Error(ctx, "failed to load inputs", err)
		return err
	}

	settings, err := config.Resolve(inputs, f.resolveOpts...)
	if err != nil {
		logger.Error(ctx, "invalid inputs", err)
		return err
	}

	ctx = logger.With(ctx, "project", settings.Project.Name)
	log = logger.FromContext(ctx)

	log.Debug("inputs resolved",
		"project_dir", settings.Project.Dir,
		"project_type", settings.Project.Type,
		"base_version", settings.BaseVersion,
		"revision", settings.Revision)

	result, err := f.newPipeline(settings).Run(ctx, pipeline.Request{
		Project:     settings.Project,
		BaseVersion: settings.BaseVersion,
		Revision:    settings.Revision,
	})
	if err != nil {
		logger.Error(ctx, "patch release failed", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	if settings.OutputFile != "" {
		if err := report.WriteOutputFile(settings.OutputFile, result); err != nil {
			logger.Error(ctx, "failed to write outputs", err, "path", settings.OutputFile)
			return err
		}
		log.Debug("outputs written", "path", settings.OutputFile)
	}

	log.Info("outputs published",
		"version", result.Version,
		"package", result.Package,
		"duration_ms", time.Since(start).Milliseconds())

	return report.Print(f.stdout, format, result)
}

// loadInputs layers flags and environment over the optional config file.
func loadInputs(cmd *cli.Command) (config.Inputs, error) {
	var fileInputs config.Inputs
	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Inputs{}, err
		}
		fileInputs = *loaded
	}

	flagInputs := config.Inputs{
		Workspace:   cmd.String("workspace"),
		ProjectDir:  cmd.String("project-dir"),
		ProjectType: cmd.String("project-type"),
		ProjectName: cmd.String("project-name"),
		BaseVersion: cmd.String("base-version"),
		Revision:    cmd.String("revision"),
		Repository:  cmd.String("repository"),
		Exclude:     nonEmpty(cmd.StringSlice("exclude")),
		OutputFile:  cmd.String("output-file"),
	}

	return config.Merge(fileInputs, flagInputs), nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
