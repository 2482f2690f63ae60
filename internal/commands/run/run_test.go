package run

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/patchrelease/internal/config"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/pipeline"
)

var envKeys = []string{
	"GITHUB_WORKSPACE", "GITHUB_SHA", "GITHUB_REPOSITORY", "GITHUB_OUTPUT", "GITHUB_ACTIONS",
	"INPUT_PROJECT_DIR", "INPUT_PROJECT_TYPE", "INPUT_PROJECT_NAME", "INPUT_BASE_VERSION", "INPUT_EXCLUDE",
}

// clearEnv unsets the inputs a CI runner may have in its environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

type fixture struct {
	workspace  string
	projectDir string
	pipeline   *MockPipeline
	settings   *config.Settings
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func setupRunTest(t *testing.T) *fixture {
	clearEnv(t)

	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "myext"), 0o755))

	fx := &fixture{
		workspace:  ws,
		projectDir: filepath.Join(ws, "myext"),
		pipeline:   new(MockPipeline),
	}
	return fx
}

func (fx *fixture) factory(opts ...Option) *RunCommandFactory {
	opts = append([]Option{
		WithPipelineProvider(func(s *config.Settings) ReleasePipeline {
			fx.settings = s
			return fx.pipeline
		}),
		WithResolveOptions(
			config.WithHeadRevision(func(string) (string, error) { return "", errors.New("no repository") }),
			config.WithRepositoryName(func(string) (string, error) { return "", errors.New("no repository") }),
		),
		WithOutput(&fx.stdout, &fx.stderr),
	}, opts...)
	return NewRunCommandFactory(opts...)
}

func result(ws string) *models.Result {
	return &models.Result{
		Version:     "5.60+patch.abcdef",
		Package:     "myext-5.60+patch.abcdef.tar.gz",
		PackagePath: filepath.Join(ws, "myext-5.60+patch.abcdef.tar.gz"),
	}
}

func TestRunCommand(t *testing.T) {
	t.Run("should run the pipeline and publish outputs", func(t *testing.T) {
		fx := setupRunTest(t)
		outputFile := filepath.Join(t.TempDir(), "github_output")

		fx.pipeline.On("Run", mock.Anything, pipeline.Request{
			Project: models.Project{
				Dir:  fx.projectDir,
				Type: models.ExtensionPackage,
				Name: "myext",
			},
			BaseVersion: "5.60",
			Revision:    "abcdef123456",
		}).Return(result(fx.workspace), nil)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run",
			"--workspace", fx.workspace,
			"--project-dir", "myext",
			"--project-type", "extension-package",
			"--base-version", "5.60",
			"--revision", "abcdef123456",
			"--output-file", outputFile,
			"--format", "json",
		})

		require.NoError(t, err)
		fx.pipeline.AssertExpectations(t)

		assert.JSONEq(t, `{
			"version": "5.60+patch.abcdef",
			"package": "myext-5.60+patch.abcdef.tar.gz",
			"package_path": "`+filepath.Join(fx.workspace, "myext-5.60+patch.abcdef.tar.gz")+`"
		}`, fx.stdout.String())

		content, err := os.ReadFile(outputFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "version=5.60+patch.abcdef\n")
		assert.Contains(t, string(content), "package=myext-5.60+patch.abcdef.tar.gz\n")
	})

	t.Run("should read inputs from the environment", func(t *testing.T) {
		fx := setupRunTest(t)
		t.Setenv("GITHUB_WORKSPACE", fx.workspace)
		t.Setenv("GITHUB_SHA", "0123456789")
		t.Setenv("GITHUB_REPOSITORY", "acme/my-extension")
		t.Setenv("INPUT_PROJECT_DIR", "myext")
		t.Setenv("INPUT_PROJECT_TYPE", "module-package")
		t.Setenv("INPUT_BASE_VERSION", "7.x")
		t.Setenv("INPUT_EXCLUDE", ".github,docs")

		fx.pipeline.On("Run", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
			return req.Project.Name == "my-extension" &&
				req.Project.Type == models.ModulePackage &&
				req.BaseVersion == "7.x" &&
				req.Revision == "0123456789"
		})).Return(result(fx.workspace), nil)

		cmd := fx.factory().CreateCommand()
		require.NoError(t, cmd.Run(context.Background(), []string{"run"}))

		fx.pipeline.AssertExpectations(t)
		assert.Equal(t, []string{".github", "docs"}, fx.settings.Exclude)
		assert.Contains(t, fx.stdout.String(), "5.60+patch.abcdef")
	})

	t.Run("should layer flags over the config file", func(t *testing.T) {
		fx := setupRunTest(t)
		cfgPath := filepath.Join(t.TempDir(), "patch-release.toml")
		require.NoError(t, os.WriteFile(cfgPath, []byte(
			"workspace = \""+filepath.ToSlash(fx.workspace)+"\"\n"+
				"project_dir = \"myext\"\n"+
				"project_type = \"core-package\"\n"+
				"project_name = \"from-file\"\n"+
				"base_version = \"1.0\"\n"+
				"revision = \"fedcba987654\"\n"), 0o644))

		fx.pipeline.On("Run", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
			return req.Project.Name == "from-file" &&
				req.Project.Type == models.CorePackage &&
				req.BaseVersion == "2.0" &&
				req.Revision == "fedcba987654"
		})).Return(result(fx.workspace), nil)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run", "--config", cfgPath, "--base-version", "2.0"})

		require.NoError(t, err)
		fx.pipeline.AssertExpectations(t)
	})

	t.Run("should fail before running on invalid project type", func(t *testing.T) {
		fx := setupRunTest(t)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run",
			"--workspace", fx.workspace,
			"--project-dir", "myext",
			"--project-type", "theme",
			"--base-version", "5.60",
			"--revision", "abcdef",
		})

		assert.ErrorIs(t, err, domainErrors.ErrUnrecognizedProjectType)
		fx.pipeline.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		assert.Empty(t, fx.stdout.String())
	})

	t.Run("should fail when the workspace is not set", func(t *testing.T) {
		fx := setupRunTest(t)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run",
			"--project-dir", "myext",
			"--project-type", "extension-package",
			"--base-version", "5.60",
		})

		assert.ErrorIs(t, err, domainErrors.ErrWorkspaceMissing)
		fx.pipeline.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("should fail on unknown format", func(t *testing.T) {
		fx := setupRunTest(t)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run", "--format", "xml"})

		var appErr *domainErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, domainErrors.TypeConfiguration, appErr.Type)
		fx.pipeline.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("should return the pipeline error and publish nothing", func(t *testing.T) {
		fx := setupRunTest(t)
		outputFile := filepath.Join(t.TempDir(), "github_output")
		applyErr := domainErrors.ErrPatchApply.WithError(errors.New("exit status 1"))

		fx.pipeline.On("Run", mock.Anything, mock.Anything).Return(nil, applyErr)

		cmd := fx.factory().CreateCommand()
		err := cmd.Run(context.Background(), []string{"run",
			"--workspace", fx.workspace,
			"--project-dir", "myext",
			"--project-type", "extension-package",
			"--base-version", "5.60",
			"--revision", "abcdef",
			"--output-file", outputFile,
		})

		assert.ErrorIs(t, err, domainErrors.ErrPatchApply)
		assert.Empty(t, fx.stdout.String())
		assert.NoFileExists(t, outputFile)
		assert.Contains(t, fx.stderr.String(), "patch release failed")
	})
}

// setupProjectRepo creates <ws>/myext as a git repository whose HEAD is the
// base release and whose origin/5.60-patches ref adds one line to
// module.info plus a CI workflow.
func setupProjectRepo(t *testing.T, ws string) string {
	t.Helper()
	for _, tool := range []string{"git", "patch", "tar"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}

	dir := filepath.Join(ws, "myext")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	gitCmd := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test User", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test User", "GIT_COMMITTER_EMAIL=test@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(bytes.TrimSpace(out))
	}

	gitCmd("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "module.info"), []byte("name = Module\n"), 0o644))
	gitCmd("add", ".")
	gitCmd("commit", "-q", "-m", "base")
	base := gitCmd("rev-parse", "HEAD")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "module.info"), []byte("name = Module\nfixed = true\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".github", "workflows"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".github", "workflows", "ci.yml"), []byte("on: push\n"), 0o644))
	gitCmd("add", ".")
	gitCmd("commit", "-q", "-m", "patch")
	patched := gitCmd("rev-parse", "HEAD")

	gitCmd("update-ref", "refs/remotes/origin/5.60-patches", patched)
	gitCmd("reset", "-q", "--hard", base)
	return dir
}

func archiveEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	entries := map[string]string{}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[filepath.ToSlash(filepath.Clean(hdr.Name))] = string(data)
	}
	return entries
}

func TestDefaultPipeline_Integration(t *testing.T) {
	ws := t.TempDir()
	projectDir := setupProjectRepo(t, ws)

	p := DefaultPipeline(&config.Settings{Workspace: ws, Exclude: []string{".github"}})
	res, err := p.Run(context.Background(), pipeline.Request{
		Project: models.Project{
			Dir:  projectDir,
			Type: models.ModulePackage,
			Name: "myext",
		},
		BaseVersion: "5.60",
		Revision:    "abcdef123456",
	})

	require.NoError(t, err)
	assert.Equal(t, "5.60+patch.abcdef", res.Version)
	assert.Equal(t, "myext-5.60+patch.abcdef.tar.gz", res.Package)
	assert.Equal(t, filepath.Join(ws, "myext-5.60+patch.abcdef.tar.gz"), res.PackagePath)
	assert.FileExists(t, res.PackagePath)

	assert.NoFileExists(t, filepath.Join(projectDir, models.PatchFileName))
	assert.NoDirExists(t, filepath.Join(projectDir, ".github"))

	const stamped = "name = Module\nfixed = true\n;patch = 5.60+patch.abcdef\n"
	content, err := os.ReadFile(filepath.Join(projectDir, "module.info"))
	require.NoError(t, err)
	assert.Equal(t, stamped, string(content))

	entries := archiveEntries(t, res.PackagePath)
	assert.Equal(t, stamped, entries["myext/module.info"])
	assert.NotContains(t, entries, "myext/"+models.PatchFileName)
}

func TestDefaultPipeline_MissingPatchesBranch(t *testing.T) {
	ws := t.TempDir()
	projectDir := setupProjectRepo(t, ws)

	p := DefaultPipeline(&config.Settings{Workspace: ws, Exclude: []string{".github"}})
	_, err := p.Run(context.Background(), pipeline.Request{
		Project:     models.Project{Dir: projectDir, Type: models.ModulePackage, Name: "myext"},
		BaseVersion: "9.99",
		Revision:    "abcdef123456",
	})

	assert.ErrorIs(t, err, domainErrors.ErrPatchBranchNotFound)
	assert.Equal(t, "name = Module\n", func() string {
		data, readErr := os.ReadFile(filepath.Join(projectDir, "module.info"))
		require.NoError(t, readErr)
		return string(data)
	}())
	assert.NoFileExists(t, filepath.Join(ws, "myext-9.99+patch.abcdef.tar.gz"))
}
