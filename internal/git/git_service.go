package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/runner"
)

const (
	remoteName          = "origin"
	patchesBranchSuffix = "-patches"
)

// DefaultExcludes are CI-internal paths never carried over into a patch.
var DefaultExcludes = []string{".github"}

// PatchesBranch returns the branch holding the patch set for a base version.
func PatchesBranch(baseVersion string) string {
	return baseVersion + patchesBranchSuffix
}

// GitService runs the git CLI through a runner.
type GitService struct {
	runner   runner.Runner
	excludes []string
}

type Option func(*GitService)

// WithExcludes replaces the paths left out of generated diffs.
func WithExcludes(paths ...string) Option {
	return func(s *GitService) {
		s.excludes = paths
	}
}

func NewGitService(r runner.Runner, opts ...Option) *GitService {
	s := &GitService{
		runner:   r,
		excludes: DefaultExcludes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteBranchExists checks refs/remotes/origin/<branch> in the repository at dir.
func (s *GitService) RemoteBranchExists(ctx context.Context, dir, branch string) (bool, error) {
	res, err := s.runner.Run(ctx, runner.Command{
		Name: "git",
		Args: []string{"rev-parse", "--verify", "--quiet", "refs/remotes/" + remoteName + "/" + branch},
		Dir:  dir,
	})
	if err == nil {
		return true, nil
	}

	// --quiet exits 1 with no output when the ref is missing
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && res != nil && res.ExitCode == 1 {
		return false, nil
	}

	return false, domainErrors.ErrDiffGeneration.WithError(err).
		WithContext("branch", remoteName+"/"+branch).
		WithContext("stderr", stderrOf(res))
}

// DiffAgainstPatches returns the unified diff between HEAD and
// origin/<baseVersion>-patches, leaving out the excluded paths.
func (s *GitService) DiffAgainstPatches(ctx context.Context, dir, baseVersion string) (string, error) {
	branch := PatchesBranch(baseVersion)
	log := logger.FromContext(ctx)

	exists, err := s.RemoteBranchExists(ctx, dir, branch)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domainErrors.ErrPatchBranchNotFound.
			WithContext("branch", remoteName+"/"+branch)
	}

	res, err := s.runner.Run(ctx, runner.Command{
		Name: "git",
		Args: s.diffArgs(branch),
		Dir:  dir,
	})
	if err != nil {
		log.Error("git diff failed",
			"error", err,
			"branch", branch)
		return "", domainErrors.ErrDiffGeneration.WithError(err).
			WithContext("branch", remoteName+"/"+branch).
			WithContext("stderr", stderrOf(res))
	}

	log.Debug("diff generated",
		"branch", branch,
		"size", len(res.Stdout))

	return res.Stdout, nil
}

func (s *GitService) diffArgs(branch string) []string {
	args := []string{"--no-pager", "diff", "-p", ".." + remoteName + "/" + branch}
	if len(s.excludes) == 0 {
		return args
	}

	args = append(args, "--")
	for _, path := range s.excludes {
		args = append(args, ":!"+path)
	}
	return args
}

func stderrOf(res *runner.Result) string {
	if res == nil {
		return ""
	}
	return strings.TrimSpace(res.Stderr)
}
