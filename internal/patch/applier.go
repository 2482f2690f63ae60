package patch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/fsys"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"github.com/thomas-vilte/patchrelease/internal/runner"
)

// Applier applies a generated patch file with the patch tool and always
// removes the file afterwards, whether the apply succeeded or not.
type Applier struct {
	runner     runner.Runner
	filesystem fsys.Factory
}

type ApplierOption func(*Applier)

func WithApplierFilesystem(f fsys.Factory) ApplierOption {
	return func(a *Applier) {
		a.filesystem = f
	}
}

func NewApplier(r runner.Runner, opts ...ApplierOption) *Applier {
	a := &Applier{
		runner:     r,
		filesystem: fsys.OS,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply runs `patch -p1` in projectDir. An empty patch file is not handed to
// the tool, which rejects empty input.
func (a *Applier) Apply(ctx context.Context, projectDir string, patchFile *models.PatchFile) (err error) {
	log := logger.FromContext(ctx)
	name := filepath.Base(patchFile.Path)

	defer func() {
		rmErr := a.filesystem(projectDir).Remove(name)
		if rmErr == nil || errors.Is(rmErr, os.ErrNotExist) {
			return
		}
		if err != nil {
			log.Warn("could not remove patch file after failed apply",
				"file", patchFile.Path,
				"error", rmErr)
			return
		}
		err = domainErrors.ErrPatchCleanup.WithError(rmErr).WithContext("file", patchFile.Path)
	}()

	if patchFile.Empty() {
		log.Info("patch file is empty, nothing to apply",
			"file", patchFile.Path)
		return nil
	}

	res, runErr := a.runner.Run(ctx, runner.Command{
		Name: "patch",
		Args: []string{"-p1", "--forward", "--batch", "-i", name},
		Dir:  projectDir,
	})
	if runErr != nil {
		appErr := domainErrors.ErrPatchApply.WithError(runErr).
			WithContext("file", patchFile.Path)
		if res != nil {
			appErr = appErr.WithContext("stderr", strings.TrimSpace(res.Stderr)).
				WithContext("output", strings.TrimSpace(res.Stdout))
		}
		log.Error("patch failed to apply",
			"file", patchFile.Path,
			"error", runErr)
		return appErr
	}

	log.Info("patch applied",
		"file", patchFile.Path)

	return nil
}
