package config

import (
	"os"
	"path/filepath"
	"strings"

	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/git"
	"github.com/thomas-vilte/patchrelease/internal/models"
)

// Settings are validated inputs ready for a pipeline run.
type Settings struct {
	Workspace   string
	Project     models.Project
	BaseVersion string
	Revision    string
	Exclude     []string
	OutputFile  string
}

// resolver holds the repository lookups used for fallbacks.
type resolver struct {
	headRevision   func(dir string) (string, error)
	repositoryName func(dir string) (string, error)
}

type ResolveOption func(*resolver)

func WithHeadRevision(f func(dir string) (string, error)) ResolveOption {
	return func(r *resolver) {
		r.headRevision = f
	}
}

func WithRepositoryName(f func(dir string) (string, error)) ResolveOption {
	return func(r *resolver) {
		r.repositoryName = f
	}
}

// Resolve validates inputs. Every ConfigurationError is raised here, before
// anything in the project directory is modified.
func Resolve(in Inputs, opts ...ResolveOption) (*Settings, error) {
	r := &resolver{
		headRevision:   git.HeadRevision,
		repositoryName: git.RepositoryName,
	}
	for _, opt := range opts {
		opt(r)
	}

	workspace, err := resolveWorkspace(in.Workspace)
	if err != nil {
		return nil, err
	}

	projectDir, err := resolveProjectDir(workspace, in.ProjectDir)
	if err != nil {
		return nil, err
	}

	projectType, err := models.ParseProjectType(in.ProjectType)
	if err != nil {
		return nil, err
	}

	baseVersion := strings.TrimSpace(in.BaseVersion)
	if baseVersion == "" {
		return nil, domainErrors.ErrBaseVersionMissing
	}

	revision := strings.TrimSpace(in.Revision)
	if revision == "" {
		revision, err = r.headRevision(projectDir)
		if err != nil {
			return nil, domainErrors.ErrRevisionMissing.WithError(err)
		}
	}

	exclude := in.Exclude
	if len(exclude) == 0 {
		exclude = git.DefaultExcludes
	}

	return &Settings{
		Workspace: workspace,
		Project: models.Project{
			Dir:  projectDir,
			Type: projectType,
			Name: r.projectName(in, projectDir),
		},
		BaseVersion: baseVersion,
		Revision:    revision,
		Exclude:     exclude,
		OutputFile:  strings.TrimSpace(in.OutputFile),
	}, nil
}

func resolveWorkspace(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", domainErrors.ErrWorkspaceMissing
	}

	workspace, err := filepath.Abs(value)
	if err != nil {
		return "", domainErrors.ErrWorkspaceNotFound.WithError(err).WithContext("workspace", value)
	}

	info, err := os.Stat(workspace)
	if err != nil || !info.IsDir() {
		return "", domainErrors.ErrWorkspaceNotFound.WithError(err).WithContext("workspace", workspace)
	}
	return workspace, nil
}

func resolveProjectDir(workspace, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", domainErrors.ErrProjectDirMissing
	}

	projectDir := filepath.Join(workspace, value)
	info, err := os.Stat(projectDir)
	if err != nil || !info.IsDir() {
		return "", domainErrors.ErrProjectDirNotFound.WithError(err).WithContext("project_dir", projectDir)
	}
	return projectDir, nil
}

// projectName falls back from the explicit input to the repository slug,
// then the origin remote, then the directory name.
func (r *resolver) projectName(in Inputs, projectDir string) string {
	if name := strings.TrimSpace(in.ProjectName); name != "" {
		return name
	}
	if name := git.NameFromSlug(in.Repository); name != "" {
		return name
	}
	if name, err := r.repositoryName(projectDir); err == nil && name != "" {
		return name
	}
	return filepath.Base(projectDir)
}
