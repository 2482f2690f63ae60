package resolve

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/git"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/version"
	"github.com/urfave/cli/v3"
)

// ResolveCommandFactory builds the command that prints the patch version
// without touching the project.
type ResolveCommandFactory struct {
	headRevision func(dir string) (string, error)
	stdout       io.Writer
}

type Option func(*ResolveCommandFactory)

func WithHeadRevision(f func(dir string) (string, error)) Option {
	return func(r *ResolveCommandFactory) {
		r.headRevision = f
	}
}

func WithOutput(w io.Writer) Option {
	return func(r *ResolveCommandFactory) {
		r.stdout = w
	}
}

func NewResolveCommandFactory(opts ...Option) *ResolveCommandFactory {
	r := &ResolveCommandFactory{
		headRevision: git.HeadRevision,
		stdout:       os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ResolveCommandFactory) CreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Print the patch version for a base version and revision",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-version",
				Usage:   "Base version, e.g. 5.60",
				Sources: cli.EnvVars("INPUT_BASE_VERSION"),
			},
			&cli.StringFlag{
				Name:    "revision",
				Usage:   "Revision (defaults to HEAD of --dir)",
				Sources: cli.EnvVars("GITHUB_SHA"),
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Repository used when no revision is given",
				Value: ".",
			},
		},
		Action: r.action,
	}
}

func (r *ResolveCommandFactory) action(ctx context.Context, cmd *cli.Command) error {
	log := logger.FromContext(ctx)

	base := strings.TrimSpace(cmd.String("base-version"))
	if base == "" {
		return domainErrors.ErrBaseVersionMissing
	}

	revision := strings.TrimSpace(cmd.String("revision"))
	if revision == "" {
		head, err := r.headRevision(cmd.String("dir"))
		if err != nil {
			return domainErrors.ErrRevisionMissing.WithError(err).WithContext("dir", cmd.String("dir"))
		}
		log.Debug("using HEAD revision", "revision", head)
		revision = head
	}

	_, err := fmt.Fprintln(r.stdout, version.ResolvePatch(base, revision))
	return err
}
