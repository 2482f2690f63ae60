package git

import (
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/regex"
)

func open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, domainErrors.ErrOpenRepository.WithError(err).WithContext("dir", dir)
	}
	return repo, nil
}

// HeadRevision returns the commit hash HEAD points to in the repository
// containing dir.
func HeadRevision(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", domainErrors.ErrOpenRepository.WithError(fmt.Errorf("resolving HEAD: %w", err)).
			WithContext("dir", dir)
	}
	return head.Hash().String(), nil
}

// RepositoryName returns the repository name taken from the origin remote URL.
func RepositoryName(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		return "", domainErrors.ErrExtractRepoInfo.WithError(err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", domainErrors.ErrExtractRepoInfo.WithContext("remote", remoteName)
	}

	_, name, err := parseRepoURL(urls[0])
	return name, err
}

// parseRepoURL extracts owner and repository name from ssh or https remotes.
func parseRepoURL(url string) (string, string, error) {
	url = strings.TrimSpace(url)

	var matches []string
	if regex.SSHRepo.MatchString(url) {
		matches = regex.SSHRepo.FindStringSubmatch(url)
	} else if regex.HTTPSRepo.MatchString(url) {
		matches = regex.HTTPSRepo.FindStringSubmatch(url)
	}

	if len(matches) >= 4 {
		name := strings.TrimSuffix(matches[3], ".git")
		// nested groups (gitlab) keep only the last segment
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return matches[2], name, nil
	}

	return "", "", fmt.Errorf("%w [%s]", domainErrors.ErrExtractRepoInfo, url)
}

// NameFromSlug returns the repository part of an "owner/repo" slug, the
// format of GITHUB_REPOSITORY.
func NameFromSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		return slug[i+1:]
	}
	return slug
}
