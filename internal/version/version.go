package version

import "strings"

// Version is the current release of patch-release.
const Version = "1.0.0"

// FullVersion returns the version with the v prefix.
func FullVersion() string {
	return "v" + Version
}

const (
	patchSeparator = "+patch."
	shortRevision  = 6
)

// ResolvePatch derives the patch version from a base version and the commit
// the patch was generated from, e.g. "5.60" and "abcdef1234" give
// "5.60+patch.abcdef". Revisions shorter than six characters are used whole.
func ResolvePatch(baseVersion, revision string) string {
	return baseVersion + patchSeparator + ShortRevision(revision)
}

// ShortRevision truncates a commit identifier to six characters.
func ShortRevision(revision string) string {
	revision = strings.TrimSpace(revision)
	if len(revision) > shortRevision {
		return revision[:shortRevision]
	}
	return revision
}
