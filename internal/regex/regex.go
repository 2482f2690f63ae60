package regex

import "regexp"

var (
	// Remote URL patterns: host, owner, then the rest of the path
	SSHRepo   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?/?$`)
	HTTPSRepo = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`)
)
