// Package fsys hands out billy filesystems rooted at a project directory.
package fsys

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// Factory returns a filesystem rooted at root.
type Factory func(root string) billy.Filesystem

// OS roots an OS-backed filesystem at root.
func OS(root string) billy.Filesystem {
	return osfs.New(root)
}

// Fixed always returns fs regardless of root. Useful with memfs in tests.
func Fixed(fs billy.Filesystem) Factory {
	return func(string) billy.Filesystem {
		return fs
	}
}

// Memory returns a Factory over a single fresh in-memory filesystem.
func Memory() (Factory, billy.Filesystem) {
	fs := memfs.New()
	return Fixed(fs), fs
}
