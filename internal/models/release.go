package models

// PatchFileName is the transient diff written inside the project directory.
const PatchFileName = "patch.diff"

// PatchFile is the generated diff. It lives only between generation and apply.
type PatchFile struct {
	Path string
	Size int64
}

func (p *PatchFile) Empty() bool {
	return p.Size == 0
}

// Package is the archive produced by a pipeline run.
type Package struct {
	FileName string
	Path     string
}

// Result holds the outputs published after a successful run.
type Result struct {
	Version     string `json:"version" yaml:"version"`
	Package     string `json:"package" yaml:"package"`
	PackagePath string `json:"package_path" yaml:"package_path"`
}
