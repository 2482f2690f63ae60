package config

import (
	"errors"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
)

// Inputs are the raw invocation parameters, before validation. They come
// from an optional TOML file, overridden by flags and environment.
type Inputs struct {
	Workspace   string   `toml:"workspace"`
	ProjectDir  string   `toml:"project_dir"`
	ProjectType string   `toml:"project_type"`
	ProjectName string   `toml:"project_name"`
	BaseVersion string   `toml:"base_version"`
	Revision    string   `toml:"revision"`
	Repository  string   `toml:"repository"`
	Exclude     []string `toml:"exclude"`
	OutputFile  string   `toml:"output_file"`
}

// LoadFile reads inputs from a TOML file. Unknown keys are rejected so a
// typo does not silently fall back to a default.
func LoadFile(path string) (*Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.ErrConfigFile.WithError(err).WithContext("path", path)
	}

	var inputs Inputs
	meta, err := toml.Decode(string(data), &inputs)
	if err != nil {
		return nil, domainErrors.ErrConfigFile.WithError(err).WithContext("path", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, domainErrors.ErrConfigFile.
			WithError(errors.New("unknown keys: " + strings.Join(keys, ", "))).
			WithContext("path", path)
	}

	return &inputs, nil
}

// Merge returns base with every non-empty field of override applied on top.
func Merge(base, override Inputs) Inputs {
	pick := func(b, o string) string {
		if strings.TrimSpace(o) != "" {
			return o
		}
		return b
	}

	merged := Inputs{
		Workspace:   pick(base.Workspace, override.Workspace),
		ProjectDir:  pick(base.ProjectDir, override.ProjectDir),
		ProjectType: pick(base.ProjectType, override.ProjectType),
		ProjectName: pick(base.ProjectName, override.ProjectName),
		BaseVersion: pick(base.BaseVersion, override.BaseVersion),
		Revision:    pick(base.Revision, override.Revision),
		Repository:  pick(base.Repository, override.Repository),
		OutputFile:  pick(base.OutputFile, override.OutputFile),
		Exclude:     base.Exclude,
	}
	if len(override.Exclude) > 0 {
		merged.Exclude = override.Exclude
	}
	return merged
}
