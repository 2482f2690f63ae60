package models

import (
	"strings"

	"github.com/thomas-vilte/patchrelease/internal/errors"
)

// ProjectType selects how the patch version is stamped into a project.
type ProjectType string

const (
	CorePackage      ProjectType = "core-package"
	ModulePackage    ProjectType = "module-package"
	ExtensionPackage ProjectType = "extension-package"
)

// ProjectTypes lists every supported project type.
func ProjectTypes() []ProjectType {
	return []ProjectType{CorePackage, ModulePackage, ExtensionPackage}
}

func (t ProjectType) Valid() bool {
	switch t {
	case CorePackage, ModulePackage, ExtensionPackage:
		return true
	}
	return false
}

func (t ProjectType) String() string {
	return string(t)
}

// ParseProjectType maps an input value to a ProjectType.
func ParseProjectType(value string) (ProjectType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.ErrProjectTypeMissing
	}

	t := ProjectType(value)
	if !t.Valid() {
		return "", errors.ErrUnrecognizedProjectType.WithContext("project_type", value)
	}
	return t, nil
}

// Project is the checked-out project the pipeline patches in place.
type Project struct {
	Dir  string
	Type ProjectType
	Name string
}
