// Package stamp writes the patch version into project metadata. Each
// project type has exactly one Stamper.
package stamp

import (
	"github.com/go-git/go-billy/v5"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/models"
)

// Stamper records patchVersion inside the project rooted at fs.
type Stamper interface {
	Stamp(fs billy.Filesystem, patchVersion string) error
}

var stampers = map[models.ProjectType]Stamper{
	models.CorePackage:      CoreStamper{},
	models.ModulePackage:    ModuleStamper{},
	models.ExtensionPackage: ExtensionStamper{},
}

// For returns the stamper for projectType.
func For(projectType models.ProjectType) (Stamper, error) {
	s, ok := stampers[projectType]
	if !ok {
		return nil, domainErrors.ErrUnrecognizedProjectType.
			WithContext("project_type", string(projectType))
	}
	return s, nil
}
