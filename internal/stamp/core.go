package stamp

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
)

const (
	VersionFile    = "xml/version.xml"
	versionNoClose = "</version_no>"
)

// CoreStamper embeds the patch version as a comment before every closing
// version_no tag in xml/version.xml. Plain text substitution, the XML is
// never parsed.
type CoreStamper struct{}

func (CoreStamper) Stamp(fs billy.Filesystem, patchVersion string) error {
	info, err := fs.Stat(VersionFile)
	if err != nil {
		return domainErrors.ErrStamp.WithError(err).WithContext("file", VersionFile)
	}

	content, err := util.ReadFile(fs, VersionFile)
	if err != nil {
		return domainErrors.ErrStamp.WithError(err).WithContext("file", VersionFile)
	}

	replacement := fmt.Sprintf("<!-- %s -->%s", patchVersion, versionNoClose)
	stamped := strings.ReplaceAll(string(content), versionNoClose, replacement)

	if err := util.WriteFile(fs, VersionFile, []byte(stamped), info.Mode().Perm()); err != nil {
		return domainErrors.ErrStamp.WithError(err).WithContext("file", VersionFile)
	}
	return nil
}
