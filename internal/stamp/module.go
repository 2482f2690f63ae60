package stamp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
)

const moduleDescriptorExt = ".info"

// ModuleStamper appends `;patch = <version>` to every .info file directly
// inside the project root. Subdirectories are not searched and finding no
// descriptor is not an error. A symlinked descriptor is written through.
type ModuleStamper struct{}

func (ModuleStamper) Stamp(fs billy.Filesystem, patchVersion string) error {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return domainErrors.ErrStampListDir.WithError(err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, moduleDescriptorExt) {
			continue
		}

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			if info, err = fs.Stat(name); err != nil {
				return domainErrors.ErrStamp.WithError(err).WithContext("file", name)
			}
		}
		if !info.Mode().IsRegular() {
			continue
		}

		if err := appendPatchLine(fs, name, info.Size(), patchVersion); err != nil {
			return domainErrors.ErrStamp.WithError(err).WithContext("file", name)
		}
	}
	return nil
}

func appendPatchLine(fs billy.Filesystem, name string, size int64, patchVersion string) error {
	line := fmt.Sprintf(";patch = %s\n", patchVersion)

	if size > 0 {
		last, err := lastByte(fs, name, size)
		if err != nil {
			return err
		}
		if last != '\n' {
			line = "\n" + line
		}
	}

	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func lastByte(fs billy.Filesystem, name string, size int64) (byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil && err != io.EOF {
		return 0, err
	}
	return buf[0], nil
}
