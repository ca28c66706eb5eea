// Package files locates uploaded file content on disk by host-assigned id.
package files

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Resolver maps a file id to its on-disk path. A false return means the
// content is not present locally; the caller skips the file rather than
// failing the request.
type Resolver interface {
	Resolve(id string) (string, bool)
}

// DirResolver finds uploads under a single root directory. The host stores
// uploads as <dir>/<id>_<original name>; a recursive walk covers layouts
// that nest them one level deeper.
type DirResolver struct {
	dir string
}

func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{dir: dir}
}

func (r *DirResolver) Resolve(id string) (string, bool) {
	if strings.TrimSpace(id) == "" || r.dir == "" {
		return "", false
	}

	matches, err := filepath.Glob(filepath.Join(r.dir, id+"*"))
	if err == nil && len(matches) > 0 {
		return matches[0], true
	}

	var found string
	walkErr := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are not fatal
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), id) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil || found == "" {
		return "", false
	}
	return found, true
}
