// Package workspace resolves project-relative files on a billy filesystem.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Workspace is a project directory.
type Workspace struct {
	fs billy.Filesystem
}

// Open returns the workspace rooted at dir on the host filesystem.
func Open(dir string) *Workspace {
	return New(osfs.New(dir))
}

func New(fs billy.Filesystem) *Workspace {
	return &Workspace{fs: fs}
}

func (w *Workspace) FS() billy.Filesystem { return w.fs }

// Path returns the host path of name.
func (w *Workspace) Path(name string) string {
	return w.fs.Join(w.fs.Root(), name)
}

func (w *Workspace) Open(name string) (billy.File, error) {
	return w.fs.Open(name)
}

func (w *Workspace) Exists(name string) (bool, error) {
	_, err := w.fs.Stat(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// WriteAtomic recreates name with whatever fn writes. Content goes to a temp
// file in the same directory which is renamed over name only if fn and the
// close succeed; otherwise name is left untouched.
func (w *Workspace) WriteAtomic(name string, fn func(io.Writer) error) error {
	dir := path.Dir(name)
	if dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp, err := w.fs.TempFile(dir, ".tagsync-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := fn(tmp); err != nil {
		_ = tmp.Close()
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}
	if err := w.fs.Rename(tmpName, name); err != nil {
		_ = w.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
