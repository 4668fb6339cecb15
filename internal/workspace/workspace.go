// Package workspace manages the isolated copy of a program directory that a
// patch is applied into. A workspace is exclusively owned by one evaluation
// from Create until Remove; concurrent evaluations get distinct directories.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Create allocates a uniquely named directory under the system temp dir and
// copies the full contents of sourceDir into it, preserving relative
// structure, file modes and symlinks. On any copy failure the partial
// workspace is removed before the error is returned.
func Create(sourceDir string) (string, error) {
	name := filepath.Base(sourceDir)
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("%s_patched_%s", name, uuid.NewString()))

	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory: %w", err)
	}

	if err := copyTree(sourceDir, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to copy %s into workspace: %w", sourceDir, err)
	}

	return dir, nil
}

// Remove deletes the workspace directory and everything under it.
func Remove(dir string) error {
	return os.RemoveAll(dir)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.Mkdir(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
