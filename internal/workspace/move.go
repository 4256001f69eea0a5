// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const backupSuffix = ".swaggertosdk-previous"

// move renames src to dst, copying across devices when a rename is not
// possible. Parent directories of dst are created.
func move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

// copyPath copies the file or directory src to dst, creating the parents
// of dst.
func copyPath(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return copyTree(src, dst)
}

// replaceDir puts src in place of dst. The previous dst is set aside until
// src is in place and is put back when that fails.
func replaceDir(dst, src string) error {
	backup := dst + backupSuffix
	if err := os.RemoveAll(backup); err != nil {
		return err
	}
	hadPrevious := true
	if err := os.Rename(dst, backup); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		hadPrevious = false
	}

	if err := move(src, dst); err != nil {
		if !hadPrevious {
			return err
		}
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			return errors.Join(err, rmErr)
		}
		if restoreErr := os.Rename(backup, dst); restoreErr != nil {
			return errors.Join(err, fmt.Errorf("restore %s: %w", dst, restoreErr))
		}
		return err
	}

	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			slog.Warn("failed to remove previous output", "path", backup, "error", err)
		}
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(p, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
