// Package fsattr copies file metadata (timestamps, permission bits,
// extended attributes) between paths. These are path-level helpers used
// alongside the file handle primitives when replacing a file should preserve
// the original's attributes.
package fsattr

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/xattr"
	"gopkg.in/djherbis/times.v1"
)

// CopyTimes copies the access and modification times of src to dst.
func CopyTimes(src, dst string) error {
	ts, err := times.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if err := os.Chtimes(dst, ts.AccessTime(), ts.ModTime()); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", dst, err)
	}

	return nil
}

// CopyXattrs copies all extended attributes of src to dst. Filesystems
// without xattr support are treated as having none.
func CopyXattrs(src, dst string) error {
	names, err := xattr.List(src)
	if err != nil {
		if unsupported(err) {
			return nil
		}
		return fmt.Errorf("failed to list xattrs of %s: %w", src, err)
	}

	for _, name := range names {
		value, err := xattr.Get(src, name)
		if err != nil {
			return fmt.Errorf("failed to get xattr %s of %s: %w", name, src, err)
		}
		if err := xattr.Set(dst, name, value); err != nil {
			return fmt.Errorf("failed to set xattr %s on %s: %w", name, dst, err)
		}
	}

	return nil
}

// CopyAttributes copies permission bits, timestamps and extended attributes
// of src to dst.
func CopyAttributes(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}
	if err := CopyXattrs(src, dst); err != nil {
		return err
	}
	return CopyTimes(src, dst)
}

func unsupported(err error) bool {
	return errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP)
}
