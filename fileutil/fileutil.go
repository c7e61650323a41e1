package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ndlib/darkarchive/util"
)

// CopyFile copies the contents and permission bits of src to dst and
// returns the digest of the bytes copied. dst must not already exist; if it
// does the error satisfies errors.Is(err, os.ErrExist) and dst is left
// alone. The data is synced to disk before returning.
func CopyFile(src, dst string, a util.Algorithm) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", errors.Wrap(err, "copy")
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return "", errors.Wrap(err, "copy")
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", errors.Wrap(err, "copy")
	}
	hw := util.NewHashWriter(out)
	_, err = io.Copy(hw, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Wrapf(err, "copy %s to %s", src, dst)
	}
	return hw.Sum(a), os.Chmod(dst, info.Mode().Perm())
}

// IsDir returns true if path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir makes sure the directory dir exists, creating it and any
// missing parents. It returns true if the directory had to be created.
func EnsureDir(dir string) (bool, error) {
	if IsDir(dir) {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, err
	}
	return true, nil
}

// UniqueName returns the path inside dir for a file named by id, keeping the
// extension of original. A file without an extension gets none.
func UniqueName(dir, id, original string) string {
	return filepath.Join(dir, id+filepath.Ext(original))
}
