// Package fileutil holds the file system operations used when moving files
// into the archive.
package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnyExtension is the extension filter which matches every file.
const AnyExtension = "*"

// List returns the full paths of the regular files directly inside dir
// whose extension is ext, sorted lexically. The extension is given without
// the leading dot and is case sensitive. An ext of "*" (or "") matches every
// file. Subdirectories are never descended into or listed.
func List(dir string, ext string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext = strings.TrimPrefix(ext, ".")
	var result []string
	for {
		entries, err := f.Readdir(1000)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Mode().IsRegular() {
				continue
			}
			if !matchExtension(e.Name(), ext) {
				continue
			}
			result = append(result, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(result)
	return result, nil
}

func matchExtension(name, ext string) bool {
	if ext == "" || ext == AnyExtension {
		return true
	}
	return strings.HasSuffix(name, "."+ext)
}
