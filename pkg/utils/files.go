package utils

import (
	"path/filepath"
	"strings"
)

// GetPathInfo resolves relPath to an absolute, cleaned path and returns it
// together with its directory.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	return fullPath, filepath.Dir(fullPath), nil
}

// ReplaceExt swaps the extension of path for ext, or appends ext when path
// has none. A leading dot alone does not count as an extension.
func ReplaceExt(path, ext string) string {
	old := filepath.Ext(path)
	base := filepath.Base(path)
	if old == "" || old == base {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}
