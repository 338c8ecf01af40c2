package utils

import (
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"prog.mc", "prog.s"},
		{"dir/prog.mc", "dir/prog.s"},
		{"prog", "prog.s"},
		{"archive.tar.mc", "archive.tar.s"},
		{".hidden", ".hidden.s"},
		{"dir.v2/prog", "dir.v2/prog.s"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			be.Equal(t, ReplaceExt(tc.path, ".s"), tc.want)
		})
	}
}

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo("a/../b/prog.mc")
	be.Err(t, err, nil)
	be.True(t, filepath.IsAbs(full))
	be.Equal(t, filepath.Base(full), "prog.mc")
	be.Equal(t, filepath.Base(dir), "b")
	be.Equal(t, filepath.Dir(full), dir)
}
