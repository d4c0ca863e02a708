package tools

import (
	"io/fs"
	"os"
)

// osDirFS exposes dir as an fs.FS rooted there, for glob matching.
func osDirFS(dir string) fs.FS {
	return os.DirFS(dir)
}
