package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// checkPaths reports whether src and dst are the same path (nothing to do)
// and fails when dst is inside src.
func checkPaths(src, dst string) (same bool, err error) {
	if src == dst {
		return true, nil
	}
	if strings.HasPrefix(withSep(dst), withSep(src)) {
		return false, &Error{
			Kind: KindSelfSubdirectory,
			Op:   "copy",
			Path: dst,
			Err:  ErrSelfSubdirectory,
		}
	}
	return false, nil
}

func withSep(p string) string {
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return p
	}
	return p + string(os.PathSeparator)
}

// absPath resolves p against the working directory and cleans it.
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
