//go:build !linux

package platform

// CopyFile uses pread/pwrite on platforms without an in-kernel copy.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	return copyReadWrite(params)
}
