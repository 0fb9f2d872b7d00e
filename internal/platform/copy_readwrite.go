package platform

import (
	"errors"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyReadWrite copies data using pread/pwrite with a pooled buffer.
//
//nolint:gosec // G115: fd values are small non-negative integers
func copyReadWrite(params CopyFileParams) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var offset int64
	remaining := params.Size

	var totalWritten int64
	srcRawFd := int(params.Src.Fd())
	dstRawFd := int(params.Dst.Fd())

	for remaining > 0 {
		toRead := int(min(remaining, bufferSize))

		n, err := unix.Pread(srcRawFd, buf[:toRead], offset)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
		}
		if n == 0 {
			break
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], offset+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: totalWritten + int64(written), Method: ReadWrite}, err
			}
			written += w
		}

		offset += int64(n)
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, nil
}

// CopyReadWrite is the exported version for use by other packages during testing.
func CopyReadWrite(params CopyFileParams) (CopyResult, error) {
	return copyReadWrite(params)
}

// CopyStream copies src to dst until EOF through a pooled buffer. It serves
// devices, rate-limited transfers and non-OS filesystems.
func CopyStream(dst io.Writer, src io.Reader) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)

	n, err := io.CopyBuffer(dst, src, *bufp)
	return CopyResult{BytesWritten: n, Method: Stream}, err
}

// isFallbackErr returns true if err should trigger a fallback to the next copy strategy.
func isFallbackErr(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EBADF:
		return true
	}
	return false
}
