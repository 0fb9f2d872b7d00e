// Package platform moves the contents of one open file into another using
// the fastest mechanism the kernel offers.
package platform

import "os"

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
	Stream                   // io.CopyBuffer between arbitrary streams
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case Stream:
		return "stream"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes a whole-file transfer. Dst must be freshly
// created or truncated; both files are left open.
type CopyFileParams struct {
	Src  *os.File
	Dst  *os.File
	Size int64
}
