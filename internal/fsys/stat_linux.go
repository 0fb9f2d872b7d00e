//go:build linux

package fsys

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func atimeFromStat(stat *syscall.Stat_t) time.Time {
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}

func devFromStat(stat *syscall.Stat_t) uint64 {
	return stat.Dev
}

// setTimes sets atime and mtime on path, following symbolic links.
func setTimes(path string, accTime, modTime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(accTime.UnixNano()),
		unix.NsecToTimespec(modTime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0); err != nil {
		return fmt.Errorf("utimensat %s: %w", path, err)
	}
	return nil
}
