package fsys

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TruncateMillis drops sub-millisecond precision from t. Timestamps are
// applied at millisecond resolution so that copies compare equal on every
// filesystem that keeps at least that much.
func TruncateMillis(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

// TruncateSeconds drops sub-second precision from t, for comparisons on
// filesystems without millisecond timestamps (HFS, ext2/3, FAT).
func TruncateSeconds(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// sampleTime is 862ms past a whole second.
var sampleTime = time.UnixMilli(1435410243862)

// HasMillisResolution writes a scratch file in dir, stamps it with a time that
// has a millisecond component and reports whether the component survived.
func HasMillisResolution(fsys FS, dir string) (bool, error) {
	scratch := filepath.Join(dir, fmt.Sprintf(".millis-check-%s", uuid.New().String()[:8]))

	w, err := fsys.Create(scratch, 0o600)
	if err != nil {
		return false, fmt.Errorf("create scratch: %w", err)
	}
	defer fsys.Remove(scratch) //nolint:errcheck // best-effort cleanup

	if _, err := w.Write([]byte("treecp/utimes")); err != nil {
		w.Close()
		return false, fmt.Errorf("write scratch: %w", err)
	}
	if err := w.Close(); err != nil {
		return false, fmt.Errorf("close scratch: %w", err)
	}

	if err := fsys.Chtimes(scratch, sampleTime, sampleTime); err != nil {
		return false, fmt.Errorf("stamp scratch: %w", err)
	}

	info, err := fsys.Stat(scratch)
	if err != nil {
		return false, fmt.Errorf("stat scratch: %w", err)
	}
	return info.ModTime().After(TruncateSeconds(sampleTime)), nil
}
