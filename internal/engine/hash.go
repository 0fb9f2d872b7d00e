package engine

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/bamsammich/treecp/internal/fsys"
)

// HashAlgo names the checksum used to verify copied files.
type HashAlgo string

const (
	BLAKE3 HashAlgo = "blake3"
	XXHash HashAlgo = "xxhash"
)

// ParseHashAlgo validates a hash name. An empty name selects BLAKE3.
func ParseHashAlgo(s string) (HashAlgo, error) {
	switch HashAlgo(strings.ToLower(s)) {
	case "", BLAKE3:
		return BLAKE3, nil
	case XXHash:
		return XXHash, nil
	default:
		return "", fmt.Errorf("unknown hash %q (want blake3 or xxhash)", s)
	}
}

func (a HashAlgo) new() hash.Hash {
	if a == XXHash {
		return xxhash.New()
	}
	return blake3.New()
}

// HashFile computes the digest of the file at path, returning it hex-encoded.
func HashFile(fs fsys.FS, path string, algo HashAlgo) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := algo.new()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
