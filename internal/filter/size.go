package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// sizeUnits maps a unit letter to its power-of-1024 multiplier.
var sizeUnits = map[byte]int64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a size such as 512, 100K, 1.5G or 10MiB into bytes.
// Units are powers of 1024 and case-insensitive; a trailing B or iB is
// optional. It backs --min-size, --max-size and --bwlimit.
func ParseSize(s string) (int64, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("empty size string")
	}

	num := strings.ToUpper(in)
	num = strings.TrimSuffix(num, "IB")
	if len(num) == len(strings.ToUpper(in)) {
		num = strings.TrimSuffix(num, "B")
	}

	multiplier := int64(1)
	if n := len(num); n > 0 {
		if m, ok := sizeUnits[num[n-1]]; ok {
			multiplier = m
			num = num[:n-1]
		}
	}
	if num == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return n * multiplier, nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}
