package order

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNumber builds a human-readable order number:
// "ORD-" + base36(unix millis) + "-" + 4 random base36 chars, uppercased.
//
// The scheme is collision-prone in theory but practically unique; the store
// enforces no uniqueness constraint on it and it is display-only. The
// order's storage key is a separate uuid.
func GenerateNumber(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)

	var suffix [4]byte
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}

	return strings.ToUpper("ORD-" + ts + "-" + string(suffix[:]))
}
