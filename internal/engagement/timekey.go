package engagement

import (
	"strconv"
	"strings"
	"time"
)

// epochMillisFloor is the smallest value interpreted as milliseconds.
// Raw epoch keys below it are second-resolution and get scaled up.
const epochMillisFloor = int64(1e12)

const structuredKeyLayout = "2006-01-02 15:04:05"

// NormalizeTimeKey converts a raw observation key into epoch milliseconds.
// Keys come in two shapes: a structured "YYYY-MM-DD_HH-MM-SS" string, or a
// stringified epoch value. The second return value is false when the key
// cannot be parsed; callers are expected to filter such records out.
func NormalizeTimeKey(key string) (int64, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, false
	}

	if strings.Contains(key, "_") {
		return normalizeStructuredKey(key)
	}

	if value, err := strconv.ParseInt(key, 10, 64); err == nil {
		return scaleEpoch(value), true
	}

	if value, err := strconv.ParseFloat(key, 64); err == nil {
		return scaleEpoch(int64(value)), true
	}

	return 0, false
}

func normalizeStructuredKey(key string) (int64, bool) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return 0, false
	}

	clock := strings.ReplaceAll(parts[1], "-", ":")
	stamp, err := time.ParseInLocation(structuredKeyLayout, parts[0]+" "+clock, time.Local)
	if err != nil {
		return 0, false
	}

	return stamp.UnixMilli(), true
}

func scaleEpoch(value int64) int64 {
	if value >= 0 && value < epochMillisFloor {
		return value * 1000
	}
	return value
}
