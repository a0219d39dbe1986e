package engagement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTimeKeyStructured(t *testing.T) {
	first, ok := NormalizeTimeKey("2024-03-01_10-00-00")
	require.True(t, ok)

	second, ok := NormalizeTimeKey("2024-03-01_10-00-01")
	require.True(t, ok)

	require.Equal(t, int64(1000), second-first)
}

func TestNormalizeTimeKeyEpoch(t *testing.T) {
	millis, ok := NormalizeTimeKey("1709287200000")
	require.True(t, ok)
	require.Equal(t, int64(1709287200000), millis)

	// Second-resolution epochs are scaled up to milliseconds.
	seconds, ok := NormalizeTimeKey("1709287200")
	require.True(t, ok)
	require.Equal(t, int64(1709287200000), seconds)
}

func TestNormalizeTimeKeyIdempotent(t *testing.T) {
	keys := []string{"2024-03-01_10-00-00", "1709287200000", " 1709287200 "}
	for _, key := range keys {
		first, ok := NormalizeTimeKey(key)
		require.True(t, ok, key)

		second, ok := NormalizeTimeKey(key)
		require.True(t, ok, key)
		require.Equal(t, first, second, key)
	}
}

func TestNormalizeTimeKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "garbage", "2024-03-01_25-99-99", "not_a-clock", "12:34:56"} {
		_, ok := NormalizeTimeKey(key)
		require.False(t, ok, key)
	}
}
