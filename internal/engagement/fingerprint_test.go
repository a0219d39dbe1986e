package engagement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardSkipsUnchangedInputs(t *testing.T) {
	guard := NewGuard(nil)

	inputs := map[string]FeatureRecord{"1000": attentiveRecord()}

	require.True(t, guard.Changed("session:1", inputs))
	require.False(t, guard.Changed("session:1", inputs))

	// A structurally identical map fingerprints the same.
	clone := map[string]FeatureRecord{"1000": attentiveRecord()}
	require.False(t, guard.Changed("session:1", clone))

	inputs["2000"] = attentiveRecord()
	require.True(t, guard.Changed("session:1", inputs))
}

func TestGuardKeysAreIndependent(t *testing.T) {
	guard := NewGuard(nil)
	inputs := map[string]FeatureRecord{"1000": attentiveRecord()}

	require.True(t, guard.Changed("session:1", inputs))
	require.True(t, guard.Changed("session:2", inputs))
	require.False(t, guard.Changed("session:1", inputs))
}

func TestGuardReset(t *testing.T) {
	guard := NewGuard(nil)
	inputs := map[string]FeatureRecord{"1000": attentiveRecord()}

	require.True(t, guard.Changed("session:1", inputs))
	guard.Reset("session:1")
	require.True(t, guard.Changed("session:1", inputs))
}

func TestGuardInjectableFingerprint(t *testing.T) {
	calls := 0
	guard := NewGuard(func(input any) (string, error) {
		calls++
		return "constant", nil
	})

	require.True(t, guard.Changed("k", 1))
	require.False(t, guard.Changed("k", 2))
	require.Equal(t, 2, calls)
}

func TestGuardFingerprintErrorCountsAsChanged(t *testing.T) {
	guard := NewGuard(func(input any) (string, error) {
		return "", fmt.Errorf("boom")
	})

	require.True(t, guard.Changed("k", 1))
	require.True(t, guard.Changed("k", 1))
}
