package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/cache"
	m "github.com/pragmatics/jumble/internal/model"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	manifest := m.RunManifest{
		Version:           m.ManifestVersion,
		TargetFingerprint: "deadbeef",
		TestFingerprint:   "cafef00d",
		Tests: []m.TestTiming{
			{TestClass: "FooTest", TestMethod: "FooTest", Elapsed: 12 * time.Millisecond},
		},
		Killers:         map[m.Point]string{{MethodIndex: 1, Offset: 2, Kind: m.KindStores}: "FooTest"},
		TotalWarmUpTime: 12 * time.Millisecond,
	}

	require.NoError(t, store.Save(manifest))

	loaded, err := store.Load("deadbeef", "cafef00d")
	require.NoError(t, err)
	require.Equal(t, manifest.Tests, loaded.Tests)
	require.Equal(t, manifest.Killers, loaded.Killers)
}

func TestLoadMissingReturnsErrNotFound(t *testing.T) {
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope", "nope")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestLoadStaleTestFingerprintReturnsErrNotFound(t *testing.T) {
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	manifest := m.RunManifest{
		Version:           m.ManifestVersion,
		TargetFingerprint: "abc123",
		TestFingerprint:   "old-tests",
	}
	require.NoError(t, store.Save(manifest))

	_, err = store.Load("abc123", "new-tests")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	b := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	require.Equal(t, cache.Fingerprint(b), cache.Fingerprint(append([]byte{}, b...)))
}

func TestTestFingerprintIgnoresOrder(t *testing.T) {
	a := cache.TestFingerprint([]string{"FooTest", "BarTest"})
	b := cache.TestFingerprint([]string{"BarTest", "FooTest"})
	require.Equal(t, a, b)
}
