package model

import "time"

// ManifestVersion tags the on-disk cache format so a future incompatible
// layout can refuse to load an old manifest rather than misinterpret it.
const ManifestVersion = 1

// RunManifest is the persisted record the cache keeps for one target class:
// its fingerprint, the fingerprint of its test list, the resulting test
// order (including killer memory), and the total warm-up time.
type RunManifest struct {
	Version           int
	TargetFingerprint string
	TestFingerprint   string
	Tests             []TestTiming
	Killers           map[Point]string
	TotalWarmUpTime   time.Duration
}

// ToTestOrder reconstructs a *TestOrder from a loaded manifest.
func (m *RunManifest) ToTestOrder() *TestOrder {
	order := NewTestOrder(m.Tests)
	for p, killer := range m.Killers {
		order.Promote(p, killer)
	}

	return order
}

// FromTestOrder captures a TestOrder's current state into a manifest for
// persistence, alongside the fingerprints that key it.
func FromTestOrder(targetFP, testFP string, order *TestOrder, totalWarmUp time.Duration) RunManifest {
	killers := make(map[Point]string, len(order.killers))
	for p, k := range order.killers {
		killers[p] = k
	}

	return RunManifest{
		Version:           ManifestVersion,
		TargetFingerprint: targetFP,
		TestFingerprint:   testFP,
		Tests:             order.Tests,
		Killers:           killers,
		TotalWarmUpTime:   totalWarmUp,
	}
}
