package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint hashes a class's bytes, for RunManifest keying.
func Fingerprint(classBytes []byte) string {
	sum := sha256.Sum256(classBytes)
	return hex.EncodeToString(sum[:])
}

// TestFingerprint hashes the (order-independent) set of test class names a
// run exercises, so a manifest is invalidated the moment the effective
// test list changes shape, even if the class under test did not.
func TestFingerprint(testClasses []string) string {
	sorted := make([]string, len(testClasses))
	copy(sorted, testClasses)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))

	return hex.EncodeToString(sum[:])
}
