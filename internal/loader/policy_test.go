package loader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/loader"
)

func TestResolveMutantClassComesFromMutant(t *testing.T) {
	policy := loader.NewPolicy("com/example/Widget", nil)

	require.Equal(t, loader.OriginMutant, policy.Resolve("com.example.Widget"))
	require.Equal(t, loader.OriginMutant, policy.Resolve("com/example/Widget"))
}

func TestResolveDefaultDeferredPrefixesAlwaysReal(t *testing.T) {
	policy := loader.NewPolicy("org.junit.Assert", nil)

	require.Equal(t, loader.OriginReal, policy.Resolve("org.junit.Assert"))
	require.Equal(t, loader.OriginReal, policy.Resolve("java.lang.String"))
}

func TestResolveExtraDeferredPrefix(t *testing.T) {
	policy := loader.NewPolicy("com.example.Widget", []string{"com.example.infra."})

	require.Equal(t, loader.OriginReal, policy.Resolve("com.example.infra.Clock"))
	require.Equal(t, loader.OriginMutant, policy.Resolve("com.example.Widget"))
}

func TestResolveUnrelatedClassIsReal(t *testing.T) {
	policy := loader.NewPolicy("com.example.Widget", nil)

	require.Equal(t, loader.OriginReal, policy.Resolve("com.example.OtherClass"))
}

func TestClasspathPrependsMutantDir(t *testing.T) {
	policy := loader.NewPolicy("com.example.Widget", nil)

	cp := policy.Classpath("/tmp/mutant-3", []string{"/project/classes", "/project/lib/junit.jar"})

	require.Equal(t, []string{"/tmp/mutant-3", "/project/classes", "/project/lib/junit.jar"}, cp)
}
