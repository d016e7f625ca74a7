package convention_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pragmatics/jumble/internal/convention"
)

func TestGuessTestClassNameSimple(t *testing.T) {
	require.Equal(t, "com.example.FooTest", convention.GuessTestClassName("com.example.Foo"))
}

func TestGuessTestClassNameNoPackage(t *testing.T) {
	require.Equal(t, "FooTest", convention.GuessTestClassName("Foo"))
}

func TestGuessTestClassNameStripsInnerClassSuffix(t *testing.T) {
	require.Equal(t, "com.example.FooTest", convention.GuessTestClassName("com.example.Foo$Bar"))
}

func TestGuessTestClassNameAbstractBecomesDummy(t *testing.T) {
	require.Equal(t, "com.example.DummyWidgetTest", convention.GuessTestClassName("com.example.AbstractWidget"))
}
