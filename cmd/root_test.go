package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/pragmatics/jumble/internal/model"
)

func TestEnabledKindsReflectsFlagVars(t *testing.T) {
	returnValsFlag = true
	inlineConstsFlag = false
	incrementsFlag = true
	cpoolFlag = false
	switchFlag = true
	storesFlag = false

	kinds := enabledKinds()
	require.True(t, kinds[m.KindReturnValues])
	require.False(t, kinds[m.KindInlineConstants])
	require.True(t, kinds[m.KindIncrements])
	require.False(t, kinds[m.KindConstantPool])
	require.True(t, kinds[m.KindSwitch])
	require.False(t, kinds[m.KindStores])
}

func TestToSetBuildsMembershipMap(t *testing.T) {
	set := toSet([]string{"main", "integrity"})
	require.True(t, set["main"])
	require.True(t, set["integrity"])
	require.False(t, set["other"])
}

func TestParseSlogLevelFallsBackOnGarbage(t *testing.T) {
	require.Equal(t, -4, int(parseSlogLevel("debug", 0)))
	require.Equal(t, 0, int(parseSlogLevel("", 0)))
	require.Equal(t, 4, int(parseSlogLevel("not-a-level", 4)))
}

func TestRootCommandAcceptsVariadicTestClasses(t *testing.T) {
	cmd := baseRootCmd()
	require.NoError(t, cmd.Args(cmd, []string{"com.example.Widget"}))
	require.NoError(t, cmd.Args(cmd, []string{"com.example.Widget", "com.example.WidgetTest", "com.example.ExtraTest"}))
	require.Error(t, cmd.Args(cmd, []string{}))
}
