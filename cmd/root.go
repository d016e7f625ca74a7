// Package cmd provides the jumble CLI: a single command that mutation-
// tests one class against a list of test classes, matching the original
// Jumble's invocation shape (`jumble [flags] <class-name> [test-class...]`).
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pragmatics/jumble/internal/engine"
	"github.com/pragmatics/jumble/internal/jumbleerr"
	"github.com/pragmatics/jumble/internal/listener"
	m "github.com/pragmatics/jumble/internal/model"
)

var (
	verboseFlag         bool
	excludePatterns     []string
	returnValsFlag      bool
	inlineConstsFlag    bool
	incrementsFlag      bool
	cpoolFlag           bool
	switchFlag          bool
	storesFlag          bool
	emacsFlag           bool
	printerFlag         string
	firstMutationFlag   int
	classpathFlag       []string
	noOrderFlag         bool
	noSaveCacheFlag     bool
	noLoadCacheFlag     bool
	noUseCacheFlag      bool
	deferClassFlag      []string
	maxExternalFlag     int
	jvmArgFlag          []string
	definePropFlag      []string
	noGuessTestNameFlag bool
)

const rootLongDescription = `jumble runs class-level mutation testing against a compiled JVM class:
it mutates one bytecode-level decision point at a time, reruns the
corresponding test class against the mutant, and reports how many
mutants the test suite kills.`

var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jumble [flags] <class-name> [test-class...]",
		Short: "Class-level mutation testing for JVM bytecode",
		Long:  rootLongDescription,
		Args: func(c *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(c, args); err != nil {
				return &jumbleerr.UsageError{Msg: err.Error()}
			}
			return nil
		},
		RunE: runJumble,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &jumbleerr.UsageError{Msg: err.Error()}
	})

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&verboseFlag, verboseFlagName, false, "print one progress line per mutation as it runs (with the default text printer) and log at debug level")
	cmd.Flags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude method names from mutation (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.Flags().BoolVar(&returnValsFlag, returnValsFlagName, viper.GetBool(returnValsConfigKey), "enable the return-values mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(returnValsFlagName), returnValsConfigKey)
	cmd.Flags().BoolVar(&inlineConstsFlag, inlineConstsFlagName, viper.GetBool(inlineConstsConfigKey), "enable the inline-constants mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(inlineConstsFlagName), inlineConstsConfigKey)
	cmd.Flags().BoolVar(&incrementsFlag, incrementsFlagName, viper.GetBool(incrementsConfigKey), "enable the increments mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(incrementsFlagName), incrementsConfigKey)
	cmd.Flags().BoolVar(&cpoolFlag, cpoolFlagName, viper.GetBool(cpoolConfigKey), "enable the constant-pool mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(cpoolFlagName), cpoolConfigKey)
	cmd.Flags().BoolVar(&switchFlag, switchFlagName, viper.GetBool(switchConfigKey), "enable the switch mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(switchFlagName), switchConfigKey)
	cmd.Flags().BoolVar(&storesFlag, storesFlagName, viper.GetBool(storesConfigKey), "enable the stores mutation kind")
	bindFlagToConfig(cmd.Flags().Lookup(storesFlagName), storesConfigKey)

	cmd.Flags().BoolVar(&emacsFlag, emacsFlagName, false, "shorthand for --printer emacs")
	cmd.Flags().StringVar(&printerFlag, printerFlagName, viper.GetString(printerConfigKey), "listener to report results with: text, verbose, emacs, tui")
	bindFlagToConfig(cmd.Flags().Lookup(printerFlagName), printerConfigKey)

	cmd.Flags().IntVar(&firstMutationFlag, firstMutationFlagName, viper.GetInt(firstMutationConfigKey), "skip every mutation index before this one")
	bindFlagToConfig(cmd.Flags().Lookup(firstMutationFlagName), firstMutationConfigKey)

	cmd.Flags().StringArrayVar(&classpathFlag, classpathFlagName, viper.GetStringSlice(classpathConfigKey), "classpath entry to search for the class and its tests (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(classpathFlagName), classpathConfigKey)

	cmd.Flags().BoolVar(&noOrderFlag, noOrderFlagName, viper.GetBool(noOrderConfigKey), "disable warm-up timing and killer-first test ordering")
	bindFlagToConfig(cmd.Flags().Lookup(noOrderFlagName), noOrderConfigKey)
	cmd.Flags().BoolVar(&noSaveCacheFlag, noSaveCacheFlagName, viper.GetBool(noSaveCacheConfigKey), "never write the run manifest cache")
	bindFlagToConfig(cmd.Flags().Lookup(noSaveCacheFlagName), noSaveCacheConfigKey)
	cmd.Flags().BoolVar(&noLoadCacheFlag, noLoadCacheFlagName, viper.GetBool(noLoadCacheConfigKey), "never read the run manifest cache")
	bindFlagToConfig(cmd.Flags().Lookup(noLoadCacheFlagName), noLoadCacheConfigKey)
	cmd.Flags().BoolVar(&noUseCacheFlag, noUseCacheFlagName, viper.GetBool(noUseCacheConfigKey), "disable the run manifest cache entirely (implies --no-save-cache --no-load-cache)")
	bindFlagToConfig(cmd.Flags().Lookup(noUseCacheFlagName), noUseCacheConfigKey)

	cmd.Flags().StringArrayVar(&deferClassFlag, deferClassFlagName, viper.GetStringSlice(deferClassConfigKey), "always resolve this class name prefix to its real bytes, never a mutant (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(deferClassFlagName), deferClassConfigKey)

	cmd.Flags().IntVar(&maxExternalFlag, maxExternalMutationsFlag, viper.GetInt(maxExternalMutationsConfigKey), "accepted but has no effect: mutants always run in-process, one at a time")
	bindFlagToConfig(cmd.Flags().Lookup(maxExternalMutationsFlag), maxExternalMutationsConfigKey)

	cmd.Flags().StringArrayVar(&jvmArgFlag, jvmArgFlagName, viper.GetStringSlice(jvmArgConfigKey), "extra argument forwarded to every mutant's java invocation (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(jvmArgFlagName), jvmArgConfigKey)
	cmd.Flags().StringArrayVar(&definePropFlag, definePropertyFlagName, viper.GetStringSlice(definePropertyConfigKey), "name=value system property forwarded as -D to every mutant (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(definePropertyFlagName), definePropertyConfigKey)

	cmd.Flags().BoolVar(&noGuessTestNameFlag, "no-guess-test-name", false, "require an explicit TESTCLASS argument instead of guessing one from the class name")
}

func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func runJumble(cmd *cobra.Command, args []string) error {
	configureLogger(verboseFlag)

	printerName := printerFlag
	if emacsFlag {
		printerName = "emacs"
	}

	if verboseFlag && printerName == "text" {
		printerName = "verbose"
	}

	ctor, ok := listener.Lookup(printerName)
	if !ok {
		return &jumbleerr.UsageError{Msg: fmt.Sprintf("unknown --printer %q (available: %v)", printerName, listener.Names())}
	}

	lst := ctor(cmd.OutOrStdout())
	if named, ok := lst.(interface{ SetClassName(string) }); ok {
		named.SetClassName(args[0])
	}

	cacheDir := defaultCacheDir()

	opts := engine.Options{
		ClassName:       args[0],
		TestClassNames:  args[1:],
		NoGuessTestName: noGuessTestNameFlag,
		Classpath:       classpathFlag,
		ExtraDeferred:   deferClassFlag,
		EnabledKinds:    enabledKinds(),
		ExcludedMethods: toSet(excludePatterns),
		NoOrder:         noOrderFlag,
		NoSaveCache:     noSaveCacheFlag || noUseCacheFlag,
		NoLoadCache:     noLoadCacheFlag || noUseCacheFlag,
		NoUseCache:      noUseCacheFlag,
		FirstMutation:   firstMutationFlag,
		CacheDir:        cacheDir,
		WorkDir:         cacheDir,
		Listener:        lst,
		JVMArgs:         jvmArgFlag,
		DefineProperty:  definePropFlag,
	}

	_, _, err := engine.Run(context.Background(), opts)

	return err
}

func enabledKinds() map[m.Kind]bool {
	return map[m.Kind]bool{
		m.KindReturnValues:   returnValsFlag,
		m.KindInlineConstants: inlineConstsFlag,
		m.KindIncrements:     incrementsFlag,
		m.KindConstantPool:   cpoolFlag,
		m.KindSwitch:         switchFlag,
		m.KindStores:         storesFlag,
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}

	return set
}

func defaultCacheDir() string {
	dir := viper.GetString("cache.dir")
	if dir != "" {
		return dir
	}

	return ".jumble-cache"
}

// Execute runs the root command, mapping the returned error to an exit
// code via jumbleerr.ExitCode (spec.md §7/§9: usage errors exit 2, engine
// and baseline errors exit 1).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(jumbleerr.ExitCode(err))
	}
}
