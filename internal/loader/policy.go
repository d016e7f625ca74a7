// Package loader implements component C: the classloading delegation
// policy. The engine never subclasses java.lang.ClassLoader in-process —
// every mutant runs in its own "java" subprocess (see internal/testrunner
// and internal/worker) — so delegation is realized as a classpath-ordering
// strategy instead: which directory the harness's bootstrap puts first on
// -cp decides which bytes a given class name resolves to. Grounded on the
// teacher's internal/domain/orchestrator.go tmpdir-isolation shape,
// generalized from "copy a Go module aside" to "stage one mutated .class
// file ahead of the real classpath."
package loader

import "strings"

// Origin identifies where a class's bytes should come from when the
// harness resolves a name during a mutant run.
type Origin int

const (
	// OriginMutant means the classpath entry jumble staged for this run
	// (a single directory holding the one mutated .class file) must be
	// searched first.
	OriginMutant Origin = iota
	// OriginReal means the class must always resolve to its real,
	// unmutated bytes on the project's own classpath — used for test
	// infrastructure and the JDK itself, which must never see a mutant.
	OriginReal
)

// DefaultDeferredPrefixes are binary-name prefixes that always resolve to
// OriginReal, regardless of the --defer-class flag: the test framework,
// the JDK, and the harness's own event-reporting types. Mutating any of
// these would corrupt the harness rather than the class under test.
var DefaultDeferredPrefixes = []string{
	"junit.framework.",
	"org.junit.",
	"java.",
	"javax.",
	"jdk.",
	"sun.",
	"com.pragmatics.jumble.harness.",
}

// Policy decides, for a single mutant run, which classpath entry a class
// name should resolve through.
type Policy struct {
	// MutantClassName is the binary name of the class currently mutated
	// (e.g. "com/example/Widget" form is normalized to dotted form).
	MutantClassName string
	// DeferredPrefixes extends DefaultDeferredPrefixes with any names the
	// caller passed via --defer-class.
	DeferredPrefixes []string
}

// NewPolicy builds a Policy for mutating mutantClassName, merging the
// caller-supplied deferred prefixes (from --defer-class) with the built-in
// defaults.
func NewPolicy(mutantClassName string, extraDeferred []string) Policy {
	deferred := make([]string, 0, len(DefaultDeferredPrefixes)+len(extraDeferred))
	deferred = append(deferred, DefaultDeferredPrefixes...)
	deferred = append(deferred, extraDeferred...)

	return Policy{
		MutantClassName:  normalize(mutantClassName),
		DeferredPrefixes: deferred,
	}
}

// Resolve reports where a given class name's bytes should come from.
func (p Policy) Resolve(className string) Origin {
	name := normalize(className)

	for _, prefix := range p.DeferredPrefixes {
		if strings.HasPrefix(name, normalize(prefix)) {
			return OriginReal
		}
	}

	if name == p.MutantClassName {
		return OriginMutant
	}

	return OriginReal
}

// Classpath builds the -cp argument list for one mutant run: the staged
// mutant directory first, then the project's real classpath entries, so
// the JVM's own first-match-wins search order implements the delegation
// policy without any custom ClassLoader.
func (p Policy) Classpath(mutantDir string, realClasspath []string) []string {
	cp := make([]string, 0, len(realClasspath)+1)
	cp = append(cp, mutantDir)
	cp = append(cp, realClasspath...)

	return cp
}

func normalize(className string) string {
	return strings.ReplaceAll(className, "/", ".")
}
