// Package convention implements the naming conventions the original Jumble
// uses to save the caller from typing a TESTCLASS argument on every invocation.
package convention

import "strings"

// GuessTestClassName derives a test class name from a class under test's
// binary name: strip any "$inner" suffix, replace a leading "Abstract" in
// the simple name with "Dummy", then append "Test". Confirmed against
// Jumble.java's guessTestClassName.
func GuessTestClassName(className string) string {
	pkg, simple := splitPackage(className)

	if idx := strings.Index(simple, "$"); idx >= 0 {
		simple = simple[:idx]
	}

	if strings.HasPrefix(simple, "Abstract") {
		simple = "Dummy" + strings.TrimPrefix(simple, "Abstract")
	}

	simple += "Test"

	if pkg == "" {
		return simple
	}

	return pkg + "." + simple
}

func splitPackage(className string) (pkg, simple string) {
	idx := strings.LastIndex(className, ".")
	if idx < 0 {
		return "", className
	}

	return className[:idx], className[idx+1:]
}
