// Package listener implements component F's reporting surface: the
// scheduler emits Start/Mutation/Verdict/End events and a Listener renders
// them, independent of how the engine itself is driven. Grounded on the
// teacher's internal/adapter.UI interface shape (one interface, multiple
// renderers selected at the cmd layer), generalized from "display a
// finished report" to "render events as they stream in."
package listener

import (
	"io"

	m "github.com/pragmatics/jumble/internal/model"
)

// Listener receives the scheduler's event stream in order: one Start, then
// one Mutation immediately followed by one Verdict per mutant (in that
// pairing, per spec.md §5's ordering invariant), then one End.
type Listener interface {
	Start(total int)
	Mutation(mutation m.Mutation)
	Verdict(mutation m.Mutation, verdict m.Verdict)
	End(killed, survived, total int)
}

// Constructor builds a Listener writing to w, for the --printer registry.
type Constructor func(w io.Writer) Listener

// registry maps a --printer name to its constructor. Built-in names are
// registered in text.go/emacs.go/tui.go's init functions.
var registry = map[string]Constructor{}

// Register adds a named Listener constructor, for --printer CLASS to find
// by name (mirroring the original Jumble's pluggable JumbleStreamListener
// classes).
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Lookup resolves a --printer name, or reports it unknown.
func Lookup(name string) (Constructor, bool) {
	ctor, ok := registry[name]
	return ctor, ok
}

// Names lists every registered listener name, for usage/help text.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	return names
}
