package listener

import (
	"fmt"
	"io"

	m "github.com/pragmatics/jumble/internal/model"
)

func init() {
	Register("emacs", func(w io.Writer) Listener { return NewEmacs(w) })
}

// Emacs renders one compilation-mode-parseable line per surviving, timed-out
// or errored mutant ("file:line: message"), for --emacs, matching the original Jumble's
// EmacsStreamListener so the mutation report can be stepped through with
// next-error.
type Emacs struct {
	w                       io.Writer
	className               string
	killed, survived, total int
}

// NewEmacs constructs an Emacs listener. className is filled in by
// cmd/root.go via SetClassName from the target class argument.
func NewEmacs(w io.Writer) *Emacs {
	return &Emacs{w: w}
}

// SetClassName records the class under test, used as the pseudo-filename
// in each emitted line.
func (e *Emacs) SetClassName(name string) { e.className = name }

func (e *Emacs) Start(total int) { e.total = total }

func (e *Emacs) Mutation(m.Mutation) {}

func (e *Emacs) Verdict(mutation m.Mutation, verdict m.Verdict) {
	switch verdict.Outcome {
	case m.Survived:
		e.survived++
		fmt.Fprintf(e.w, "%s:%d: survived: %s\n", e.className, mutation.Line, mutation.Description)
	case m.Killed:
		e.killed++
	case m.Timeout:
		fmt.Fprintf(e.w, "%s:%d: timeout: %s\n", e.className, mutation.Line, mutation.Description)
	case m.FailedToLoad, m.RuntimeError:
		fmt.Fprintf(e.w, "%s:%d: error: %s\n", e.className, mutation.Line, verdict.Reason)
	}
}

func (e *Emacs) End(killed, survived, total int) {
	score := 100.0
	if total > 0 {
		score = float64(killed) / float64(total) * 100
	}

	fmt.Fprintf(e.w, "jumble score: %.1f%% (%d/%d killed)\n", score, killed, total)
}
