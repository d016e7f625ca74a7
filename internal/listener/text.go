package listener

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	m "github.com/pragmatics/jumble/internal/model"
)

func init() {
	Register("text", func(w io.Writer) Listener { return NewText(w, false) })
	Register("verbose", func(w io.Writer) Listener { return NewText(w, true) })
}

// Text is the default Listener: one mark per mutant ('.' killed, 'M'
// survived, 'T' timeout) followed by a tablewriter summary, mirroring the
// teacher's internal/controller/simple.go plain-text reporting style.
type Text struct {
	w       io.Writer
	verbose bool

	total, killed, survived, timedOut, errored int
}

// NewText constructs a Text listener writing to w. In verbose mode every
// mutation is described on its own line as it runs (spec.md's --verbose).
func NewText(w io.Writer, verbose bool) *Text {
	return &Text{w: w, verbose: verbose}
}

func (t *Text) Start(total int) {
	t.total = total
	fmt.Fprintf(t.w, "jumble: %d mutation points to test\n", total)
}

func (t *Text) Mutation(mutation m.Mutation) {
	if t.verbose {
		fmt.Fprintf(t.w, "[%d/%d] %s (line %d): %s\n", mutation.Index+1, t.total, mutation.MethodName, mutation.Line, mutation.Description)
	}
}

func (t *Text) Verdict(mutation m.Mutation, verdict m.Verdict) {
	switch verdict.Outcome {
	case m.Killed:
		t.killed++
		t.mark(".")
	case m.Timeout:
		t.timedOut++
		t.mark("T")
	case m.Survived:
		t.survived++
		t.mark("M")
	case m.FailedToLoad, m.RuntimeError:
		t.errored++
		t.mark("E")
	}

	if t.verbose && verdict.Killer != "" {
		fmt.Fprintf(t.w, "    killed by %s\n", verdict.Killer)
	}
}

func (t *Text) mark(s string) {
	if !t.verbose {
		fmt.Fprint(t.w, s)
	}
}

func (t *Text) End(killed, survived, total int) {
	if !t.verbose {
		fmt.Fprintln(t.w)
	}

	score := 100.0
	if total > 0 {
		score = float64(killed) / float64(total) * 100
	}

	table := tablewriter.NewWriter(t.w)
	table.SetHeader([]string{"Total", "Killed", "Survived", "Timed out", "Errored", "Score"})
	table.Append([]string{
		fmt.Sprintf("%d", total),
		fmt.Sprintf("%d", killed),
		fmt.Sprintf("%d", survived),
		fmt.Sprintf("%d", t.timedOut),
		fmt.Sprintf("%d", t.errored),
		fmt.Sprintf("%.1f%%", score),
	})
	table.Render()
}
