package listener

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/pragmatics/jumble/internal/model"
)

func init() {
	Register("tui", func(w io.Writer) Listener { return NewTUI(w) })
}

// TUI renders a live progress bar with running kill/survive/timeout counts,
// for interactive local runs (--printer tui). Adapted from the teacher's
// internal/adapter/tui.go bubbletea-program-over-a-writer shape, cut down
// to the single live progress bar this engine's event stream needs instead
// of the teacher's paginated-list browser.
type TUI struct {
	w       io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI constructs a TUI listener writing to w.
func NewTUI(w io.Writer) *TUI {
	return &TUI{w: w}
}

type tuiModel struct {
	total, done, killed, survived, timedOut, errored int
	current                                          string
	bar                                              progress.Model
	finished                                         bool
}

type tuiMutationMsg struct{ description string }
type tuiVerdictMsg struct{ outcome m.Outcome }
type tuiEndMsg struct{}

func newTUIModel(total int) tuiModel {
	return tuiModel{total: total, bar: progress.New(progress.WithDefaultGradient())}
}

func (t tuiModel) Init() tea.Cmd { return nil }

func (t tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tuiMutationMsg:
		t.current = msg.description
	case tuiVerdictMsg:
		t.done++

		switch msg.outcome {
		case m.Killed:
			t.killed++
		case m.Timeout:
			t.timedOut++
		case m.Survived:
			t.survived++
		case m.FailedToLoad, m.RuntimeError:
			t.errored++
		}
	case tuiEndMsg:
		t.finished = true
		return t, tea.Quit
	}

	return t, nil
}

func (t tuiModel) View() string {
	if t.finished {
		return ""
	}

	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("jumble %d/%d", t.done, t.total))
	counts := fmt.Sprintf("killed %d  survived %d  timeout %d  errored %d", t.killed, t.survived, t.timedOut, t.errored)

	ratio := 0.0
	if t.total > 0 {
		ratio = float64(t.done) / float64(t.total)
	}

	return label + "\n" + t.bar.ViewAs(ratio) + "\n" + counts + "\n" + t.current + "\n"
}

func (p *TUI) Start(total int) {
	model := newTUIModel(total)
	p.program = tea.NewProgram(model, tea.WithOutput(p.w))
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

func (p *TUI) Mutation(mutation m.Mutation) {
	if p.program != nil {
		p.program.Send(tuiMutationMsg{description: mutation.Description})
	}
}

func (p *TUI) Verdict(_ m.Mutation, verdict m.Verdict) {
	if p.program != nil {
		p.program.Send(tuiVerdictMsg{outcome: verdict.Outcome})
	}
}

func (p *TUI) End(killed, survived, total int) {
	if p.program == nil {
		return
	}

	p.program.Send(tuiEndMsg{})
	<-p.done

	fmt.Fprintf(p.w, "jumble: %d/%d killed (%.1f%%)\n", killed, total, percent(killed, total))
}

func percent(killed, total int) float64 {
	if total == 0 {
		return 100.0
	}

	return float64(killed) / float64(total) * 100
}
