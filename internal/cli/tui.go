package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const progressBarWidth = 40

var (
	styleBarFull  = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorDim)
	styleFailed   = lipgloss.NewStyle().Foreground(colorRed)
)

// entryDoneMsg reports one finished catalog entry.
type entryDoneMsg struct {
	done   int64
	key    string
	failed bool
}

// runDoneMsg reports the end of the enrichment run.
type runDoneMsg struct {
	err error
}

// ProgressModel is the bubbletea model behind "enrich --progress".
type ProgressModel struct {
	Total    int
	Done     int64
	Failed   int
	Last     string
	Start    time.Time
	Finished bool
	Err      error

	width  int
	cancel context.CancelFunc
	now    func() time.Time
}

// NewProgressModel creates a model for total entries. cancel is called when
// the user quits before the run ends.
func NewProgressModel(total int, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{Total: total, Start: time.Now(), cancel: cancel, now: time.Now}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Keep drawing until the run notices the cancellation and
			// reports back, so caches are still persisted.
			if m.cancel != nil {
				m.cancel()
			}
			m.Last = "cancelling..."
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case entryDoneMsg:
		m.Done = max(m.Done, msg.done)
		m.Last = msg.key
		if msg.failed {
			m.Failed++
		}
	case runDoneMsg:
		m.Finished = true
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Finished {
		return ""
	}
	var b strings.Builder

	b.WriteString(styleTitle.Render("Enriching catalog entries"))
	b.WriteString("\n\n")
	b.WriteString(renderBar(m.Done, m.Total, progressBarWidth))
	fmt.Fprintf(&b, "  %s/%d", styleNumber.Render(fmt.Sprint(m.Done)), m.Total)
	if m.Failed > 0 {
		b.WriteString(styleFailed.Render(fmt.Sprintf("  %d failed", m.Failed)))
	}
	b.WriteString("\n")

	last := m.Last
	if m.width > 4 && len(last) > m.width-4 {
		last = last[:m.width-5] + "…"
	}
	b.WriteString("  " + styleDim.Render(last) + "\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  %s elapsed · q to stop", m.now().Sub(m.Start).Round(time.Second))))
	b.WriteString("\n")
	return b.String()
}

// renderBar draws a done/total bar of the given width.
func renderBar(done int64, total, width int) string {
	filled := 0
	if total > 0 {
		filled = int(done * int64(width) / int64(total))
	}
	filled = min(max(filled, 0), width)
	return styleBarFull.Render(strings.Repeat("█", filled)) + styleBarEmpty.Render(strings.Repeat("░", width-filled))
}

// runWithProgress runs fn while drawing a progress view on w. Entry
// completions reported through hooks advance the bar. Quitting the view
// cancels the context passed to fn; fn's error is returned either way.
func runWithProgress(ctx context.Context, w io.Writer, total int, hooks *runHooks, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(total, cancel), tea.WithOutput(w), tea.WithContext(ctx))
	hooks.onEntry = func(done int64, key string, err error) {
		p.Send(entryDoneMsg{done: done, key: key, failed: err != nil})
	}
	defer func() { hooks.onEntry = nil }()

	result := make(chan error, 1)
	go func() {
		err := fn(ctx)
		result <- err
		p.Send(runDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		cancel()
		<-result
		return fmt.Errorf("progress view: %w", err)
	}
	return <-result
}
