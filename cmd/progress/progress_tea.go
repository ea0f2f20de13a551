//go:build !no_bubbletea

package progress

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/krau/ocw-saver/common/utils/dlutil"
	"github.com/krau/ocw-saver/core/tasks/coursetree"
)

var (
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

// Enabled reports whether stdout is a terminal the progress UI can draw on.
func Enabled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type snapshot struct {
	listings, totalListings   int
	resources, totalResources int
	bytes                     int64
	started                   time.Time
}

func snapshotOf(info coursetree.RunInfo) snapshot {
	return snapshot{
		listings:       info.DoneListings(),
		totalListings:  info.TotalListings(),
		resources:      info.DoneResources(),
		totalResources: info.TotalResources(),
		bytes:          info.DownloadedBytes(),
		started:        info.StartedAt(),
	}
}

type progressMsg snapshot

type progressDoneMsg struct {
	snap snapshot
	err  error
}

type runModel struct {
	progress progress.Model
	runID    string
	snap     snapshot
	err      error
	done     bool
}

func newRunModel(runID string) runModel {
	return runModel{
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		runID:    runID,
	}
}

func (m runModel) Init() tea.Cmd {
	return nil
}

// percent counts resources; listings not yet parsed weigh as one resource each.
func (s snapshot) percent() float64 {
	total := s.totalResources + s.totalListings - s.listings
	if total <= 0 {
		return 0
	}
	return min(float64(s.resources)/float64(total), 1)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(min(msg.Width-10, 80), 10)
		return m, nil

	case progressMsg:
		m.snap = snapshot(msg)
		return m, m.progress.SetPercent(m.snap.percent())

	case progressDoneMsg:
		m.snap = msg.snap
		m.err = msg.err
		m.done = true
		m.progress.SetPercent(1.0)
		return m, tea.Quit

	case progress.FrameMsg:
		if m.done {
			return m, nil
		}
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m runModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Run %s\n", m.runID)
	fmt.Fprintf(&sb, "  Listings %d/%d  Resources %d/%d\n",
		m.snap.listings, m.snap.totalListings, m.snap.resources, m.snap.totalResources)
	fmt.Fprintf(&sb, "  %s at %s/s\n\n",
		humanize.Bytes(uint64(m.snap.bytes)),
		humanize.Bytes(uint64(dlutil.GetSpeed(m.snap.bytes, m.snap.started))))

	sb.WriteString("  ")
	if m.done && m.err == nil {
		sb.WriteString(m.progress.ViewAs(1.0))
	} else {
		sb.WriteString(m.progress.View())
	}
	sb.WriteString("\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("  Aborted: " + m.err.Error()))
		sb.WriteString("\n\n")
	case m.done:
		sb.WriteString("  Done\n\n")
	default:
		sb.WriteString(helpStyle.Render("  Press Ctrl+C to cancel"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Tracker draws the progress of a course tree run in the terminal.
type Tracker struct {
	program *tea.Program
	cancel  context.CancelFunc
	started chan struct{}
}

var _ coursetree.ProgressTracker = (*Tracker)(nil)

func New() *Tracker {
	return &Tracker{started: make(chan struct{})}
}

func (t *Tracker) OnStart(ctx context.Context, info coursetree.RunInfo) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.program = tea.NewProgram(
		newRunModel(info.RunID()),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
	)
	close(t.started)
	go t.program.Run()
	t.program.Send(progressMsg(snapshotOf(info)))
}

func (t *Tracker) OnProgress(ctx context.Context, info coursetree.RunInfo) {
	select {
	case <-t.started:
		t.program.Send(progressMsg(snapshotOf(info)))
	default:
	}
}

func (t *Tracker) OnDone(ctx context.Context, info coursetree.RunInfo, err error) {
	select {
	case <-t.started:
	default:
		return
	}
	t.program.Send(progressDoneMsg{snap: snapshotOf(info), err: err})
	t.program.Wait()
	t.cancel()
}
