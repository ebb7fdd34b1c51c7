package cli

import (
	"fmt"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/adoready/pkg/application"
	"github.com/felixgeelhaar/adoready/pkg/domain/progress"
)

// scanModel renders a live scan: spinner, current project, and a
// progress bar. It wakes on hub events but always re-reads the status
// slot, so a dropped event can delay a frame, never hang the view.
type scanModel struct {
	scans    *application.ScanService
	events   <-chan progress.Event
	spinner  spinner.Model
	bar      progressbar.Model
	status   application.ScanStatus
	err      error
	quitting bool
}

type scanEventMsg struct{}

type scanTickMsg struct{}

func newScanModel(scans *application.ScanService, events <-chan progress.Event) scanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	bar := progressbar.New(progressbar.WithDefaultGradient())
	bar.Width = 40

	return scanModel{
		scans:   scans,
		events:  events,
		spinner: sp,
		bar:     bar,
		status:  scans.Status(),
	}
}

func (m scanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForScanEvent(m.events), scanTick())
}

// waitForScanEvent turns the next hub event into a message. A closed
// channel yields nil, which stops the re-arm cycle; the ticker keeps
// polling either way.
func waitForScanEvent(events <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return scanEventMsg{}
	}
}

func scanTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return scanTickMsg{}
	})
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.err = fmt.Errorf("scan interrupted")
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case scanEventMsg:
		model, cmd := m.refresh()
		return model, tea.Batch(cmd, waitForScanEvent(m.events))

	case scanTickMsg:
		model, cmd := m.refresh()
		return model, tea.Batch(cmd, scanTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressbar.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progressbar.Model)
		return m, cmd
	}
	return m, nil
}

// refresh re-reads the status slot and quits on a terminal status.
func (m scanModel) refresh() (scanModel, tea.Cmd) {
	m.status = m.scans.Status()
	switch m.status.Status {
	case application.ScanCompleted, application.ScanFailed:
		m.quitting = true
		return m, tea.Quit
	}
	return m, m.bar.SetPercent(float64(m.status.Progress) / 100)
}

func (m scanModel) View() string {
	if m.quitting {
		return ""
	}

	st := m.status
	line := "Discovering projects..."
	if st.CurrentProject != "" {
		line = fmt.Sprintf("Scanning %s... (%d/%d)", st.CurrentProject, st.ProjectsScanned+1, st.TotalProjects)
	}

	return fmt.Sprintf("\n %s %s\n\n %s\n\n %s\n",
		m.spinner.View(),
		line,
		m.bar.View(),
		dimText.Render("press q to abort"),
	)
}

// followScanTUI runs the progress view until the scan finishes and
// reports how it ended.
func followScanTUI(scans *application.ScanService, events <-chan progress.Event) error {
	p := tea.NewProgram(newScanModel(scans, events))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}
	if m, ok := final.(scanModel); ok && m.err != nil {
		return m.err
	}

	if st := scans.Status(); st.Status == application.ScanFailed {
		return fmt.Errorf("scan failed: %s", st.Error)
	}
	return nil
}
