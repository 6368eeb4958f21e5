package pkg

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UXManager handles user experience enhancements like progress bars and spinners
type UXManager struct {
	logger     *slog.Logger
	noProgress bool
	output     io.Writer
	isTerminal func() bool

	// Styles
	titleStyle   lipgloss.Style
	spinnerStyle lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewUXManager creates a new UX manager. noProgress forces plain output even
// on a terminal.
func NewUXManager(logger *slog.Logger, noProgress bool) *UXManager {
	ux := &UXManager{
		logger:     logger,
		noProgress: noProgress,
		output:     os.Stderr,

		titleStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		spinnerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		warningStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		mutedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
	ux.isTerminal = ux.IsInteractiveTerminal
	return ux
}

// IsInteractiveTerminal checks if we're running in an interactive terminal
func (ux *UXManager) IsInteractiveTerminal() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	ciEnvVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return os.Getenv("TERM") != "dumb"
}

// ProgressAvailable reports whether installs should render a progress bar
func (ux *UXManager) ProgressAvailable() bool {
	return !ux.noProgress && ux.isTerminal()
}

// AptStatus is one line of apt's machine-readable status stream
type AptStatus struct {
	Phase   string // "pmstatus" or "dlstatus"
	Package string
	Percent float64
	Message string
}

// ParseAptStatus parses a line written by apt-get -o APT::Status-Fd, e.g.
// "pmstatus:git:42.8571:Installing git (amd64)"
func ParseAptStatus(line string) (AptStatus, bool) {
	parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
	if len(parts) != 4 {
		return AptStatus{}, false
	}
	if parts[0] != "pmstatus" && parts[0] != "dlstatus" {
		return AptStatus{}, false
	}
	percent, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return AptStatus{}, false
	}
	return AptStatus{Phase: parts[0], Package: parts[1], Percent: percent, Message: parts[3]}, true
}

// ProgressModel renders the install progress of one package group
type ProgressModel struct {
	title    string
	status   string
	percent  float64
	progress progress.Model
	done     bool
	err      error
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.progress.Width = min(60, max(20, msg.Width-10))
	case ProgressUpdateMsg:
		m.status = msg.Status
		if msg.Percent > m.percent {
			m.percent = msg.Percent
		}
	case ProgressDoneMsg:
		m.done = true
		m.err = msg.Error
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("✗ %s: %v\n", m.title, m.err)
		}
		return fmt.Sprintf("✓ %s\n", m.title)
	}

	return fmt.Sprintf("%s\n%s\n%s\n", m.title, m.progress.ViewAs(m.percent/100), m.status)
}

// ProgressUpdateMsg moves the bar
type ProgressUpdateMsg struct {
	Percent float64
	Status  string
}

// ProgressDoneMsg ends the progress program
type ProgressDoneMsg struct {
	Error error
}

// RunWithProgress runs fn and renders apt status lines written to the writer
// it receives as a progress bar. Every byte is also copied to transcript.
// Without an interactive terminal fn writes to plain instead.
func (ux *UXManager) RunWithProgress(title string, plain, transcript io.Writer, fn func(w io.Writer) error) error {
	if transcript == nil {
		transcript = io.Discard
	}
	if !ux.ProgressAvailable() {
		ux.logger.Info(title)
		if plain == nil {
			return fn(transcript)
		}
		return fn(io.MultiWriter(plain, transcript))
	}

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 60
	prog.ShowPercentage = true

	model := ProgressModel{title: ux.titleStyle.Render(title), progress: prog, status: "Preparing..."}
	p := tea.NewProgram(model, tea.WithOutput(ux.output), tea.WithInput(nil))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Run(); err != nil {
			ux.logger.Debug("Progress bar error", "error", err)
		}
	}()

	pr, pw := io.Pipe()
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Fprintln(transcript, line)
			status, ok := ParseAptStatus(line)
			if !ok {
				continue
			}
			label := status.Message
			if status.Phase == "dlstatus" {
				label = "Downloading: " + status.Message
			}
			p.Send(ProgressUpdateMsg{Percent: status.Percent, Status: ux.mutedStyle.Render(label)})
		}
		// drain so the writer never blocks after a scan error
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := fn(pw)
	pw.Close()
	<-scanDone

	p.Send(ProgressDoneMsg{Error: err})
	wg.Wait()
	return err
}

// SpinnerModel represents a spinner with a message
type SpinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case SpinnerDoneMsg:
		m.done = true
		m.err = msg.Error
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m SpinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("✗ %s: %v\n", m.message, m.err)
		}
		return fmt.Sprintf("✓ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

// SpinnerDoneMsg stops a spinner
type SpinnerDoneMsg struct {
	Error error
}

// WithSpinner shows a spinner while fn runs
func (ux *UXManager) WithSpinner(message string, fn func() error) error {
	if !ux.ProgressAvailable() {
		ux.logger.Info(message)
		return fn()
	}

	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = ux.spinnerStyle

	p := tea.NewProgram(SpinnerModel{spinner: s, message: message}, tea.WithOutput(ux.output), tea.WithInput(nil))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Run(); err != nil {
			ux.logger.Debug("Spinner error", "error", err)
		}
	}()

	err := fn()
	p.Send(SpinnerDoneMsg{Error: err})
	wg.Wait()
	return err
}

// spin runs fn under ux's spinner, or directly when ux is nil
func spin(ux *UXManager, message string, fn func() error) error {
	if ux == nil {
		return fn()
	}
	return ux.WithSpinner(message, fn)
}

// RenderSummary formats the end-of-run report
func (ux *UXManager) RenderSummary(report *RunReport) string {
	var out strings.Builder

	out.WriteString(ux.titleStyle.Render("Provisioning summary") + "\n")
	out.WriteString(ux.mutedStyle.Render(strings.Repeat("─", 50)) + "\n")

	for _, step := range report.Steps {
		var marker string
		switch step.Severity {
		case SeveritySuccess:
			marker = ux.successStyle.Render("✓")
		case SeverityPartial:
			marker = ux.warningStyle.Render("⚠")
		default:
			marker = ux.errorStyle.Render("✗")
		}

		line := fmt.Sprintf("%s %s", marker, step.Name)
		if step.Detail != "" {
			line += ux.mutedStyle.Render(" " + step.Detail)
		}
		if step.Err != nil {
			line += ux.mutedStyle.Render(fmt.Sprintf(" (%v)", step.Err))
		}
		out.WriteString(line + "\n")
	}

	partials := len(report.Partials())
	switch fatal, ok := report.Fatal(); {
	case ok:
		out.WriteString("\n" + ux.errorStyle.Render("Aborted at "+fatal.Name) + "\n")
	case partials > 0:
		out.WriteString("\n" + ux.warningStyle.Render(fmt.Sprintf("Completed with %d best-effort failure(s)", partials)) + "\n")
	default:
		out.WriteString("\n" + ux.successStyle.Render("All steps completed") + "\n")
	}

	return out.String()
}
