package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	// Note colors, keyed by natural note in either notation
	noteColors = map[string]string{
		"C": "#E8D6B0", "Do": "#E8D6B0", // Beige
		"D": "#A020F0", "Ré": "#A020F0", // Purple
		"E": "#FFFF00", "Mi": "#FFFF00", // Yellow
		"F": "#FFA500", "Fa": "#FFA500", // Orange
		"G": "#00FF00", "Sol": "#00FF00", // Green
		"A": "#FF0000", "La": "#FF0000", // Red
		"B": "#0000FF", "Si": "#0000FF", // Blue
	}
)

// noteStyle returns the badge style for a note name; sharps take the color
// of their natural.
func noteStyle(name string) lipgloss.Style {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		PaddingLeft(1).
		PaddingRight(1)

	if color, ok := noteColors[strings.TrimSuffix(name, "#")]; ok {
		style = style.Background(lipgloss.Color(color))
	}
	return style
}

// FrameMsg carries one rendered frame: chart rows, a blank line, then the
// dominant-note line.
type FrameMsg string

// Model represents the UI state
type Model struct {
	title       string
	chart       string
	dominantHz  string
	dominant    string
	frames      int
	lastUpdated time.Time
	width       int
	height      int
}

// NewModel creates a new UI model
func NewModel(title string) Model {
	return Model{title: title}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "enter":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case FrameMsg:
		m.chart, m.dominantHz, m.dominant = splitFrame(string(msg))
		m.frames++
		m.lastUpdated = time.Now()
	}

	return m, nil
}

// splitFrame separates the chart from the trailing dominant-note line.
func splitFrame(frame string) (chart, hz, note string) {
	frame = strings.TrimRight(frame, "\n")
	i := strings.LastIndex(frame, "\n")
	last := frame[i+1:]
	if i >= 0 {
		chart = strings.TrimRight(frame[:i], "\n")
	}

	fields := strings.Fields(last)
	if len(fields) == 2 {
		hz, note = fields[0], fields[1]
	}
	return chart, hz, note
}

// View renders the UI
func (m Model) View() string {
	s := titleStyle.Render(m.title)
	s += "\n"

	if m.frames == 0 {
		s += infoStyle.Render("Listening for audio...")
	} else {
		s += noteStyle(m.dominant).Render(m.dominant)
		s += " " + infoStyle.Render(m.dominantHz+" Hz")
		s += "\n\n"
		s += m.colorBars(m.chart)
	}

	s += "\n\n"
	s += infoStyle.Render("Press q or enter to quit")

	return s
}

// colorBars styles the glyph runs of each chart row, clipped to the
// terminal height when known.
func (m Model) colorBars(chart string) string {
	rows := strings.Split(chart, "\n")
	if m.height > 0 {
		if limit := m.height - 8; limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}
	}

	for i, row := range rows {
		if label, bar, ok := strings.Cut(row, ": "); ok {
			rows[i] = label + ": " + barStyle.Render(bar)
		}
	}
	return strings.Join(rows, "\n")
}

// Frames returns how many frames the model has received.
func (m Model) Frames() int {
	return m.frames
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// FrameWriter forwards each Write as one FrameMsg. The processor writes a
// whole frame per call.
type FrameWriter struct {
	Program Sender
}

func (w FrameWriter) Write(p []byte) (int, error) {
	w.Program.Send(FrameMsg(p))
	return len(p), nil
}
