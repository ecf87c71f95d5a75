package main

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/myohand/internal/mqtt"
)

const (
	headerHeight = 2
	legendHeight = 1
	footerHeight = 2
	borderSize   = 2
)

const (
	seriesRaw        = "raw"
	seriesFiltered   = "filtered"
	seriesActivation = "activation"
)

var seriesColors = map[string]string{
	seriesRaw:        "241", // grey
	seriesFiltered:   "10",  // green
	seriesActivation: "9",   // red
}

var seriesOrder = []string{seriesRaw, seriesFiltered, seriesActivation}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	openStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	closeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

type readingMsg mqtt.EMGPayload

func waitForReading(readings <-chan mqtt.EMGPayload) tea.Cmd {
	return func() tea.Msg {
		return readingMsg(<-readings)
	}
}

type monitorModel struct {
	readings   <-chan mqtt.EMGPayload
	chart      *streamlinechart.Model
	broker     string
	activation int
	width      int
	height     int
	last       *mqtt.EMGPayload
	received   int
	quitting   bool
}

func initialModel(readings <-chan mqtt.EMGPayload, broker string, activation, adcMax int) monitorModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, float64(adcMax)),
	)
	for _, name := range seriesOrder {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return monitorModel{
		readings:   readings,
		chart:      &chart,
		broker:     broker,
		activation: activation,
	}
}

func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m monitorModel) Init() tea.Cmd {
	return waitForReading(m.readings)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case readingMsg:
		r := mqtt.EMGPayload(msg)
		m.last = &r
		m.received++
		m.chart.PushDataSet(seriesRaw, float64(r.Raw))
		m.chart.PushDataSet(seriesFiltered, float64(r.Filtered))
		m.chart.PushDataSet(seriesActivation, float64(m.activation))
		m.chart.DrawAll()
		return m, waitForReading(m.readings)
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Myoelectric Hand"))
	sb.WriteString(statusStyle.Render(" - " + m.broker))
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(renderLegend())
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("Press 'q' to quit"))
	sb.WriteString("\n")

	return sb.String()
}

func (m monitorModel) statusLine() string {
	if m.last == nil {
		return statusStyle.Render("waiting for telemetry...")
	}
	gesture := m.last.Gesture
	switch gesture {
	case "OPEN":
		gesture = openStyle.Render(gesture)
	case "CLOSE":
		gesture = closeStyle.Render(gesture)
	}
	muscle := "relaxed"
	if m.last.Active {
		muscle = "contracted"
	}
	line := fmt.Sprintf("%s  command=%s  %s  raw=%d  filtered=%d  readings=%d",
		gesture, m.last.Command, muscle, m.last.Raw, m.last.Filtered, m.received)
	if m.last.Suppressed {
		line += statusStyle.Render("  (debounce)")
	}
	return line
}

func renderLegend() string {
	var items []string
	for _, name := range seriesOrder {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}
