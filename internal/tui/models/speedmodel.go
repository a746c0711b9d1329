package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/ch55x-tools"
	"github.com/allbin/ch55x-tools/internal/tui/components"
	"github.com/allbin/ch55x-tools/internal/tui/keys"
	"github.com/allbin/ch55x-tools/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// MeasureFunc performs one speed measurement
type MeasureFunc func() (ch55x.SpeedResult, error)

// SampleMsg carries the outcome of one measurement
type SampleMsg struct {
	Result ch55x.SpeedResult
	Err    error
	At     time.Time
}

// tickMsg schedules the next measurement. Only the tick matching the
// model's current id is acted on, older ones are stale.
type tickMsg struct {
	id int
}

// SpeedModel repeats a speed measurement and shows the samples live.
// Measurements never overlap: the next one is scheduled only after the
// previous SampleMsg arrived.
type SpeedModel struct {
	portName string
	measure  MeasureFunc
	interval time.Duration

	keys  keys.SpeedKeys
	help  help.Model
	table *components.SampleTable

	stats   Stats
	seq     int
	tickID  int
	last    *SampleMsg
	paused  bool
	running bool
	width   int
	height  int
}

func NewSpeedModel(portName string, measure MeasureFunc, interval time.Duration) *SpeedModel {
	return &SpeedModel{
		portName: portName,
		measure:  measure,
		interval: interval,
		keys:     keys.NewSpeedKeys(),
		help:     help.New(),
		table:    components.NewSampleTable(80, 10),
	}
}

func (m *SpeedModel) Init() tea.Cmd {
	return m.measureCmd()
}

func (m *SpeedModel) measureCmd() tea.Cmd {
	m.running = true
	measure := m.measure
	return func() tea.Msg {
		res, err := measure()
		return SampleMsg{Result: res, Err: err, At: time.Now()}
	}
}

func (m *SpeedModel) tickCmd() tea.Cmd {
	m.tickID++
	id := m.tickID
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *SpeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		// title, status, stats, error, help and spacing
		m.table.SetSize(msg.Width, msg.Height-9)
		return m, nil

	case SampleMsg:
		m.running = false
		m.record(msg)
		if m.paused {
			return m, nil
		}
		return m, m.tickCmd()

	case tickMsg:
		if msg.id != m.tickID || m.paused || m.running {
			return m, nil
		}
		return m, m.measureCmd()
	}

	return m, nil
}

func (m *SpeedModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if !m.paused && !m.running {
			return m.measureCmd()
		}
	case key.Matches(msg, m.keys.Once):
		if m.paused && !m.running {
			return m.measureCmd()
		}
	case key.Matches(msg, m.keys.Reset):
		m.stats.Reset()
		m.table.Clear()
		m.seq = 0
		m.last = nil
	}
	return nil
}

func (m *SpeedModel) record(msg SampleMsg) {
	m.seq++
	m.last = &msg

	sample := components.Sample{Seq: m.seq, At: msg.At, Err: msg.Err}
	if msg.Err != nil {
		m.stats.AddError()
	} else {
		sample.Bytes = msg.Result.Bytes
		sample.Elapsed = msg.Result.Elapsed
		sample.KBps = msg.Result.KBps()
		m.stats.Add(sample.KBps)
	}
	m.table.Add(sample)
}

// Stats returns the accumulated statistics
func (m *SpeedModel) Stats() Stats {
	return m.stats
}

func (m *SpeedModel) Paused() bool {
	return m.paused
}

func (m *SpeedModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Serial Speed Test"))
	b.WriteString(" ")
	b.WriteString(styles.MutedStyle.Render(m.portName))
	b.WriteString("\n\n")

	status := styles.SuccessStyle.Render("● measuring")
	if m.paused {
		status = styles.WarningStyle.Render("‖ paused")
	}
	fmt.Fprintf(&b, "%s  samples %d  errors %d\n", status, m.stats.Count, m.stats.Errors)

	if m.stats.Count > 0 {
		fmt.Fprintf(&b, "min %s  avg %s  max %s kB/s\n",
			styles.HighlightStyle.Render(fmt.Sprintf("%.2f", m.stats.Min)),
			styles.HighlightStyle.Render(fmt.Sprintf("%.2f", m.stats.Avg())),
			styles.HighlightStyle.Render(fmt.Sprintf("%.2f", m.stats.Max)))
	} else {
		b.WriteString(styles.MutedStyle.Render("waiting for first sample"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.last != nil && m.last.Err != nil {
		b.WriteString(styles.ErrorStyle.Render("last error: " + m.last.Err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
