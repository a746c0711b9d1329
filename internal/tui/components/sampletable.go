package components

import (
	"fmt"
	"time"

	"github.com/allbin/ch55x-tools/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// MaxSamples bounds how many rows the table keeps
const MaxSamples = 500

// Sample is one row of the speed test table
type Sample struct {
	Seq     int
	At      time.Time
	Bytes   int
	Elapsed time.Duration
	KBps    float64
	Err     error
}

type SampleTable struct {
	table   table.Model
	samples []Sample
}

func NewSampleTable(width, height int) *SampleTable {
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(sampleColumns(width)),
		table.WithFocused(false),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	return &SampleTable{table: t}
}

// sampleColumns gives the spare width to the result column
func sampleColumns(width int) []table.Column {
	resultWidth := width - (5 + 14 + 7 + 12) - 10
	if resultWidth < 12 {
		resultWidth = 12
	}
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Time", Width: 14},
		{Title: "Bytes", Width: 7},
		{Title: "Elapsed", Width: 12},
		{Title: "kB/s", Width: resultWidth},
	}
}

func (st *SampleTable) SetSize(width, height int) {
	if height < 3 {
		height = 3
	}
	st.table.SetColumns(sampleColumns(width))
	st.table.SetHeight(height)
	st.table.SetWidth(width)
	st.table.UpdateViewport()
}

// Add appends a sample and scrolls to it
func (st *SampleTable) Add(s Sample) {
	st.samples = append(st.samples, s)
	if len(st.samples) > MaxSamples {
		st.samples = st.samples[len(st.samples)-MaxSamples:]
	}
	st.refresh()
	st.table.GotoBottom()
}

func (st *SampleTable) Clear() {
	st.samples = nil
	st.refresh()
}

func (st *SampleTable) Len() int {
	return len(st.samples)
}

func (st *SampleTable) Rows() []table.Row {
	return st.table.Rows()
}

func (st *SampleTable) View() string {
	return st.table.View()
}

func (st *SampleTable) refresh() {
	rows := make([]table.Row, len(st.samples))
	for i, s := range st.samples {
		rows[i] = sampleRow(s)
	}
	st.table.SetRows(rows)
	st.table.UpdateViewport()
}

func sampleRow(s Sample) table.Row {
	row := table.Row{
		fmt.Sprintf("%d", s.Seq),
		s.At.Format("15:04:05.000"),
	}
	if s.Err != nil {
		return append(row, "-", "-", "error: "+s.Err.Error())
	}
	return append(row,
		fmt.Sprintf("%d", s.Bytes),
		s.Elapsed.Round(time.Microsecond).String(),
		fmt.Sprintf("%.2f", s.KBps),
	)
}
