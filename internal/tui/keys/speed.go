package keys

import "github.com/charmbracelet/bubbles/key"

// SpeedKeys are the key bindings of the live speed test view
type SpeedKeys struct {
	Quit  key.Binding
	Help  key.Binding
	Pause key.Binding
	Reset key.Binding
	Once  key.Binding
}

func NewSpeedKeys() SpeedKeys {
	return SpeedKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pause/resume"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset statistics"),
		),
		Once: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "measure now (paused)"),
		),
	}
}

func (k SpeedKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Pause, k.Reset, k.Quit}
}

func (k SpeedKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Once, k.Reset},
		{k.Help, k.Quit},
	}
}
