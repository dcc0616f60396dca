package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ToggleScale key.Binding
	ZoomBand    key.Binding // 1-5, display-only; matched by digit in Update
	ShowAll     key.Binding
	PanLeft     key.Binding
	PanRight    key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Snapshot    key.Binding
	Copy        key.Binding
	MiniPlot    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ToggleScale: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle log scale")),
		ZoomBand:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "zoom band")),
		ShowAll:     key.NewBinding(key.WithKeys("0", "a"), key.WithHelp("0/a", "show all")),
		PanLeft:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "pan left")),
		PanRight:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan right")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Snapshot:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy readout")),
		MiniPlot:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mini plot")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleScale, k.ZoomBand, k.ShowAll, k.Snapshot, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleScale, k.ZoomBand, k.ShowAll},
		{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut},
		{k.Snapshot, k.Copy, k.MiniPlot, k.Help, k.Quit},
	}
}
