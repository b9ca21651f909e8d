package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Back     key.Binding
	Search   key.Binding
	Favorite key.Binding
	Filters  key.Binding
	Reset    key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Home     key.Binding
	Favs     key.Binding
	Settings key.Binding
	Queue    key.Binding
	PlayAll  key.Binding
	Dequeue  key.Binding
	ClearQ   key.Binding
	Help     key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "hoch")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "runter")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "links")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "rechts")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "öffnen")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "zurück")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "suchen")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorit")),
		Filters:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "filter")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "filter zurücksetzen")),
		NextPage: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "nächste seite")),
		PrevPage: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "vorige seite")),
		Bigger:   key.NewBinding(key.WithKeys("+"), key.WithHelp("+/-", "seitengröße")),
		Smaller:  key.NewBinding(key.WithKeys("-")),
		Home:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "start")),
		Favs:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "favoriten")),
		Settings: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "einstellungen")),
		Queue:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "zur playlist")),
		PlayAll:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "playlist abspielen")),
		Dequeue:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "aus playlist")),
		ClearQ:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "playlist leeren")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "hilfe")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "beenden")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Enter, k.Favorite, k.Filters, k.NextPage, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Enter, k.Back},
		{k.Search, k.Favorite, k.Filters, k.Reset, k.NextPage, k.PrevPage, k.Bigger},
		{k.Home, k.Favs, k.Settings, k.Queue, k.Dequeue, k.PlayAll, k.ClearQ},
		{k.Help, k.Quit},
	}
}
