package tui

// Page is one load of picker items.
type Page struct {
	Items    []Item
	Advisory string
	Source   string
	Err      error
}

// Item is a selectable row. Note is rendered after the value, e.g. the
// installed marker.
type Item struct {
	Value string
	Note  string
}

// pageLoadedMsg carries a finished load tagged with the request id it
// answers.
type pageLoadedMsg struct {
	id   uint64
	page Page
}
