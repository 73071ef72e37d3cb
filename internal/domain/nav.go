package domain

// NavState is the navigation bar's only state: whether the mobile panel is open.
type NavState struct {
	MenuOpen bool
}

// ToggleMenu opens a closed panel and closes an open one.
func (n NavState) ToggleMenu() NavState {
	return NavState{MenuOpen: !n.MenuOpen}
}
