package dashboard

import "fmt"

// Router owns the active view, the analytics sub-view and the UI toggles.
// A Router is not safe for concurrent use; callers serialise events.
type Router struct {
	state State
}

// NewRouter returns a Router in the initial state.
func NewRouter() *Router {
	return &Router{state: InitialState()}
}

// Restore rebuilds a Router from a previously captured snapshot.
func Restore(s State) (*Router, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Router{state: s}, nil
}

// SelectView makes v the active view.
func (r *Router) SelectView(v View) error {
	if !v.Valid() {
		return invalidView(v)
	}
	r.state.View = v
	return nil
}

// SelectAnalyticsSubView records the analytics sub-view. It is accepted in
// any view and only becomes visible once analytics is active.
func (r *Router) SelectAnalyticsSubView(s AnalyticsSubView) error {
	if !s.Valid() {
		return invalidSubView(s)
	}
	r.state.Analytics = s
	return nil
}

// ToggleSidebar flips the sidebar between expanded and collapsed.
func (r *Router) ToggleSidebar() {
	r.state.SidebarExpanded = !r.state.SidebarExpanded
}

// ToggleTheme flips between the light and dark theme.
func (r *Router) ToggleTheme() {
	r.state.DarkTheme = !r.state.DarkTheme
}

// ActiveView returns the current view.
func (r *Router) ActiveView() View {
	return r.state.View
}

// ActiveAnalyticsSubView returns the current analytics sub-view.
func (r *Router) ActiveAnalyticsSubView() AnalyticsSubView {
	return r.state.Analytics
}

// UiToggleState returns the sidebar and theme switches.
func (r *Router) UiToggleState() UiToggleState {
	return r.state.UiToggleState
}

// Snapshot returns a copy of the full state.
func (r *Router) Snapshot() State {
	return r.state
}

func invalidView(v View) error {
	return fmt.Errorf("%w: view %q", ErrInvalidArgument, v)
}

func invalidSubView(s AnalyticsSubView) error {
	return fmt.Errorf("%w: analytics view %q", ErrInvalidArgument, s)
}
