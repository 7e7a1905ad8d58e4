package dashboard

import (
	"strconv"

	"github.com/dtca-portal/dtca-portal/internal/shared"
)

// Session keys holding the router state.
const (
	SessionKeyView      = "dashboard.view"
	SessionKeyAnalytics = "dashboard.analytics"
	SessionKeySidebar   = "dashboard.sidebar"
	SessionKeyTheme     = "dashboard.theme"
)

// LoadState reads the router state from the session. Missing or corrupt
// fields fall back individually to the initial state.
func LoadState(sess *shared.Session) State {
	state := InitialState()
	if sess == nil {
		return state
	}
	if v, err := ParseView(sess.Get(SessionKeyView)); err == nil {
		state.View = v
	}
	if s, err := ParseAnalyticsSubView(sess.Get(SessionKeyAnalytics)); err == nil {
		state.Analytics = s
	}
	if b, err := strconv.ParseBool(sess.Get(SessionKeySidebar)); err == nil {
		state.SidebarExpanded = b
	}
	if b, err := strconv.ParseBool(sess.Get(SessionKeyTheme)); err == nil {
		state.DarkTheme = b
	}
	return state
}

// SaveState writes the router state into the session.
func SaveState(sess *shared.Session, state State) {
	if sess == nil {
		return
	}
	sess.Set(SessionKeyView, string(state.View))
	sess.Set(SessionKeyAnalytics, string(state.Analytics))
	sess.Set(SessionKeySidebar, strconv.FormatBool(state.SidebarExpanded))
	sess.Set(SessionKeyTheme, strconv.FormatBool(state.DarkTheme))
}

// RouterFromSession restores a Router from the session state.
func RouterFromSession(sess *shared.Session) *Router {
	return &Router{state: LoadState(sess)}
}
