package page

// State is where the Navigator believes the remote UI is.
type State int

const (
	StateStart State = iota
	StatePortalLoaded
	StateCaptchaChallenge
	StateSessionExpired
	StateMenuReady
	StateGridView
	StateRowOpen
	StateFilled
	StateSaved
	StateDeleted
	StateWeeklyReport
)

var stateNames = map[State]string{
	StateStart:            "start",
	StatePortalLoaded:     "portal-loaded",
	StateCaptchaChallenge: "captcha-challenge",
	StateSessionExpired:   "session-expired",
	StateMenuReady:        "menu-ready",
	StateGridView:         "grid-view",
	StateRowOpen:          "row-open",
	StateFilled:           "filled",
	StateSaved:            "saved",
	StateDeleted:          "deleted",
	StateWeeklyReport:     "weekly-report",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// transitions lists the legal successors of each state. Loading the portal
// is legal from anywhere and is handled separately.
var transitions = map[State][]State{
	StatePortalLoaded: {StateCaptchaChallenge, StateSessionExpired, StateMenuReady},
	StateMenuReady:    {StateGridView, StateWeeklyReport},
	StateGridView:     {StateGridView, StateRowOpen, StateDeleted, StateWeeklyReport},
	StateRowOpen:      {StateFilled, StateDeleted, StateGridView},
	StateFilled:       {StateFilled, StateSaved, StateDeleted, StateGridView},
	StateSaved:        {StateGridView, StateRowOpen, StateWeeklyReport},
	StateDeleted:      {StateGridView, StateRowOpen, StateDeleted, StateWeeklyReport},
	StateWeeklyReport: {StateGridView, StateWeeklyReport},
}

func canMove(from, to State) bool {
	if to == StatePortalLoaded {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// gridVisible reports whether the entries grid is on screen in s.
func gridVisible(s State) bool {
	switch s {
	case StateGridView, StateSaved, StateDeleted:
		return true
	}
	return false
}

// FormKind is the surface the edit form appeared on.
type FormKind int

const (
	FormNone FormKind = iota
	FormPanel
	FormDialog
)

func (k FormKind) String() string {
	switch k {
	case FormPanel:
		return "panel"
	case FormDialog:
		return "dialog"
	}
	return "none"
}

// View is the date-range granularity of the grid.
type View int

const (
	ViewNone View = iota
	ViewWeek
	ViewMonth
)

// Landing is the outcome of loading the portal.
type Landing int

const (
	LandingMenu Landing = iota
	LandingCaptcha
)
