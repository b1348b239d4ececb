package page

// Remote UI contract. These identifiers are set by the portal's UI
// designer and are stable across display languages.
const (
	MenuButton       = `vaadin-button[movie-id="menu-item_rapportierung"]`
	EntriesLink      = `a[href^="proj_services"]`
	WeeklyReportLink = `a[href^="proj_weeklyreport"]`

	DateRangeComboID = "cmbDateRange"
	FilterDateInput  = `vaadin-date-picker#dateField input`
	EmptyState       = `.va-empty-state`
	GridSelector     = `vaadin-grid[movie-id="ServicesList"]`

	NewEntryButton   = `vaadin-button[movie-id="mainAction"]`
	FormDatePicker   = `vaadin-date-picker[movie-id="ProjDat"]`
	FormDateInput    = `vaadin-date-picker[movie-id="ProjDat"] input`
	ProjectComboID   = "ProjNr2"
	ServiceComboID   = "LeArtNr"
	HoursInput       = `vaadin-text-field[movie-id="Menge"] input`
	DescriptionInput = `vaadin-text-field[movie-id="Text"] input`

	PanelSaveButton   = `vaadin-button[movie-id="btnSave"]`
	PrimaryButton     = `vaadin-button[movie-id="btnPrimary"]`
	PanelActions      = `vaadin-button[movie-id="sidepanel_btnPopupActions"]`
	PanelDeleteItem   = `vaadin-context-menu-item[movie-id="deleteActionBtn"]`
	InlineDeleteItem  = `vaadin-context-menu-item[movie-id="datalist_context_delete"]`
	RowMenuButton     = `vaadin-button.dl-menubutton`
	SidePanel         = `va-side-panel[movie-id="id_editRecordSidePanel"]`
	SidePanelClose    = `vaadin-button[movie-id="sidepanel_btnClose"]`
	OvertimePanel     = `vaadin-vertical-layout[movie-id="id_pnl_overTime"]`
	VacationPanel     = `vaadin-vertical-layout[movie-id="id_pnl_holiday"]`
	ReportContent     = `.va-portal-page-content`
	CaptchaPathMarker = "fortiadc_captcha"
)

// Positions of the date-range options in cmbDateRange.
const (
	WeekOption  = 2
	MonthOption = 3
)
