package models

// WeeklyReport holds the totals of the weekly report grid.
type WeeklyReport struct {
	Worked     float64 `json:"worked"`
	Target     float64 `json:"target"`
	Difference float64 `json:"difference"`
}

// SaldoData holds the overtime balance panel.
type SaldoData struct {
	Overtime  float64 `json:"overtime"`
	ExtraTime float64 `json:"extraTime"`
	Total     float64 `json:"total"`
}

// VacationData holds the vacation balance panel, in hours.
type VacationData struct {
	Entitlement        float64 `json:"entitlement"`
	Used               float64 `json:"used"`
	Remaining          float64 `json:"remaining"`
	PlannedByYearEnd   float64 `json:"plannedByYearEnd"`
	RemainingByYearEnd float64 `json:"remainingByYearEnd"`
}
