package furnace_trends

import (
	"furnace_trends/internal/catalog"
	"furnace_trends/internal/models"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WindowView echoes the window a pipeline run actually used.
type WindowView struct {
	Start      string   `json:"start"` // YYYY-MM-DD
	End        string   `json:"end"`   // YYYY-MM-DD
	Hour       int      `json:"hour"`
	Parameters []string `json:"parameters,omitempty"`
}

// TrendResponse maps parameter names to points ascending by timestamp.
// Parameters without usable readings are absent from Series.
type TrendResponse struct {
	RunID   string                    `json:"run_id"`
	Window  WindowView                `json:"window"`
	Series  map[string][]models.Point `json:"series"`
	Dropped int                       `json:"dropped"`
}

// KPIResponse has one panel per catalog parameter, in catalog order.
type KPIResponse struct {
	RunID   string         `json:"run_id"`
	Window  WindowView     `json:"window"`
	Panels  []models.Panel `json:"panels"`
	Dropped int            `json:"dropped"`
}

type ReadingsResponse struct {
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Dropped  int                `json:"dropped"`
	Readings []models.ReportRow `json:"readings"`
}

type ParametersResponse struct {
	Count      int             `json:"count"`
	Parameters []catalog.Entry `json:"parameters"`
}
