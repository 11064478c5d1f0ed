package booking

import (
	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// Summary is the confirmation view of a selection.
type Summary struct {
	Services      []model.Service     `json:"services"`
	Professional  *model.Professional `json:"professional,omitempty"`
	Date          string              `json:"date,omitempty"`
	Time          string              `json:"time,omitempty"`
	TotalPrice    float64             `json:"totalPrice"`
	TotalDuration int                 `json:"totalDuration"`
	DurationLabel string              `json:"durationLabel"`
}

// Summary renders the current selection for the confirmation step.
func (w Wizard) Summary() Summary {
	sel := w.Selection
	s := Summary{
		Services:      sel.Services,
		Professional:  sel.Professional,
		TotalPrice:    sel.TotalPrice(),
		TotalDuration: sel.TotalDuration(),
		DurationLabel: slots.FormatDuration(sel.TotalDuration()),
	}
	if s.Services == nil {
		s.Services = []model.Service{}
	}
	if sel.Date != nil {
		s.Date = sel.Date.Format("2006-01-02")
	}
	if sel.Time != nil {
		s.Time = sel.Time.Format(model.TimeFormat)
	}
	return s
}
