package model

import "time"

// Appointment is a booked visit. It keeps a single service reference; the
// booking totals cover every service selected when it was made.
type Appointment struct {
	ID              string       `json:"id"`
	Service         Service      `json:"service"`
	Professional    Professional `json:"professional"`
	Client          Client       `json:"client"`
	Date            time.Time    `json:"date"`
	DurationMinutes int          `json:"duration"`
	Price           float64      `json:"price"`
}

// NewAppointment builds an appointment for the booked services. Service is
// set to the first one, the totals to the sum of all of them.
func NewAppointment(id string, services []Service, professional Professional, client Client, start time.Time) Appointment {
	a := Appointment{
		ID:           id,
		Professional: professional,
		Client:       client,
		Date:         start,
	}
	if len(services) > 0 {
		a.Service = services[0]
	}
	for _, s := range services {
		a.DurationMinutes += s.DurationMinutes
		a.Price += s.Price
	}
	return a
}

// hasTotals reports whether booking totals were recorded. Older records
// only carry the service.
func (a *Appointment) hasTotals() bool {
	return a.DurationMinutes > 0
}

// Minutes returns the booked duration in minutes.
func (a *Appointment) Minutes() int {
	if a.hasTotals() {
		return a.DurationMinutes
	}
	return a.Service.DurationMinutes
}

// TotalPrice returns the booked price.
func (a *Appointment) TotalPrice() float64 {
	if a.hasTotals() {
		return a.Price
	}
	return a.Service.Price
}

// Duration returns the booked duration.
func (a *Appointment) Duration() time.Duration {
	return time.Duration(a.Minutes()) * time.Minute
}

// EndTime returns the moment the appointment finishes.
func (a *Appointment) EndTime() time.Time {
	return a.Date.Add(a.Duration())
}

// OverlapsWith checks if two appointments share any time.
func (a *Appointment) OverlapsWith(other *Appointment) bool {
	return a.Date.Before(other.EndTime()) && other.Date.Before(a.EndTime())
}

// OverlapsRange checks if the appointment intersects [start, end).
func (a *Appointment) OverlapsRange(start, end time.Time) bool {
	return a.Date.Before(end) && start.Before(a.EndTime())
}

// IsUpcoming reports whether the appointment starts at or after now.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	return !a.Date.Before(now)
}
